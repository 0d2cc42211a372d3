package hint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBeforeTool(t *testing.T) {
	require.True(t, AICommand{Type: TypeOnBeforeInsertEditTool}.IsBeforeTool())
	require.True(t, AICommand{Type: TypeOnBeforeReplaceStringTool}.IsBeforeTool())
	require.False(t, AICommand{Type: TypeInlineCompletion}.IsBeforeTool())
}

func TestIsTerminalAfterTool(t *testing.T) {
	require.True(t, AICommand{Type: TypeOnAfterInsertEditTool}.IsTerminalAfterTool())
	require.True(t, AICommand{Type: TypeOnAfterCreateFileTool}.IsTerminalAfterTool())
	require.False(t, AICommand{Type: TypeOnBeforeInsertEditTool}.IsTerminalAfterTool())
}

func TestToolNameMapsKnownTypes(t *testing.T) {
	require.Equal(t, "insertEdit", AICommand{Type: TypeOnBeforeInsertEditTool}.ToolName())
	require.Equal(t, "replaceString", AICommand{Type: TypeOnAfterReplaceStringTool}.ToolName())
	require.Equal(t, "applyPatch", AICommand{Type: TypeOnAfterApplyPatchTool}.ToolName())
}

func TestToolNameFallsBackToRawType(t *testing.T) {
	require.Equal(t, "inlineCompletion", AICommand{Type: TypeInlineCompletion}.ToolName())
}

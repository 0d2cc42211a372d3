package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Renderer serializes a Timeline to bytes.
type Renderer interface {
	Render(t *Timeline) ([]byte, error)
}

// JSONRenderer renders a Timeline as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(t *Timeline) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// MarkdownRenderer renders a Timeline as a human-readable Markdown table,
// one row per tagged interval, ordered as the store holds them (by start
// position).
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(t *Timeline) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Provenance — %s\n\n", t.RelativePath)
	fmt.Fprintf(&sb, "Generated: %s\n\n", t.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if len(t.Changes) == 0 {
		sb.WriteString("_No tracked changes._\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| Range | Kind | Author | Created | Detail |\n")
	sb.WriteString("|-------|------|--------|---------|--------|\n")
	for _, c := range t.Changes {
		detail := changeDetail(c)
		fmt.Fprintf(&sb, "| %d:%d-%d:%d | %s | %s | %s | %s |\n",
			c.Range.Start.Line, c.Range.Start.Column,
			c.Range.End.Line, c.Range.End.Column,
			c.Kind,
			orDash(c.Author),
			formatCreationTS(c.CreationTS),
			detail,
		)
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

package tui

import (
	"time"

	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
)

func formatMS(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

func detailLine(c interval.Tagged) string {
	switch c.Kind {
	case provenance.Paste, provenance.IDEPaste:
		if c.Options.PasteTitle != "" {
			return c.Options.PasteTitle
		}
		return c.Options.PasteURL
	case provenance.AIGenerated:
		if c.Options.AIName != "" {
			return c.Options.AIName + " (" + c.Options.AIType + ")"
		}
		return c.Options.AIType
	default:
		return ""
	}
}

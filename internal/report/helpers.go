package report

import (
	"time"

	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/provenance"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatCreationTS(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

// changeDetail summarizes the provenance-kind-specific metadata worth
// showing in one table cell.
func changeDetail(c interval.Tagged) string {
	switch c.Kind {
	case provenance.Paste, provenance.IDEPaste:
		if c.Options.PasteTitle != "" {
			return c.Options.PasteTitle
		}
		return orDash(c.Options.PasteURL)
	case provenance.AIGenerated:
		if c.Options.AIName != "" {
			return c.Options.AIName + " (" + orDash(c.Options.AIType) + ")"
		}
		return orDash(c.Options.AIType)
	default:
		return "-"
	}
}

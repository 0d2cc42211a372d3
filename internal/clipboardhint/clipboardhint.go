// Package clipboardhint polls the OS clipboard and reports new copies as
// hint.Clipboard events, the default ExternalHint clipboard source (a
// platform-native helper, as opposed to a browser-extension-supplied
// clipboard event).
package clipboardhint

import (
	"context"
	"time"

	"github.com/atotto/clipboard"

	"github.com/fakeyudi/tabd/internal/engineerr"
	"github.com/fakeyudi/tabd/internal/hint"
)

// PollInterval is the default poll period: the clipboard poller runs on a
// periodic timer.
const PollInterval = 500 * time.Millisecond

// HelperTimeout is the ceiling for one clipboard helper read. Poller.Run
// does not apply it: each read runs without a deadline.
const HelperTimeout = 10 * time.Second

// Reader abstracts the OS clipboard read, so tests can substitute a fake
// without touching the real clipboard.
type Reader func() (string, error)

// DefaultReader reads the real OS clipboard via atotto/clipboard.
func DefaultReader() (string, error) {
	return clipboard.ReadAll()
}

// Poller watches the clipboard for changes and reports each new value.
type Poller struct {
	Read     Reader
	Interval time.Duration
	last     string
	seen     bool
}

// NewPoller builds a Poller using the real OS clipboard.
func NewPoller() *Poller {
	return &Poller{Read: DefaultReader, Interval: PollInterval}
}

// Run polls until ctx is cancelled, invoking onCopy(text, nowMS) whenever
// the clipboard content changes from what was last observed. Read errors
// are reported via onError as *engineerr.TransientExternal and otherwise
// ignored: metadata degrades to absent, the caller is never failed.
func (p *Poller) Run(ctx context.Context, onCopy func(text string, nowMS int64), onError func(*engineerr.TransientExternal)) {
	interval := p.Interval
	if interval <= 0 {
		interval = PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			text, err := p.Read()
			if err != nil {
				if onError != nil {
					onError(&engineerr.TransientExternal{Op: "clipboard.read", Err: err})
				}
				continue
			}
			if !p.seen || text != p.last {
				p.seen = true
				p.last = text
				if text != "" {
					onCopy(text, time.Now().UnixMilli())
				}
			}
		}
	}
}

// ToClipboardHint builds the hint.Clipboard record for a plain OS clipboard
// copy (as opposed to the in-IDE ide_clipboard_copy path, which carries its
// own url/title from the VCS layer).
func ToClipboardHint(text string, nowMS int64) hint.Clipboard {
	return hint.Clipboard{
		Text:        text,
		TimestampMS: nowMS,
		Kind:        hint.ClipboardCopy,
	}
}

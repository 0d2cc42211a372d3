// Package report renders a document's provenance timeline for `tabd
// inspect --plain`, with a JSON/Markdown renderer split over one file's
// tagged intervals.
package report

import (
	"time"

	"github.com/fakeyudi/tabd/internal/interval"
)

// Timeline is the renderable summary of one file's provenance state.
type Timeline struct {
	URI         string           `json:"uri"`
	RelativePath string          `json:"relative_path"`
	GeneratedAt time.Time        `json:"generated_at"`
	Changes     []interval.Tagged `json:"changes"`
}

// NewTimeline builds a Timeline from a live interval set.
func NewTimeline(uri, relativePath string, changes []interval.Tagged, now time.Time) *Timeline {
	return &Timeline{
		URI:          uri,
		RelativePath: relativePath,
		GeneratedAt:  now,
		Changes:      append([]interval.Tagged(nil), changes...),
	}
}

package persist

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Layout resolves storage paths for one of the two filesystem-backed
// layouts (vcs-notes has its own package: persist/vcsnotes).
type Layout int

const (
	// Repository stores logs under <workspace>/.tabd/log/<relative path>/.
	Repository Layout = iota
	// HomeDirectory stores logs under <home>/.tabd/workspaces/<sanitized
	// workspace path>/log/<relative path>/.
	HomeDirectory
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Sanitize replaces runs of non-alphanumerics with a single underscore and
// trims leading/trailing underscores, per the homeDirectory layout's
// workspace-path sanitisation rule.
func Sanitize(s string) string {
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// LogDir returns the directory that holds one file's log entries, under the
// given layout root.
func LogDir(layout Layout, workspacePath, homeDir, relativePath string) string {
	switch layout {
	case HomeDirectory:
		return filepath.Join(homeDir, ".tabd", "workspaces", Sanitize(workspacePath), "log", relativePath)
	default:
		return filepath.Join(workspacePath, ".tabd", "log", relativePath)
	}
}

// IndexPath returns the path to the sqlite side-index (internal/persist/index)
// for a given layout, alongside that layout's log root.
func IndexPath(layout Layout, workspacePath, homeDir string) string {
	switch layout {
	case HomeDirectory:
		return filepath.Join(homeDir, ".tabd", "workspaces", Sanitize(workspacePath), "index.db")
	default:
		return filepath.Join(workspacePath, ".tabd", "index.db")
	}
}

// ShouldTrack implements the "shouldn't-process" rule: any file whose
// basename begins with '.' or that lies under a directory whose name begins
// with '.' is excluded from tracking.
func ShouldTrack(relativePath string) bool {
	relativePath = filepath.ToSlash(relativePath)
	for _, part := range strings.Split(relativePath, "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

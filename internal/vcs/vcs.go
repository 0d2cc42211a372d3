// Package vcs runs the small set of git subprocess calls the engine needs
// to resolve an in-IDE paste's provenance (remote origin URL, current
// branch) and to attach vcs-notes storage-layout records to the current
// head commit. Each call carries its own timeout: 2s for config lookups,
// 5-15s for notes operations.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Runner executes one git command in workDir and returns trimmed stdout.
// Tests substitute a fake in place of the real subprocess.
type Runner func(ctx context.Context, workDir string, args ...string) (string, error)

// DefaultRunner runs git as a real subprocess with a timeout derived from
// ctx's deadline (callers set that via context.WithTimeout).
func DefaultRunner(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = workDir
	var out bytes.Buffer
	cmd.Stdout = &out
	var errOut bytes.Buffer
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// ErrNotARepo is returned when workDir is not (inside) a git repository.
var ErrNotARepo = errors.New("not a git repository")

// ConfigTimeout is the per-call timeout for cheap config lookups.
const ConfigTimeout = 2 * time.Second

// NotesTimeoutMin and NotesTimeoutMax bound the vcs-notes operation timeout
// range (5-15s per call).
const (
	NotesTimeoutMin = 5 * time.Second
	NotesTimeoutMax = 15 * time.Second
)

// Client resolves the small set of repository facts the engine needs.
type Client struct {
	WorkDir string
	Run     Runner
}

// NewClient builds a Client using the real git subprocess.
func NewClient(workDir string) *Client {
	return &Client{WorkDir: workDir, Run: DefaultRunner}
}

func (c *Client) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	run := c.Run
	if run == nil {
		run = DefaultRunner
	}
	return run(ctx, c.WorkDir, args...)
}

// Branch returns the current branch name.
func (c *Client) Branch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, ConfigTimeout, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		if isExitCode(err, 128) {
			return "", ErrNotARepo
		}
		return "", err
	}
	return out, nil
}

// HeadCommit returns the current HEAD commit sha.
func (c *Client) HeadCommit(ctx context.Context) (string, error) {
	out, err := c.run(ctx, ConfigTimeout, "rev-parse", "HEAD")
	if err != nil {
		if isExitCode(err, 128) {
			return "", ErrNotARepo
		}
		return "", err
	}
	return out, nil
}

// RemoteHTTPSURL resolves origin's URL and normalises it to an HTTPS form
// with any trailing ".git" stripped, for attaching a remote link to a
// resolved paste.
func (c *Client) RemoteHTTPSURL(ctx context.Context) (string, error) {
	out, err := c.run(ctx, ConfigTimeout, "config", "--get", "remote.origin.url")
	if err != nil {
		if isExitCode(err, 128) || isExitCode(err, 1) {
			return "", ErrNotARepo
		}
		return "", err
	}
	return NormalizeRemoteURL(out), nil
}

// NormalizeRemoteURL converts a git SSH remote URL to its HTTPS equivalent
// and strips a trailing ".git" suffix. Non-SSH URLs are only stripped of
// ".git"; unrecognised forms pass through unchanged.
func NormalizeRemoteURL(raw string) string {
	url := strings.TrimSpace(raw)
	url = strings.TrimSuffix(url, ".git")

	// scp-like syntax: git@host:owner/repo
	if strings.HasPrefix(url, "git@") {
		rest := strings.TrimPrefix(url, "git@")
		if idx := strings.Index(rest, ":"); idx >= 0 {
			host := rest[:idx]
			path := rest[idx+1:]
			return "https://" + host + "/" + path
		}
	}

	// ssh://git@host/owner/repo
	if strings.HasPrefix(url, "ssh://") {
		rest := strings.TrimPrefix(url, "ssh://")
		rest = strings.TrimPrefix(rest, "git@")
		return "https://" + rest
	}

	return url
}

// NotesRef returns the vcs-notes ref name for a given branch and sanitized
// relative-path digest: `tabd__<branch>__<sha256(sanitized-relative-path)>`.
func NotesRef(branch, pathDigestHex string) string {
	return "tabd__" + branch + "__" + pathDigestHex
}

// AddNote attaches body as a git note under ref on the current HEAD commit.
func (c *Client) AddNote(ctx context.Context, ref, body string) error {
	timeout := NotesTimeoutMax
	_, err := c.run(ctx, timeout, "notes", "--ref="+ref, "append", "-m", body, "HEAD")
	return err
}

// ReadNotes returns the raw note bodies attached under ref on HEAD, one per
// append call (git notes append separates multiple appends by a blank
// line); the caller splits them.
func (c *Client) ReadNotes(ctx context.Context, ref string) (string, error) {
	timeout := NotesTimeoutMax
	out, err := c.run(ctx, timeout, "notes", "--ref="+ref, "show", "HEAD")
	if err != nil {
		if isExitCode(err, 1) {
			return "", nil // no notes yet
		}
		return "", err
	}
	return out, nil
}

// PushNotes pushes ref to origin.
func (c *Client) PushNotes(ctx context.Context, ref string) error {
	_, err := c.run(ctx, NotesTimeoutMax, "push", "origin", "refs/notes/"+ref)
	return err
}

// FetchNotes fetches ref from origin.
func (c *Client) FetchNotes(ctx context.Context, ref string) error {
	_, err := c.run(ctx, NotesTimeoutMax, "fetch", "origin", "refs/notes/"+ref+":refs/notes/"+ref)
	return err
}

func isExitCode(err error, code int) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == code
	}
	return false
}

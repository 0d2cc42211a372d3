package vcs

import (
	"context"
	"os/exec"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeRunner(responses map[string]string, errs map[string]error) Runner {
	return func(ctx context.Context, workDir string, args ...string) (string, error) {
		key := args[0]
		if err, ok := errs[key]; ok {
			return "", err
		}
		return responses[key], nil
	}
}

// exitError runs a real subprocess to obtain a genuine *exec.ExitError
// carrying the given exit code, since ExitCode() reads the process's actual
// wait status rather than a field we could just set directly.
func exitError(t *testing.T, code int) error {
	t.Helper()
	cmd := exec.Command("sh", "-c", "exit "+strconv.Itoa(code))
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected sh -c exit %d to fail", code)
	}
	return err
}

func TestClientBranch(t *testing.T) {
	c := &Client{WorkDir: "/repo", Run: fakeRunner(map[string]string{"rev-parse": "main"}, nil)}
	branch, err := c.Branch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "main", branch)
}

func TestClientBranchNotARepo(t *testing.T) {
	c := &Client{WorkDir: "/repo", Run: fakeRunner(nil, map[string]error{"rev-parse": exitError(t, 128)})}
	_, err := c.Branch(context.Background())
	require.ErrorIs(t, err, ErrNotARepo)
}

func TestClientRemoteHTTPSURLNormalizesSCPStyle(t *testing.T) {
	c := &Client{WorkDir: "/repo", Run: fakeRunner(map[string]string{"config": "git@github.com:acme/widget.git"}, nil)}
	url, err := c.RemoteHTTPSURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://github.com/acme/widget", url)
}

func TestNormalizeRemoteURL(t *testing.T) {
	cases := map[string]string{
		"git@github.com:acme/widget.git":     "https://github.com/acme/widget",
		"ssh://git@github.com/acme/widget":   "https://github.com/acme/widget",
		"https://github.com/acme/widget.git": "https://github.com/acme/widget",
		"https://github.com/acme/widget":     "https://github.com/acme/widget",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeRemoteURL(in), "NormalizeRemoteURL(%q)", in)
	}
}

func TestNotesRef(t *testing.T) {
	got := NotesRef("main", "abcdef")
	require.Equal(t, "tabd__main__abcdef", got)
}

func TestClientReadNotesTreatsExitCode1AsNoNotes(t *testing.T) {
	c := &Client{WorkDir: "/repo", Run: fakeRunner(nil, map[string]error{"notes": exitError(t, 1)})}
	out, err := c.ReadNotes(context.Background(), "some-ref")
	require.NoError(t, err)
	require.Empty(t, out)
}

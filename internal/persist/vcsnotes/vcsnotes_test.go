package vcsnotes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/tabd/internal/vcs"
)

func fakeRunner(t *testing.T, responses map[string]string) vcs.Runner {
	return func(ctx context.Context, workDir string, args ...string) (string, error) {
		if len(args) == 0 {
			t.Fatal("runner called with no args")
		}
		return responses[args[0]], nil
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	var saved string
	client := &vcs.Client{WorkDir: "/repo", Run: func(ctx context.Context, workDir string, args ...string) (string, error) {
		switch args[0] {
		case "rev-parse":
			return "main", nil
		case "notes":
			if args[2] == "append" {
				saved = args[4]
				return "", nil
			}
			return saved, nil
		}
		return "", nil
	}}
	store := &Store{Client: client}

	require.NoError(t, store.Save(context.Background(), "src/main.go", []byte(`{"version":1}`)))

	got, err := store.Load(context.Background(), "src/main.go")
	require.NoError(t, err)
	require.Equal(t, []string{`{"version":1}`}, got)
}

func TestRefIsStablePerBranchAndPath(t *testing.T) {
	a := Ref("main", "src/main.go")
	b := Ref("main", "src/main.go")
	require.Equal(t, a, b)

	c := Ref("feature", "src/main.go")
	require.NotEqual(t, a, c)
}

func TestLoadSplitsMultipleAppends(t *testing.T) {
	client := &vcs.Client{WorkDir: "/repo", Run: fakeRunner(t, map[string]string{
		"rev-parse": "main",
		"notes":     "first\n\nsecond",
	})}
	store := &Store{Client: client}

	got, err := store.Load(context.Background(), "src/main.go")
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, got)
}

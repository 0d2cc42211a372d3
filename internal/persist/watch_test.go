package persist

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReportsNewJSONFiles(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var seen []string
	stop := make(chan struct{})

	go Watch(root, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	}, stop)
	defer close(stop)

	time.Sleep(50 * time.Millisecond)

	target := filepath.Join(root, "20200101000000-abcdef.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range seen {
			if p == target {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchIgnoresNonJSONFiles(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var seen []string
	stop := make(chan struct{})

	go Watch(root, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	}, stop)
	defer close(stop)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, seen)
}

func TestWatchStopsOnStopChannel(t *testing.T) {
	root := t.TempDir()
	stop := make(chan struct{})
	done := make(chan error, 1)

	go func() { done <- Watch(root, func(string) {}, stop) }()
	close(stop)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after stop was closed")
	}
}

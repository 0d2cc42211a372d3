package persist

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/tabd/internal/engineerr"
)

// FileStore persists provenance logs under one of the two filesystem
// layouts (repository or homeDirectory). Writes are atomic via a temp file
// plus os.Rename.
type FileStore struct {
	Layout        Layout
	WorkspacePath string
	HomeDir       string
}

// filename builds the "<YYYYMMDDhhmmss>-<6 lowercase alnum>.json" name for
// one save, timestamp-sortable.
func filename(now time.Time) string {
	ts := now.UTC().Format("20060102150405")
	suffix := strings.ToLower(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return ts + "-" + suffix + ".json"
}

// Save writes one log file for relativePath under this layout's log
// directory. It returns *engineerr.InvariantViolation if a file with the
// same name already exists (a timestamp+suffix collision) and
// *engineerr.StorageUnavailable if the layout root can't be resolved (no
// workspace configured).
func (fs *FileStore) Save(relativePath string, data []byte, now time.Time) error {
	if fs.Layout == Repository && fs.WorkspacePath == "" {
		return &engineerr.StorageUnavailable{Layout: "repository", Err: errors.New("no workspace path configured")}
	}
	if fs.Layout == HomeDirectory && fs.HomeDir == "" {
		return &engineerr.StorageUnavailable{Layout: "homeDirectory", Err: errors.New("no home directory resolved")}
	}

	dir := LogDir(fs.Layout, fs.WorkspacePath, fs.HomeDir, relativePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &engineerr.TransientExternal{Op: "persist.mkdir", Err: err}
	}

	path := filepath.Join(dir, filename(now))
	if _, err := os.Stat(path); err == nil {
		return &engineerr.InvariantViolation{Reason: "duplicate log file path: " + path}
	}

	tmp, err := os.CreateTemp(dir, "log-*.json.tmp")
	if err != nil {
		return &engineerr.TransientExternal{Op: "persist.write", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return &engineerr.TransientExternal{Op: "persist.write", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &engineerr.TransientExternal{Op: "persist.write", Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &engineerr.TransientExternal{Op: "persist.write", Err: err}
	}
	return nil
}

// Load reads every log file for relativePath in lexicographic (i.e.
// timestamp) order, decoding each into a Record. A file that fails to
// decode is skipped and reported via onMalformed rather than aborting the
// whole load, per the MalformedLog policy.
func (fs *FileStore) Load(relativePath string, onMalformed func(path string, err error)) ([]Record, error) {
	dir := LogDir(fs.Layout, fs.WorkspacePath, fs.HomeDir, relativePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &engineerr.TransientExternal{Op: "persist.readdir", Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	recs := make([]Record, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if onMalformed != nil {
				onMalformed(path, err)
			}
			continue
		}
		rec, err := Unmarshal(data)
		if err != nil {
			if onMalformed != nil {
				onMalformed(path, err)
			}
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fakeyudi/tabd/internal/classify"
	"github.com/fakeyudi/tabd/internal/coalesce"
	"github.com/fakeyudi/tabd/internal/config"
	"github.com/fakeyudi/tabd/internal/docref"
	"github.com/fakeyudi/tabd/internal/editreason"
	"github.com/fakeyudi/tabd/internal/engineerr"
	"github.com/fakeyudi/tabd/internal/hint"
	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/mergelog"
	"github.com/fakeyudi/tabd/internal/persist"
	"github.com/fakeyudi/tabd/internal/persist/index"
	"github.com/fakeyudi/tabd/internal/persist/vcsnotes"
	"github.com/fakeyudi/tabd/internal/telemetry"
	"github.com/fakeyudi/tabd/internal/textpos"
	"github.com/fakeyudi/tabd/internal/transform"
	"github.com/fakeyudi/tabd/internal/vcs"
)

// recordStore abstracts the two persistence shapes (the filesystem-backed
// persist.FileStore, and vcsnotes.Store via the adapter below) behind one
// interface the Coordinator commits through, keyed by relative path.
type recordStore interface {
	Save(relativePath string, data []byte, now time.Time) error
	Load(relativePath string, onMalformed func(path string, err error)) ([]persist.Record, error)
}

// vcsNotesRecordStore adapts vcsnotes.Store to recordStore, translating its
// context+string-body shape into the filesystem stores' shape.
type vcsNotesRecordStore struct {
	store *vcsnotes.Store
}

func (a *vcsNotesRecordStore) Save(relativePath string, data []byte, _ time.Time) error {
	if a.store.Client == nil {
		return &engineerr.StorageUnavailable{Layout: "vcs-notes", Err: errors.New("no vcs client configured")}
	}
	return a.store.Save(context.Background(), relativePath, data)
}

func (a *vcsNotesRecordStore) Load(relativePath string, onMalformed func(path string, err error)) ([]persist.Record, error) {
	if a.store.Client == nil {
		return nil, &engineerr.StorageUnavailable{Layout: "vcs-notes", Err: errors.New("no vcs client configured")}
	}
	bodies, err := a.store.Load(context.Background(), relativePath)
	if err != nil {
		return nil, err
	}
	recs := make([]persist.Record, 0, len(bodies))
	for _, body := range bodies {
		if body == "" {
			continue
		}
		rec, err := persist.Unmarshal([]byte(body))
		if err != nil {
			if onMalformed != nil {
				onMalformed(relativePath, err)
			}
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Coordinator is the single entry point the host calls into, serializing
// every document behind one process-wide exclusive lock.
type Coordinator struct {
	mu sync.Mutex

	cfg           config.Config
	workspacePath string
	homeDir       string
	author        string
	vcsClient     *vcs.Client
	store         recordStore
	idx           *index.DB
	log           *telemetry.Logger

	files         map[string]*FileState
	hints         hint.Store
	pendingAIEdit map[string]*textpos.Edit
}

// New builds a Coordinator for one workspace. author is the local user's
// identity, attached to every UserEdit/Paste interval.
func New(cfg config.Config, vcsClient *vcs.Client, workspacePath, homeDir, author string, log *telemetry.Logger) *Coordinator {
	if log == nil {
		log = telemetry.Discard()
	}
	c := &Coordinator{
		cfg:           cfg,
		workspacePath: workspacePath,
		homeDir:       homeDir,
		author:        author,
		vcsClient:     vcsClient,
		log:           log,
		files:         make(map[string]*FileState),
		pendingAIEdit: make(map[string]*textpos.Edit),
	}
	c.store = buildStore(cfg, vcsClient, workspacePath, homeDir)
	c.idx = openIndex(cfg, workspacePath, homeDir, log)
	return c
}

// openIndex opens the sqlite side-index for the filesystem-backed layouts.
// vcs-notes has no local index to maintain; RecordSave is simply skipped for
// that layout. A failure to open is logged and treated as absent (the index
// is bookkeeping for `tabd gc`, not required for correctness).
func openIndex(cfg config.Config, workspacePath, homeDir string, log *telemetry.Logger) *index.DB {
	if cfg.Layout == config.LayoutVCSNotes {
		return nil
	}
	layout := persist.Repository
	if cfg.Layout == config.LayoutHomeDirectory {
		layout = persist.HomeDirectory
	}
	path := persist.IndexPath(layout, workspacePath, homeDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.TransientExternal(&engineerr.TransientExternal{Op: "index.mkdir", Err: err})
		return nil
	}
	db, err := index.Open(path)
	if err != nil {
		log.TransientExternal(&engineerr.TransientExternal{Op: "index.open", Err: err})
		return nil
	}
	return db
}

func buildStore(cfg config.Config, vcsClient *vcs.Client, workspacePath, homeDir string) recordStore {
	switch cfg.Layout {
	case config.LayoutVCSNotes:
		return &vcsNotesRecordStore{store: &vcsnotes.Store{
			Client:    vcsClient,
			AutoPush:  cfg.VCSNotesAutoPush,
			AutoFetch: cfg.VCSNotesAutoFetch,
		}}
	case config.LayoutHomeDirectory:
		return &persist.FileStore{Layout: persist.HomeDirectory, WorkspacePath: workspacePath, HomeDir: homeDir}
	default:
		return &persist.FileStore{Layout: persist.Repository, WorkspacePath: workspacePath, HomeDir: homeDir}
	}
}

// LoadRecords reads relativePath's persisted log directly, without a
// Coordinator instance, for CLI commands (`tabd inspect`, `tabd replay`)
// that only need a one-shot read of what's on disk.
func LoadRecords(cfg config.Config, vcsClient *vcs.Client, workspacePath, homeDir, relativePath string, onMalformed func(path string, err error)) ([]persist.Record, error) {
	store := buildStore(cfg, vcsClient, workspacePath, homeDir)
	return store.Load(relativePath, onMalformed)
}

// relativePath resolves a document URI to a workspace-relative path. A URI
// outside the workspace (or an unresolvable one) falls back to its own
// basename rather than failing the call.
func (c *Coordinator) relativePath(uri string) string {
	rel, err := filepath.Rel(c.workspacePath, uri)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(uri)
	}
	return rel
}

func (c *Coordinator) getOrCreate(doc docref.DocumentRef) *FileState {
	uri := doc.URI()
	fs, ok := c.files[uri]
	if !ok {
		fs = &FileState{URI: uri, RelativePath: c.relativePath(uri)}
		c.files[uri] = fs
	}
	return fs
}

// OnEditBatch folds edits over the file's
// store via the Edit Transformer, updating the ExternalHint singletons and
// pending-AI-edit slot as the classifier directs.
func (c *Coordinator) OnEditBatch(doc docref.DocumentRef, edits []textpos.Edit, reason editreason.Reason, nowMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	fs := c.getOrCreate(doc)
	vcsCtx := c.vcsContext(reason)

	result := c.runTransform(fs, edits, reason, vcsCtx, nowMS, doc)
	fs.Store = result.Store

	if result.ClearAI {
		c.hints.LastAICommand = nil
	}
	if result.PendingAIEdit != nil {
		c.pendingAIEdit[doc.URI()] = result.PendingAIEdit
	}

	kinds := make(map[string]int)
	for _, it := range fs.Store {
		kinds[string(it.Kind)]++
	}
	c.log.EditBatch(doc.URI(), time.Since(start), kinds)
}

// runTransform calls the Edit Transformer, recovering from a classifier
// panic and falling back to a plain fold: the edit is still folded, just
// without AI metadata. The recovery covers the whole batch rather than the
// single offending edit, since Apply folds a batch as one indivisible unit.
func (c *Coordinator) runTransform(fs *FileState, edits []textpos.Edit, reason editreason.Reason, vcsCtx classify.VCSContext, nowMS int64, doc docref.DocumentRef) (result transform.Result) {
	defer func() {
		if r := recover(); r != nil {
			c.log.ClassifierPanic(r)
			result = transform.Result{Store: transform.FoldOnly(fs.Store, edits)}
		}
	}()
	return transform.Apply(fs.Store, fs.pasteMarkers(), edits, reason, &c.hints, vcsCtx, nowMS, c.author, doc)
}

// vcsContext resolves the repository facts the paste-resolution branch
// needs, only when reason indicates a paste (git is otherwise never run on
// the hot edit path). Failures degrade to an empty context.
func (c *Coordinator) vcsContext(reason editreason.Reason) classify.VCSContext {
	if c.vcsClient == nil || (reason != editreason.Paste && reason != editreason.IDEPaste) {
		return classify.VCSContext{}
	}
	ctx := context.Background()
	branch, err := c.vcsClient.Branch(ctx)
	if err != nil {
		c.log.TransientExternal(&engineerr.TransientExternal{Op: "vcs.branch", Err: err})
		return classify.VCSContext{}
	}
	url, err := c.vcsClient.RemoteHTTPSURL(ctx)
	if err != nil {
		c.log.TransientExternal(&engineerr.TransientExternal{Op: "vcs.remote", Err: err})
		return classify.VCSContext{Branch: branch}
	}
	return classify.VCSContext{RemoteHTTPSURL: url, Branch: branch}
}

// OnPaste records short-lived paste hints the
// classifier consults on the next edit batch.
func (c *Coordinator) OnPaste(doc docref.DocumentRef, ranges []textpos.Range, nowMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs := c.getOrCreate(doc)
	fs.recordPaste(ranges, nowMS)
}

// OnActivate lazy-loads a file's persisted log
// via the Log Merger, exactly once per FileState lifetime.
func (c *Coordinator) OnActivate(doc docref.DocumentRef, nowMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs := c.getOrCreate(doc)
	if fs.loaded {
		return
	}
	fs.loaded = true
	fs.LoadTimestamp = nowMS - 1

	if !persist.ShouldTrack(fs.RelativePath) {
		return
	}

	recs, err := c.store.Load(fs.RelativePath, func(path string, err error) {
		c.log.MalformedLog(&engineerr.MalformedLog{Path: path, Err: err})
	})
	if err != nil {
		if su, ok := err.(*engineerr.StorageUnavailable); ok {
			c.log.StorageUnavailable(su)
		} else {
			c.log.TransientExternal(&engineerr.TransientExternal{Op: "persist.load", Err: err})
		}
		return
	}

	current := fs.Store
	for _, rec := range recs {
		current = mergelog.Merge(current, persist.FromChanges(rec.Changes))
	}
	fs.Store = current
}

// OnSave coalesces adjacent user edits, keeps only
// intervals created since load, and commits to persistence.
func (c *Coordinator) OnSave(doc docref.DocumentRef, docText string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs := c.getOrCreate(doc)
	if !persist.ShouldTrack(fs.RelativePath) {
		return
	}

	coalesced := coalesce.Coalesce(fs.Store)
	fs.Store = coalesced

	var fresh []interval.Tagged
	for _, it := range coalesced {
		if it.CreationTS > fs.LoadTimestamp {
			fresh = append(fresh, it)
		}
	}

	data, err := persist.Marshal(fresh, docText)
	if err != nil {
		c.log.InvariantViolation(&engineerr.InvariantViolation{Reason: "encoding save record", Err: err})
		return
	}

	now := time.Now()
	if err := c.store.Save(fs.RelativePath, data, now); err != nil {
		switch e := err.(type) {
		case *engineerr.StorageUnavailable:
			c.log.StorageUnavailable(e)
		case *engineerr.InvariantViolation:
			c.log.InvariantViolation(e)
		case *engineerr.TransientExternal:
			c.log.TransientExternal(e)
		default:
			c.log.TransientExternal(&engineerr.TransientExternal{Op: "persist.save", Err: err})
		}
		return
	}

	if c.idx != nil {
		if err := c.idx.RecordSave(fs.RelativePath, string(c.cfg.Layout), now.UnixMilli()); err != nil {
			c.log.TransientExternal(&engineerr.TransientExternal{Op: "index.recordSave", Err: err})
		}
	}
}

// OnInternalAICommand updates
// lastAICommand and, for the two envelope types that carry deferred work,
// replay the stored pending-AI-edit batch or synthesize a createFile edit.
// resolveDoc looks up (or opens) the DocumentRef for a companion document
// URI; it may return ok=false if the host has no such document open.
func (c *Coordinator) OnInternalAICommand(payload hint.AICommand, nowMS int64, resolveDoc func(uri string) (docref.DocumentRef, bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hints.LastAICommand = &payload

	switch payload.Type {
	case hint.TypePostInsertEdit:
		pending, ok := c.pendingAIEdit[payload.Document]
		if !ok {
			return
		}
		delete(c.pendingAIEdit, payload.Document)
		doc, ok := resolveDoc(payload.Document)
		if !ok {
			return
		}
		fs := c.getOrCreate(doc)
		result := c.runTransform(fs, []textpos.Edit{*pending}, editreason.AIGenerated, classify.VCSContext{}, nowMS, doc)
		fs.Store = result.Store

	case hint.TypeCreateFile:
		doc, ok := resolveDoc(payload.Document)
		if !ok {
			return
		}
		fs := c.getOrCreate(doc)
		synthetic := textpos.Edit{Range: textpos.Range{}, Replacement: payload.InsertText}
		result := c.runTransform(fs, []textpos.Edit{synthetic}, editreason.AIGenerated, classify.VCSContext{}, nowMS, doc)
		fs.Store = result.Store
	}
}

// OnStorageConfigChange drops every
// cached FileState and rebuilds the persistence backend from the new
// configuration, forcing the next activation to reload from the new
// layout's location.
func (c *Coordinator) OnStorageConfigChange(cfg config.Config, vcsClient *vcs.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idx != nil {
		c.idx.Close()
	}

	c.cfg = cfg
	c.vcsClient = vcsClient
	c.store = buildStore(cfg, vcsClient, c.workspacePath, c.homeDir)
	c.idx = openIndex(cfg, c.workspacePath, c.homeDir, c.log)
	c.files = make(map[string]*FileState)
	c.pendingAIEdit = make(map[string]*textpos.Edit)
}

// Close releases the Coordinator's index database handle, if one is open.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idx == nil {
		return nil
	}
	return c.idx.Close()
}

// Snapshot returns a copy of doc's current interval store (used by tests;
// `tabd inspect` reads persisted logs via LoadRecords). It acquires the same process-wide lock
// as every other entry point.
func (c *Coordinator) Snapshot(doc docref.DocumentRef) []interval.Tagged {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs, ok := c.files[doc.URI()]
	if !ok {
		return nil
	}
	return append([]interval.Tagged(nil), fs.Store...)
}

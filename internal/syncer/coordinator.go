package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/focustank/internal/authstate"
	"github.com/dmitrijs2005/focustank/internal/collection"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
)

// Remote is the remote collection store.
type Remote interface {
	FetchAll(ctx context.Context, userID string) ([]collection.CollectedItem, error)
	ReplaceAll(ctx context.Context, userID string, items []collection.CollectedItem) error
}

// Local is the part of collection.Store the coordinator needs.
type Local interface {
	All() []collection.CollectedItem
	Apply(ctx context.Context, fn func(current []collection.CollectedItem) []collection.CollectedItem) []collection.CollectedItem
	Clear(ctx context.Context)
	Subscribe(fn func(collection.Change)) func()
}

// Result describes one finished merge.
type Result struct {
	Items    int
	Changed  bool
	Uploaded bool
	// RemoteUnavailable is set when the fetch failed and the merge ran
	// against an empty remote snapshot.
	RemoteUnavailable bool
	At                time.Time
}

type taskKind int

const (
	taskUpload taskKind = iota + 1
	taskMerge
)

func (k taskKind) String() string {
	if k == taskMerge {
		return "merge"
	}
	return "upload"
}

// Coordinator drives merge on sign-in and full upload after local
// mutations. Work runs detached; a newer request cancels the one in flight.
type Coordinator struct {
	local   Local
	remote  Remote
	log     logging.Logger
	timeout time.Duration
	onSync  func(Result)

	mu       sync.Mutex
	base     context.Context
	userID   string
	authed   bool
	cancel   context.CancelFunc
	inflight taskKind
	seq      uint64
	lastErr  error

	wg      sync.WaitGroup
	running atomic.Int32
}

type Option func(*Coordinator)

func WithLogger(l logging.Logger) Option { return func(c *Coordinator) { c.log = l } }

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option { return func(c *Coordinator) { c.timeout = d } }

// WithOnSync registers a callback run after each successful merge or upload.
func WithOnSync(fn func(Result)) Option { return func(c *Coordinator) { c.onSync = fn } }

func NewCoordinator(local Local, remote Remote, opts ...Option) *Coordinator {
	c := &Coordinator{
		local:   local,
		remote:  remote,
		log:     logging.Nop(),
		timeout: 15 * time.Second,
		base:    context.Background(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("module", "syncer")
	return c
}

// Attach subscribes to local mutations and schedules an upload after each
// one. Replacements and wipes are not re-uploaded.
func (c *Coordinator) Attach() func() {
	return c.local.Subscribe(func(ch collection.Change) {
		switch ch.Op {
		case collection.OpAdd, collection.OpUpdate, collection.OpRemove:
			c.RequestUpload()
		}
	})
}

// Run consumes authentication events until ctx is done or events closes.
// Detached tasks derive from ctx.
func (c *Coordinator) Run(ctx context.Context, events <-chan authstate.Event) {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			c.cancelInflight()
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			c.HandleEvent(ctx, e)
		}
	}
}

// HandleEvent applies one authentication transition.
func (c *Coordinator) HandleEvent(ctx context.Context, e authstate.Event) {
	switch e.State {
	case authstate.Authenticated:
		c.mu.Lock()
		c.userID = e.UserID
		c.authed = true
		c.mu.Unlock()
		c.log.Info(ctx, "signed in, merging collection", "user_id", e.UserID)
		c.RequestMerge()

	case authstate.Unauthenticated:
		c.mu.Lock()
		c.userID = ""
		c.authed = false
		c.mu.Unlock()
		c.cancelInflight()
		if e.Wipe {
			c.WipeLocal(ctx)
		}
		c.log.Info(ctx, "signed out, keeping local collection", "wiped", e.Wipe)
	}
}

// RequestUpload schedules a full upload. Unauthenticated mutations stay
// local; the next sign-in merge catches them up.
func (c *Coordinator) RequestUpload() {
	c.schedule(taskUpload)
}

// RequestMerge schedules fetch, merge and upload.
func (c *Coordinator) RequestMerge() {
	c.schedule(taskMerge)
}

func (c *Coordinator) schedule(kind taskKind) {
	c.mu.Lock()
	if !c.authed {
		c.mu.Unlock()
		return
	}
	// an upload never supersedes a pending merge, it joins it
	if c.inflight == taskMerge {
		kind = taskMerge
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.inflight = kind
	c.seq++
	seq := c.seq
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()
		c.running.Add(1)
		defer c.running.Add(-1)

		var err error
		if kind == taskMerge {
			_, err = c.Merge(ctx)
		} else {
			err = c.Upload(ctx)
		}

		switch {
		case err == nil:
		case ctx.Err() != nil && errors.Is(err, context.Canceled):
			c.log.Debug(ctx, "sync superseded", "task", kind)
		default:
			c.log.Warn(ctx, "sync failed, will retry on next change", "task", kind, "error", err)
		}

		c.mu.Lock()
		if c.seq == seq {
			c.cancel = nil
			c.inflight = 0
			c.lastErr = err
		}
		c.mu.Unlock()
	}()
}

func (c *Coordinator) session() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.authed
}

// Merge fetches the remote snapshot, merges it into the local collection
// and replaces the remote with the result. A failed fetch counts as an
// empty remote, so the local collection is uploaded as is.
func (c *Coordinator) Merge(ctx context.Context) (Result, error) {
	userID, ok := c.session()
	if !ok {
		return Result{}, common.ErrUnauthorized
	}

	remote, err := c.fetch(ctx, userID)
	unavailable := false
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		c.log.Warn(ctx, "remote unavailable, merging against an empty snapshot", "error", err)
		remote, unavailable = nil, true
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var changed bool
	merged := c.local.Apply(ctx, func(current []collection.CollectedItem) []collection.CollectedItem {
		out := Merge(current, remote)
		changed = !Equal(current, out)
		return out
	})

	res := Result{Items: len(merged), Changed: changed, RemoteUnavailable: unavailable, At: time.Now()}
	if err := c.replace(ctx, userID, merged); err != nil {
		return res, err
	}
	res.Uploaded = true

	c.log.Info(ctx, "collection merged", "items", res.Items, "changed", res.Changed, "remote", len(remote))
	if c.onSync != nil {
		c.onSync(res)
	}
	return res, nil
}

// Upload replaces the remote snapshot with the current local collection.
func (c *Coordinator) Upload(ctx context.Context) error {
	userID, ok := c.session()
	if !ok {
		return common.ErrUnauthorized
	}
	items := c.local.All()
	if err := c.replace(ctx, userID, items); err != nil {
		return err
	}
	c.log.Debug(ctx, "collection uploaded", "items", len(items))
	if c.onSync != nil {
		c.onSync(Result{Items: len(items), Uploaded: true, At: time.Now()})
	}
	return nil
}

func (c *Coordinator) fetch(ctx context.Context, userID string) ([]collection.CollectedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.remote.FetchAll(ctx, userID)
}

func (c *Coordinator) replace(ctx context.Context, userID string, items []collection.CollectedItem) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.remote.ReplaceAll(ctx, userID, items); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: replace: %v", common.ErrTransport, err)
	}
	return nil
}

// WipeLocal drops the local collection. Only called on explicit request.
func (c *Coordinator) WipeLocal(ctx context.Context) {
	c.cancelInflight()
	c.local.Clear(ctx)
	c.log.Info(ctx, "local collection wiped")
}

func (c *Coordinator) cancelInflight() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.inflight = 0
	}
	c.mu.Unlock()
}

// Syncing reports whether a detached task is running.
func (c *Coordinator) Syncing() bool { return c.running.Load() > 0 }

// Authenticated reports whether uploads are currently enabled.
func (c *Coordinator) Authenticated() bool {
	_, ok := c.session()
	return ok
}

// LastError returns the error of the most recent completed task.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Wait blocks until every detached task has returned.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Close cancels the task in flight and waits for it.
func (c *Coordinator) Close() {
	c.cancelInflight()
	c.Wait()
}

package commitment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
	"github.com/dmitrijs2005/focustank/internal/timex"
)

// ErrBlockerUnauthorized is reported as a start warning, never as a failure.
var ErrBlockerUnauthorized = errors.New("distraction blocker not authorized")

// State of the machine. Completed and Cancelled are transient and collapse
// back to Idle inside the same call.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Status is a point-in-time snapshot of the machine.
type Status struct {
	State       State
	Kind        Kind
	Title       string
	Start       time.Time
	Duration    time.Duration
	Elapsed     time.Duration
	Remaining   time.Duration
	Progress    float64
	CompletesAt time.Time
}

// Started is returned by Start. Warning is set when a collaborator failed
// without preventing the start.
type Started struct {
	Record      Record
	CompletesAt time.Time
	Warning     error
}

// Machine owns the single active commitment. All transitions are
// serialized by mu.
type Machine struct {
	mu sync.Mutex

	defs     map[Kind]Definition
	store    RecordStore
	clock    timex.Clock
	blocker  Blocker
	notifier Notifier
	log      logging.Logger

	active *Record
	// skipping holds the active commitment while an early finish is being
	// paid for, so it cannot complete on its own in the meantime.
	skipping bool
}

type Option func(*Machine)

func WithClock(c timex.Clock) Option { return func(m *Machine) { m.clock = c } }
func WithBlocker(b Blocker) Option { return func(m *Machine) { m.blocker = b } }
func WithNotifier(n Notifier) Option { return func(m *Machine) { m.notifier = n } }
func WithLogger(l logging.Logger) Option { return func(m *Machine) { m.log = l } }

func NewMachine(defs []Definition, store RecordStore, opts ...Option) (*Machine, error) {
	byKind, err := validateDefinitions(defs)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		defs:  byKind,
		store: store,
		clock: timex.SystemClock(),
		log:   logging.Nop(),
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With("module", "commitment")
	return m, nil
}

// Definitions returns every known commitment ordered by duration.
func (m *Machine) Definitions() []Definition {
	out := make([]Definition, 0, len(m.defs))
	for _, d := range m.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration < out[j].Duration
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func (m *Machine) Definition(kind Kind) (Definition, bool) {
	d, ok := m.defs[kind]
	return d, ok
}

// Restore reloads the persisted record, e.g. after a restart.
func (m *Machine) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.LoadActive(ctx)
	if err != nil {
		return fmt.Errorf("%w: load active commitment: %v", common.ErrPersistence, err)
	}
	if rec != nil {
		if _, ok := m.defs[rec.Kind]; !ok {
			m.log.Warn(ctx, "dropping record of unknown commitment", "kind", rec.Kind)
			if err := m.store.ClearActive(ctx); err != nil {
				return fmt.Errorf("%w: clear unknown commitment: %v", common.ErrPersistence, err)
			}
			rec = nil
		}
	}
	m.active = rec
	if rec != nil {
		m.log.Info(ctx, "restored active commitment", "kind", rec.Kind, "start", rec.Start)
	}
	return nil
}

// Start persists a new record and activates it. It fails with
// ErrAlreadyActive when a commitment is running and with ErrPersistence,
// leaving the machine unchanged, when the record cannot be written.
func (m *Machine) Start(ctx context.Context, kind Kind) (Started, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, ok := m.defs[kind]
	if !ok {
		return Started{}, fmt.Errorf("%w: unknown commitment %q", common.ErrNotFound, kind)
	}
	if m.active != nil {
		return Started{}, fmt.Errorf("%w: %s is running", common.ErrAlreadyActive, m.active.Kind)
	}

	rec := Record{Kind: kind, Start: m.clock.Now()}
	if err := m.store.SaveActive(ctx, rec); err != nil {
		return Started{}, fmt.Errorf("%w: save active commitment: %v", common.ErrPersistence, err)
	}
	m.active = &rec

	res := Started{Record: rec, CompletesAt: rec.Start.Add(def.Duration)}
	var warns []error

	if m.blocker != nil {
		if !m.blocker.IsAuthorized(ctx) {
			warns = append(warns, ErrBlockerUnauthorized)
		} else if err := m.blocker.Enable(ctx); err != nil {
			warns = append(warns, fmt.Errorf("enable blocker: %w", err))
		}
	}
	if m.notifier != nil {
		if err := m.notifier.ScheduleCompletion(ctx, kind, res.CompletesAt); err != nil {
			warns = append(warns, fmt.Errorf("schedule notification: %w", err))
		}
	}
	res.Warning = errors.Join(warns...)
	if res.Warning != nil {
		m.log.Warn(ctx, "commitment started with warnings", "kind", kind, "warning", res.Warning)
	}

	m.log.Info(ctx, "commitment started", "kind", kind, "duration", def.Duration)
	return res, nil
}

// CheckCompletion completes the active commitment once its duration has
// elapsed and returns its kind. It returns ok=false when idle or still
// running, so a second call after completion is a no-op.
func (m *Machine) CheckCompletion(ctx context.Context) (Kind, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkCompletion(ctx)
}

func (m *Machine) checkCompletion(ctx context.Context) (Kind, bool, error) {
	if m.active == nil || m.skipping {
		return "", false, nil
	}
	def := m.defs[m.active.Kind]
	if m.clock.Now().Sub(m.active.Start) < def.Duration {
		return "", false, nil
	}
	return m.finish(ctx, "completed")
}

// Cancel ends the active commitment without reward.
func (m *Machine) Cancel(ctx context.Context) (Kind, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return "", false, nil
	}
	if m.notifier != nil {
		if err := m.notifier.CancelCompletion(ctx); err != nil {
			m.log.Warn(ctx, "cancel notification failed", "error", err)
		}
	}
	return m.finish(ctx, "cancelled")
}

// BeginSkip reserves the active commitment for a paid early finish and
// returns its status. Until Skip or AbortSkip runs, CheckCompletion leaves
// it alone. ok is false when idle or when a skip is already pending.
func (m *Machine) BeginSkip() (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.skipping {
		return Status{State: Idle}, false
	}
	m.skipping = true
	return compute(m.defs[m.active.Kind], *m.active, m.clock.Now()), true
}

// AbortSkip releases a reservation taken by BeginSkip. A commitment whose
// time ran out meanwhile completes on the next CheckCompletion.
func (m *Machine) AbortSkip() {
	m.mu.Lock()
	m.skipping = false
	m.mu.Unlock()
}

// Skip completes the active commitment early. The caller is expected to
// have collected payment and still issues the reward.
func (m *Machine) Skip(ctx context.Context) (Kind, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return "", false, nil
	}
	if m.notifier != nil {
		if err := m.notifier.CancelCompletion(ctx); err != nil {
			m.log.Warn(ctx, "cancel notification failed", "error", err)
		}
	}
	return m.finish(ctx, "skipped")
}

// finish clears the record and returns to Idle. When the record cannot be
// cleared the machine stays active so the next call retries.
func (m *Machine) finish(ctx context.Context, how string) (Kind, bool, error) {
	kind := m.active.Kind
	if err := m.store.ClearActive(ctx); err != nil {
		return "", false, fmt.Errorf("%w: clear active commitment: %v", common.ErrPersistence, err)
	}
	m.active = nil
	m.skipping = false

	if m.blocker != nil {
		if err := m.blocker.Disable(ctx); err != nil {
			m.log.Warn(ctx, "disable blocker failed", "error", err)
		}
	}
	m.log.Info(ctx, "commitment "+how, "kind", kind)
	return kind, true, nil
}

// Active returns the active record.
func (m *Machine) Active() (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Record{}, false
	}
	return *m.active, true
}

// Progress is elapsed/duration clamped to [0,1], 0 when idle.
func (m *Machine) Progress() float64 {
	return m.Status().Progress
}

// Remaining is max(duration-elapsed, 0), 0 when idle.
func (m *Machine) Remaining() time.Duration {
	return m.Status().Remaining
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return Status{State: Idle}
	}
	def := m.defs[m.active.Kind]
	return compute(def, *m.active, m.clock.Now())
}

func compute(def Definition, rec Record, now time.Time) Status {
	elapsed := now.Sub(rec.Start)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := def.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := 1.0
	if def.Duration > 0 {
		progress = float64(elapsed) / float64(def.Duration)
		if progress > 1 {
			progress = 1
		}
	}

	return Status{
		State:       Active,
		Kind:        rec.Kind,
		Title:       def.Title,
		Start:       rec.Start,
		Duration:    def.Duration,
		Elapsed:     elapsed,
		Remaining:   remaining,
		Progress:    progress,
		CompletesAt: rec.Start.Add(def.Duration),
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/focustank/internal/collection"
	"github.com/dmitrijs2005/focustank/internal/commitment"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
	"github.com/dmitrijs2005/focustank/internal/reward"
)

// SkipProduct is the purchase identifier for an early completion.
const SkipProduct = "focustank.skip"

// ErrIdle is returned by Skip when no commitment is running.
var ErrIdle = errors.New("no active commitment")

// Purchaser collects payment for a product. A nil error means paid.
type Purchaser interface {
	Purchase(ctx context.Context, product string) error
}

// Completion is what a finished commitment produced.
type Completion struct {
	Kind       commitment.Kind
	Title      string
	Reward     reward.Reward
	Added      []collection.CollectedItem
	AutoHidden []collection.CollectedItem
	Skipped    bool
}

type Stats struct {
	TotalFocus  time.Duration
	ItemsCaught int64
	Counts      [catalog.RarityCount]int
	Visible     int
	Hidden      int
	Capacity    int
	LastSync    time.Time
}

// FocusService wires commitment completion to the lootbox and the
// collection. It owns no state of its own beyond the stats counters.
type FocusService struct {
	machine   *commitment.Machine
	roller    *reward.Roller
	tiers     map[string]reward.Tier
	store     *collection.Store
	meta      metadata.Repository
	purchaser Purchaser
	log       logging.Logger
}

func NewFocusService(
	m *commitment.Machine,
	roller *reward.Roller,
	tiers map[string]reward.Tier,
	store *collection.Store,
	meta metadata.Repository,
	purchaser Purchaser,
	l logging.Logger,
) (*FocusService, error) {
	for _, d := range m.Definitions() {
		if _, ok := tiers[d.Tier]; !ok {
			return nil, fmt.Errorf("%w: commitment %q uses unknown tier %q", common.ErrConfiguration, d.Kind, d.Tier)
		}
	}
	return &FocusService{
		machine:   m,
		roller:    roller,
		tiers:     tiers,
		store:     store,
		meta:      meta,
		purchaser: purchaser,
		log:       l.With("module", "focus"),
	}, nil
}

func (s *FocusService) Definitions() []commitment.Definition { return s.machine.Definitions() }

func (s *FocusService) Start(ctx context.Context, kind commitment.Kind) (commitment.Started, error) {
	return s.machine.Start(ctx, kind)
}

func (s *FocusService) Status() commitment.Status { return s.machine.Status() }

// Cancel abandons the running commitment. No reward, no focus time.
func (s *FocusService) Cancel(ctx context.Context) (commitment.Kind, bool, error) {
	return s.machine.Cancel(ctx)
}

// CheckCompletion returns nil, nil while running or idle.
func (s *FocusService) CheckCompletion(ctx context.Context) (*Completion, error) {
	st := s.machine.Status()
	kind, ok, err := s.machine.CheckCompletion(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return s.reward(ctx, kind, st.Duration, false)
}

// Skip charges for an early completion and then rewards as if the full
// duration had elapsed. Only the time actually spent counts as focus. The
// commitment is reserved while the purchase runs, so it cannot complete on
// its own after the user has paid.
func (s *FocusService) Skip(ctx context.Context) (*Completion, error) {
	if s.purchaser == nil {
		return nil, fmt.Errorf("skip is not available")
	}
	st, ok := s.machine.BeginSkip()
	if !ok {
		return nil, ErrIdle
	}

	if err := s.purchaser.Purchase(ctx, SkipProduct); err != nil {
		s.machine.AbortSkip()
		return nil, fmt.Errorf("purchase: %w", err)
	}

	kind, ok, err := s.machine.Skip(ctx)
	if err != nil {
		s.machine.AbortSkip()
		s.log.Error(ctx, "paid skip not applied", "kind", st.Kind, "error", err)
		return nil, err
	}
	if !ok {
		return nil, ErrIdle
	}
	return s.reward(ctx, kind, st.Elapsed, true)
}

func (s *FocusService) reward(ctx context.Context, kind commitment.Kind, focused time.Duration, skipped bool) (*Completion, error) {
	def, _ := s.machine.Definition(kind)
	tier := s.tiers[def.Tier]

	rw, err := s.roller.Open(tier)
	if err != nil {
		s.log.Error(ctx, "reward lost", "kind", kind, "error", err)
		return nil, fmt.Errorf("open reward for %s: %w", kind, err)
	}

	catches := make([]collection.Catch, 0, len(rw.Items))
	for _, d := range rw.Items {
		catches = append(catches, collection.Catch{Item: d.Item, Exceptional: d.Exceptional})
	}
	added, hidden := s.store.AddBatch(ctx, catches)

	if _, err := metadata.AddInt(ctx, s.meta, common.MetaTotalFocusSecs, int64(focused/time.Second)); err != nil {
		s.log.Warn(ctx, "focus stats not saved", "error", err)
	}
	if _, err := metadata.AddInt(ctx, s.meta, common.MetaTotalItemsCaught, int64(len(added))); err != nil {
		s.log.Warn(ctx, "catch stats not saved", "error", err)
	}

	s.log.Info(ctx, "reward issued", "kind", kind, "tier", tier.Name, "items", len(added), "auto_hidden", len(hidden))
	return &Completion{
		Kind:       kind,
		Title:      def.Title,
		Reward:     rw,
		Added:      added,
		AutoHidden: hidden,
		Skipped:    skipped,
	}, nil
}

// Watch polls for completion until ctx is done.
func (s *FocusService) Watch(ctx context.Context, interval time.Duration, onComplete func(*Completion)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, err := s.CheckCompletion(ctx)
			if err != nil {
				s.log.Error(ctx, "completion check failed", "error", err)
				continue
			}
			if c != nil && onComplete != nil {
				onComplete(c)
			}
		}
	}
}

// RecordSync stores the time of the last successful sync.
func (s *FocusService) RecordSync(ctx context.Context, at time.Time) {
	if err := metadata.SetTime(ctx, s.meta, common.MetaLastSync, at); err != nil {
		s.log.Warn(ctx, "last sync not saved", "error", err)
	}
}

func (s *FocusService) Stats(ctx context.Context) (Stats, error) {
	secs, err := metadata.GetInt(ctx, s.meta, common.MetaTotalFocusSecs)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	caught, err := metadata.GetInt(ctx, s.meta, common.MetaTotalItemsCaught)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	last, err := metadata.GetTime(ctx, s.meta, common.MetaLastSync)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	visible := s.store.VisibleCount()
	return Stats{
		TotalFocus:  time.Duration(secs) * time.Second,
		ItemsCaught: caught,
		Counts:      s.store.Counts(),
		Visible:     visible,
		Hidden:      s.store.Len() - visible,
		Capacity:    s.store.Capacity(),
		LastSync:    last,
	}, nil
}

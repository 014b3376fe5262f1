package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
	"github.com/dmitrijs2005/focustank/internal/timex"
)

// Snapshotter persists the full collection.
type Snapshotter interface {
	LoadAll(ctx context.Context) ([]CollectedItem, error)
	ReplaceAll(ctx context.Context, items []CollectedItem) error
}

// Op names a kind of change.
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpClear   Op = "clear"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Op  Op
	IDs []string
}

// Store is the authoritative in-process collection. Mutations are
// serialized, persisted through the Snapshotter and then announced to
// subscribers. A failed local write is logged and the in-memory mutation
// stands.
type Store struct {
	mu       sync.Mutex
	items    []CollectedItem
	capacity int

	snap  Snapshotter
	clock timex.Clock
	log   logging.Logger

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

type Option func(*Store)

func WithClock(c timex.Clock) Option { return func(s *Store) { s.clock = c } }
func WithLogger(l logging.Logger) Option { return func(s *Store) { s.log = l } }

func NewStore(capacity int, snap Snapshotter, opts ...Option) (*Store, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: visible capacity must be >= 1", common.ErrConfiguration)
	}
	s := &Store{
		capacity: capacity,
		snap:     snap,
		clock:    timex.SystemClock(),
		log:      logging.Nop(),
		subs:     map[int]func(Change){},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("module", "collection")
	return s, nil
}

func (s *Store) Capacity() int { return s.capacity }

// Load replaces the in-memory set with the persisted snapshot.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.snap.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: load collection: %v", common.ErrPersistence, err)
	}

	s.mu.Lock()
	s.items = sortItems(items)
	s.enforceCapacity()
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs synchronously after the mutation and must not
// call back into mutating methods.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) {
	if err := s.snap.ReplaceAll(ctx, s.snapshot()); err != nil {
		s.log.Error(ctx, "persist collection failed", "error", err)
	}
}

// Add appends one item, visible when a slot is free and hidden otherwise.
func (s *Store) Add(ctx context.Context, c Catch) CollectedItem {
	added, _ := s.AddBatch(ctx, []Catch{c})
	return added[0]
}

// AddBatch appends catches in order. Free visible slots go to the first
// items; the rest are inserted hidden and returned as autoHidden.
func (s *Store) AddBatch(ctx context.Context, catches []Catch) (added, autoHidden []CollectedItem) {
	if len(catches) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	now := s.clock.Now()
	free := s.capacity - s.visibleCount()
	ids := make([]string, 0, len(catches))
	for _, c := range catches {
		it := NewCollected(c, now)
		if free > 0 {
			it.Visible = true
			free--
		} else {
			autoHidden = append(autoHidden, it)
		}
		s.items = append(s.items, it)
		added = append(added, it)
		ids = append(ids, it.ID)
	}
	s.persist(ctx)
	s.mu.Unlock()

	if len(autoHidden) > 0 {
		s.log.Info(ctx, "items auto-hidden, tank is full", "count", len(autoHidden))
	}
	s.notify(Change{Op: OpAdd, IDs: ids})
	return added, autoHidden
}

// SetVisible toggles visibility. Showing an item when the visible slots are
// full fails with ErrCapacityExceeded and changes nothing.
func (s *Store) SetVisible(ctx context.Context, id string, visible bool) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: item %s", common.ErrNotFound, id)
	}
	if s.items[i].Visible == visible {
		s.mu.Unlock()
		return nil
	}
	if visible && s.visibleCount() >= s.capacity {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d of %d visible", common.ErrCapacityExceeded, s.capacity, s.capacity)
	}
	s.items[i].Visible = visible
	s.touch(i)
	s.persist(ctx)
	s.mu.Unlock()

	s.notify(Change{Op: OpUpdate, IDs: []string{id}})
	return nil
}

// Rename sets a custom display name. Blank names fail with ErrInvalidName.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrInvalidName)
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: item %s", common.ErrNotFound, id)
	}
	s.items[i].Name = name
	s.touch(i)
	s.persist(ctx)
	s.mu.Unlock()

	s.notify(Change{Op: OpUpdate, IDs: []string{id}})
	return nil
}

// Remove deletes an item permanently.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: item %s", common.ErrNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist(ctx)
	s.mu.Unlock()

	s.notify(Change{Op: OpRemove, IDs: []string{id}})
	return nil
}

// Replace installs items as the new authoritative set. Visible items
// beyond capacity are hidden in capture order.
func (s *Store) Replace(ctx context.Context, items []CollectedItem) {
	s.Apply(ctx, func([]CollectedItem) []CollectedItem { return items })
}

// Apply computes the new authoritative set from the current one while
// holding the store lock, so no local mutation can slip in between the
// read and the write. It returns the installed set.
func (s *Store) Apply(ctx context.Context, fn func(current []CollectedItem) []CollectedItem) []CollectedItem {
	s.mu.Lock()
	s.items = sortItems(fn(s.snapshot()))
	s.enforceCapacity()
	s.persist(ctx)
	out := s.snapshot()
	s.mu.Unlock()

	s.log.Debug(ctx, "collection replaced", "items", len(out))
	s.notify(Change{Op: OpReplace})
	return out
}

// Clear drops every local item, e.g. on an explicit sign-out wipe.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persist(ctx)
	s.mu.Unlock()

	s.notify(Change{Op: OpClear})
}

// touch bumps ModifiedAt, never moving it backwards. Timestamps keep
// microsecond precision so they survive a round trip through the server.
func (s *Store) touch(i int) {
	now := s.clock.Now().Truncate(TimePrecision)
	if now.After(s.items[i].ModifiedAt) {
		s.items[i].ModifiedAt = now
		return
	}
	s.items[i].ModifiedAt = s.items[i].ModifiedAt.Truncate(TimePrecision).Add(TimePrecision)
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) visibleCount() int {
	n := 0
	for _, it := range s.items {
		if it.Visible {
			n++
		}
	}
	return n
}

func (s *Store) snapshot() []CollectedItem {
	out := make([]CollectedItem, len(s.items))
	copy(out, s.items)
	return out
}

// All returns a copy of every item in capture order.
func (s *Store) All() []CollectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id string) (CollectedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return CollectedItem{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) VisibleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleCount()
}

func (s *Store) Visible() []CollectedItem {
	return s.filter(func(it CollectedItem) bool { return it.Visible })
}

func (s *Store) Hidden() []CollectedItem {
	return s.filter(func(it CollectedItem) bool { return !it.Visible })
}

func (s *Store) filter(keep func(CollectedItem) bool) []CollectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CollectedItem
	for _, it := range s.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// ByRarity groups items by rarity class.
func (s *Store) ByRarity() map[catalog.Rarity][]CollectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[catalog.Rarity][]CollectedItem)
	for _, it := range s.items {
		out[it.Rarity] = append(out[it.Rarity], it)
	}
	return out
}

// Counts returns the number of items per rarity in canonical order.
func (s *Store) Counts() [catalog.RarityCount]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [catalog.RarityCount]int
	for _, it := range s.items {
		if it.Rarity.Valid() {
			out[it.Rarity]++
		}
	}
	return out
}

// Recent returns up to n items, newest catch first.
func (s *Store) Recent(n int) []CollectedItem {
	all := s.All()
	sort.SliceStable(all, func(i, j int) bool { return all[i].CaughtAt.After(all[j].CaughtAt) })
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// ExportDoc is the JSON document written by Export.
type ExportDoc struct {
	ExportedAt time.Time       `json:"exported_at"`
	Capacity   int             `json:"visible_capacity"`
	Items      []CollectedItem `json:"items"`
}

// Export writes the collection as indented JSON.
func (s *Store) Export(w io.Writer) error {
	doc := ExportDoc{ExportedAt: s.clock.Now().UTC(), Capacity: s.capacity, Items: s.All()}
	if doc.Items == nil {
		doc.Items = []CollectedItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// sortItems orders by capture time, then id, on a copy.
func sortItems(items []CollectedItem) []CollectedItem {
	out := make([]CollectedItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CaughtAt.Equal(out[j].CaughtAt) {
			return out[i].CaughtAt.Before(out[j].CaughtAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// enforceCapacity hides visible items past capacity in slice order. A
// hidden item counts as modified.
func (s *Store) enforceCapacity() {
	seen := 0
	for i := range s.items {
		if !s.items[i].Visible {
			continue
		}
		seen++
		if seen > s.capacity {
			s.items[i].Visible = false
			s.touch(i)
		}
	}
}

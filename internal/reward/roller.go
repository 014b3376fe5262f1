package reward

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
)

// ItemSource lists catalog items of one rarity. *catalog.Catalog satisfies it.
type ItemSource interface {
	ByRarity(r catalog.Rarity) []catalog.Item
}

// Drawn is one item of the true outcome.
type Drawn struct {
	Item        catalog.Item
	Exceptional bool
}

// Reward is the result of opening one lootbox. Items is the economic
// outcome; Decoys only feed the presentation and carry no ownership.
type Reward struct {
	Tier   Tier
	Table  Table
	Items  []Drawn
	Decoys []catalog.Item
}

type Roller struct {
	mu sync.Mutex

	items  ItemSource
	tables *ProbabilityTable
	log    logging.Logger

	src       RandomSource
	decoySrc  RandomSource
	decoys    int
	exception float64
}

type Option func(*Roller)

// WithSource sets the source used for the true outcome.
func WithSource(src RandomSource) Option { return func(r *Roller) { r.src = src } }

// WithDecoySource sets the source used for decoys. It must not be the
// true-outcome source.
func WithDecoySource(src RandomSource) Option { return func(r *Roller) { r.decoySrc = src } }

func WithDecoyCount(n int) Option { return func(r *Roller) { r.decoys = n } }

func WithExceptionalChance(p float64) Option { return func(r *Roller) { r.exception = p } }

func WithLogger(l logging.Logger) Option { return func(r *Roller) { r.log = l } }

func NewRoller(items ItemSource, tables *ProbabilityTable, opts ...Option) *Roller {
	r := &Roller{
		items:  items,
		tables: tables,
		log:    logging.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.src == nil {
		r.src = DefaultSource()
	}
	if r.decoySrc == nil {
		// decoys are presentation only
		r.decoySrc = NewSeededSource(RandomSeed())
	}
	r.log = r.log.With("module", "reward")
	return r
}

// Draw picks a rarity from t using the true-outcome source.
func (r *Roller) Draw(t Table) catalog.Rarity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawRarity(t, r.src)
}

// DrawItem picks uniformly among the catalog items of rarity.
func (r *Roller) DrawItem(rarity catalog.Rarity) (catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawItem(rarity, r.src)
}

// Open draws the true items of tier first, then the decoys.
func (r *Roller) Open(tier Tier) (Reward, error) {
	if tier.Count < 1 {
		return Reward{}, fmt.Errorf("%w: tier %q yields no items", common.ErrConfiguration, tier.Name)
	}
	table, err := r.tables.For(tier)
	if err != nil {
		return Reward{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]Drawn, 0, tier.Count)
	for i := 0; i < tier.Count; i++ {
		rarity := r.drawRarity(table, r.src)
		it, err := r.drawItem(rarity, r.src)
		if err != nil {
			return Reward{}, err
		}
		items = append(items, Drawn{Item: it, Exceptional: r.src.Float64() < r.exception})
	}

	decoys, err := r.drawDecoys(table, r.decoys)
	if err != nil {
		return Reward{}, err
	}

	r.log.Debug(context.Background(), "lootbox opened", "tier", tier.Name, "items", len(items), "decoys", len(decoys))
	return Reward{Tier: tier, Table: table, Items: items, Decoys: decoys}, nil
}

func (r *Roller) drawRarity(t Table, src RandomSource) catalog.Rarity {
	u := src.Float64()
	rarity, fallback := Draw(t, u)
	if fallback {
		r.log.Warn(context.Background(), "rarity draw fell through, using rarest class", "u", u, "sum", t.Sum())
	}
	return rarity
}

func (r *Roller) drawItem(rarity catalog.Rarity, src RandomSource) (catalog.Item, error) {
	pool := r.items.ByRarity(rarity)
	if len(pool) == 0 {
		return catalog.Item{}, fmt.Errorf("%w: no items of rarity %s", common.ErrEmptyCatalog, rarity)
	}
	idx := int(src.Float64() * float64(len(pool)))
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	return pool[idx], nil
}

func (r *Roller) drawDecoys(t Table, n int) ([]catalog.Item, error) {
	if n <= 0 {
		return nil, nil
	}
	dt, err := DecoyTable(t)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Item, 0, n)
	for i := 0; i < n; i++ {
		it, err := r.drawItem(r.drawRarity(dt, r.decoySrc), r.decoySrc)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// Spin lays the reward out as a presentation strip: the decoys with the
// first true item inserted at slot.
func (rw Reward) Spin(slot int) []catalog.Item {
	if len(rw.Items) == 0 {
		return append([]catalog.Item(nil), rw.Decoys...)
	}
	if slot < 0 {
		slot = 0
	}
	if slot > len(rw.Decoys) {
		slot = len(rw.Decoys)
	}
	strip := make([]catalog.Item, 0, len(rw.Decoys)+1)
	strip = append(strip, rw.Decoys[:slot]...)
	strip = append(strip, rw.Items[0].Item)
	strip = append(strip, rw.Decoys[slot:]...)
	return strip
}

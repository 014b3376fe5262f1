// Package reward turns a reward tier into concrete catalog items: it boosts
// the base rarity table, draws the true outcome and, separately, a decoy
// sequence used only for presentation.
package reward

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/common"
)

// Table is a distribution over rarity classes in canonical order.
type Table [catalog.RarityCount]float64

func (t Table) Sum() float64 {
	s := 0.0
	for _, p := range t {
		s += p
	}
	return s
}

// Normalize divides every weight by the sum.
func (t Table) Normalize() (Table, error) {
	sum := t.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Table{}, fmt.Errorf("%w: table sum %v", common.ErrConfiguration, sum)
	}
	var out Table
	for i, p := range t {
		out[i] = p / sum
	}
	return out, nil
}

// Shares bounds the boosted weights before renormalization.
type Shares struct {
	Min       float64 // floor for the most common class
	Max       float64 // cap for the rarest class
	MiddleMax float64 // cap for every class in between
}

// Tier is how many items a lootbox yields and how hard it skews the draw.
type Tier struct {
	Name  string
	Count int
	Boost float64
}

// ProbabilityTable maps a boost factor to a normalized distribution.
type ProbabilityTable struct {
	base   Table
	shares Shares
}

func NewProbabilityTable(base Table, shares Shares) (*ProbabilityTable, error) {
	for i, p := range base {
		if p < 0 {
			return nil, fmt.Errorf("%w: base[%s] is negative", common.ErrConfiguration, catalog.Rarity(i))
		}
	}
	if base.Sum() <= 0 {
		return nil, fmt.Errorf("%w: base table is empty", common.ErrConfiguration)
	}
	return &ProbabilityTable{base: base, shares: shares}, nil
}

func (pt *ProbabilityTable) Base() Table { return pt.base }

// Boost scales the base table by boost and renormalizes:
//
//	common     max(min, p/boost)
//	legendary  min(max, p*boost)
//	others     min(middleMax, p*(1+(boost-1)/2))
func (pt *ProbabilityTable) Boost(boost float64) (Table, error) {
	if boost <= 0 || math.IsNaN(boost) || math.IsInf(boost, 0) {
		return Table{}, fmt.Errorf("%w: boost must be > 0, got %v", common.ErrConfiguration, boost)
	}

	last := catalog.RarityCount - 1
	middle := 1 + (boost-1)*0.5

	var w Table
	for i, p := range pt.base {
		switch i {
		case 0:
			w[i] = math.Max(pt.shares.Min, p/boost)
		case last:
			w[i] = math.Min(pt.shares.Max, p*boost)
		default:
			w[i] = math.Min(pt.shares.MiddleMax, p*middle)
		}
	}
	return w.Normalize()
}

// For returns the boosted table of tier.
func (pt *ProbabilityTable) For(tier Tier) (Table, error) {
	return pt.Boost(tier.Boost)
}

// DecoyTable doubles the two rarest classes, halves the two most common
// and renormalizes. It is only used to dress up the presentation.
func DecoyTable(t Table) (Table, error) {
	out := t
	out[catalog.Common] /= 2
	out[catalog.Uncommon] /= 2
	out[catalog.Epic] *= 2
	out[catalog.Legendary] *= 2
	return out.Normalize()
}

// Draw returns the first class whose cumulative probability reaches u.
// When rounding leaves u above every cumulative sum, the rarest class is
// returned and fallback is true.
func Draw(t Table, u float64) (r catalog.Rarity, fallback bool) {
	acc := 0.0
	for i, p := range t {
		acc += p
		if acc >= u {
			return catalog.Rarity(i), false
		}
	}
	return catalog.Legendary, true
}

package reward

import (
	"github.com/dmitrijs2005/focustank/internal/tuning"
)

// TableFromTuning builds the probability table from the rarity section.
func TableFromTuning(cfg *tuning.Config) (*ProbabilityTable, error) {
	return NewProbabilityTable(Table(cfg.BaseTable()), Shares{
		Min:       cfg.Rarity.MinShare,
		Max:       cfg.Rarity.MaxShare,
		MiddleMax: cfg.Rarity.MiddleMaxShare,
	})
}

// TiersFromTuning returns every configured tier keyed by name.
func TiersFromTuning(cfg *tuning.Config) map[string]Tier {
	out := make(map[string]Tier, len(cfg.Tiers))
	for name, t := range cfg.Tiers {
		out[name] = Tier{Name: name, Count: t.Count, Boost: t.Boost}
	}
	return out
}

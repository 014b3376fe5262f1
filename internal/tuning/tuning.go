// Package tuning loads the game constants: rarity probabilities, reward
// tiers, commitment durations, collection capacity and the item catalog.
// Values are configuration, not code; an embedded default ships with the
// binary and an optional YAML file may override parts of it.
package tuning

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/common"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Rarity      RarityConfig          `yaml:"rarity"`
	Tiers       map[string]TierConfig `yaml:"tiers"`
	Commitments []CommitmentConfig    `yaml:"commitments"`
	Collection  CollectionConfig      `yaml:"collection"`
	Reward      RewardConfig          `yaml:"reward"`
	Catalog     []ItemConfig          `yaml:"catalog"`
}

type RarityConfig struct {
	// Base maps rarity name to its unboosted probability.
	Base           map[string]float64 `yaml:"base"`
	MinShare       float64            `yaml:"min_share"`
	MaxShare       float64            `yaml:"max_share"`
	MiddleMaxShare float64            `yaml:"middle_max_share"`
}

type TierConfig struct {
	Count int     `yaml:"count"`
	Boost float64 `yaml:"boost"`
}

type CommitmentConfig struct {
	Kind     string        `yaml:"kind"`
	Title    string        `yaml:"title"`
	Duration time.Duration `yaml:"duration"`
	Tier     string        `yaml:"tier"`
}

type CollectionConfig struct {
	VisibleCapacity int `yaml:"visible_capacity"`
}

type RewardConfig struct {
	ExceptionalChance float64 `yaml:"exceptional_chance"`
	Decoys            int     `yaml:"decoys"`
	WinnerSlot        int     `yaml:"winner_slot"`
}

type ItemConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Rarity string `yaml:"rarity"`
	Size   string `yaml:"size"`
}

// Default returns the embedded tuning.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		return nil, fmt.Errorf("%w: embedded tuning: %v", common.ErrConfiguration, err)
	}
	return cfg, nil
}

// Load returns the embedded tuning with the file at path decoded on top of
// it, then validates the result. An empty path or a missing file yields the
// default alone.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: read tuning %s: %v", common.ErrConfiguration, path, err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("%w: parse tuning %s: %v", common.ErrConfiguration, path, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every violation at once, wrapped in ErrConfiguration.
func (c *Config) Validate() error {
	var errs []string

	seen := map[string]bool{}
	sum := 0.0
	for name, p := range c.Rarity.Base {
		if _, err := catalog.ParseRarity(name); err != nil {
			errs = append(errs, fmt.Sprintf("rarity.base: unknown rarity %q", name))
			continue
		}
		if p <= 0 || p >= 1 {
			errs = append(errs, fmt.Sprintf("rarity.base.%s must be in (0,1)", name))
		}
		seen[strings.ToLower(name)] = true
		sum += p
	}
	for _, r := range catalog.Rarities() {
		if !seen[r.String()] {
			errs = append(errs, fmt.Sprintf("rarity.base.%s is missing", r))
		}
	}
	if sum <= 0 {
		errs = append(errs, "rarity.base must have a positive sum")
	}
	for name, v := range map[string]float64{
		"min_share":        c.Rarity.MinShare,
		"max_share":        c.Rarity.MaxShare,
		"middle_max_share": c.Rarity.MiddleMaxShare,
	} {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("rarity.%s must be in (0,1]", name))
		}
	}

	if len(c.Tiers) == 0 {
		errs = append(errs, "tiers must not be empty")
	}
	for _, name := range sortedKeys(c.Tiers) {
		t := c.Tiers[name]
		if t.Count < 1 {
			errs = append(errs, fmt.Sprintf("tiers.%s.count must be >= 1", name))
		}
		if t.Boost <= 0 {
			errs = append(errs, fmt.Sprintf("tiers.%s.boost must be > 0", name))
		}
	}

	if len(c.Commitments) == 0 {
		errs = append(errs, "commitments must not be empty")
	}
	kinds := map[string]bool{}
	for i, cm := range c.Commitments {
		if cm.Kind == "" {
			errs = append(errs, fmt.Sprintf("commitments[%d].kind is required", i))
		} else if kinds[cm.Kind] {
			errs = append(errs, fmt.Sprintf("commitments[%d].kind %q is duplicated", i, cm.Kind))
		}
		kinds[cm.Kind] = true
		if cm.Duration < 0 {
			errs = append(errs, fmt.Sprintf("commitments[%d].duration must be >= 0", i))
		}
		if _, ok := c.Tiers[cm.Tier]; !ok {
			errs = append(errs, fmt.Sprintf("commitments[%d].tier %q is not defined", i, cm.Tier))
		}
	}

	if c.Collection.VisibleCapacity < 1 {
		errs = append(errs, "collection.visible_capacity must be >= 1")
	}

	if c.Reward.ExceptionalChance < 0 || c.Reward.ExceptionalChance > 1 {
		errs = append(errs, "reward.exceptional_chance must be in [0,1]")
	}
	if c.Reward.Decoys < 0 {
		errs = append(errs, "reward.decoys must be >= 0")
	}
	if c.Reward.WinnerSlot < 0 || c.Reward.WinnerSlot > c.Reward.Decoys {
		errs = append(errs, "reward.winner_slot must be in [0,decoys]")
	}

	if _, err := c.BuildCatalog(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", common.ErrConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

// BuildCatalog converts the catalog section into a catalog.Catalog.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	items := make([]catalog.Item, 0, len(c.Catalog))
	for _, ic := range c.Catalog {
		r, err := catalog.ParseRarity(ic.Rarity)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", ic.ID, err)
		}
		s, err := catalog.ParseSize(ic.Size)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", ic.ID, err)
		}
		items = append(items, catalog.Item{ID: ic.ID, Name: ic.Name, Rarity: r, Size: s})
	}
	return catalog.New(items)
}

// BaseTable returns the base probabilities in canonical rarity order.
func (c *Config) BaseTable() [catalog.RarityCount]float64 {
	var out [catalog.RarityCount]float64
	for name, p := range c.Rarity.Base {
		if r, err := catalog.ParseRarity(name); err == nil {
			out[r] = p
		}
	}
	return out
}

// Commitment looks up a commitment by kind.
func (c *Config) Commitment(kind string) (CommitmentConfig, bool) {
	for _, cm := range c.Commitments {
		if cm.Kind == kind {
			return cm, true
		}
	}
	return CommitmentConfig{}, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

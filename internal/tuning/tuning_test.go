package tuning

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, [catalog.RarityCount]float64{0.50, 0.30, 0.15, 0.04, 0.01}, cfg.BaseTable())
	assert.Equal(t, 0.10, cfg.Rarity.MinShare)
	assert.Equal(t, 0.30, cfg.Rarity.MaxShare)
	assert.Equal(t, 0.40, cfg.Rarity.MiddleMaxShare)

	assert.Equal(t, TierConfig{Count: 1, Boost: 1.0}, cfg.Tiers["basic"])
	assert.Equal(t, TierConfig{Count: 2, Boost: 1.5}, cfg.Tiers["silver"])
	assert.Equal(t, TierConfig{Count: 4, Boost: 2.0}, cfg.Tiers["gold"])
	assert.Equal(t, TierConfig{Count: 6, Boost: 3.0}, cfg.Tiers["platinum"])

	short, ok := cfg.Commitment("short")
	require.True(t, ok)
	assert.Equal(t, 600*time.Second, short.Duration)
	assert.Equal(t, "silver", short.Tier)

	long, ok := cfg.Commitment("long")
	require.True(t, ok)
	assert.Equal(t, 4*time.Hour, long.Duration)

	_, ok = cfg.Commitment("marathon")
	assert.False(t, ok)

	assert.Equal(t, 20, cfg.Collection.VisibleCapacity)
	assert.Equal(t, 0.02, cfg.Reward.ExceptionalChance)
	assert.Equal(t, 29, cfg.Reward.Decoys)
	assert.Equal(t, 20, cfg.Reward.WinnerSlot)

	cat, err := cfg.BuildCatalog()
	require.NoError(t, err)
	assert.Equal(t, 21, cat.Len())
	assert.Len(t, cat.ByRarity(catalog.Legendary), 4)
	whale, ok := cat.Lookup("blue_whale")
	require.True(t, ok)
	assert.Equal(t, "Blue Whale", whale.Name)
	assert.Equal(t, catalog.Giant, whale.Size)
}

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Collection.VisibleCapacity)
}

func TestLoad_OverrideMergesOverDefault(t *testing.T) {
	path := writeYAML(t, `
collection:
  visible_capacity: 5
tiers:
  gold: { count: 3, boost: 2.5 }
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Collection.VisibleCapacity)
	assert.Equal(t, TierConfig{Count: 3, Boost: 2.5}, cfg.Tiers["gold"])
	assert.Equal(t, TierConfig{Count: 2, Boost: 1.5}, cfg.Tiers["silver"], "untouched keys survive")
	assert.Len(t, cfg.Commitments, 4)
}

func TestLoad_InvalidOverrideCollectsAllErrors(t *testing.T) {
	path := writeYAML(t, `
collection:
  visible_capacity: 0
tiers:
  silver: { count: 0, boost: -1 }
commitments:
  - { kind: short, duration: 10m, tier: diamond }
  - { kind: short, duration: -1s, tier: basic }
`)
	_, err := Load(path)
	require.ErrorIs(t, err, common.ErrConfiguration)

	msg := err.Error()
	for _, want := range []string{
		"collection.visible_capacity must be >= 1",
		"tiers.silver.count must be >= 1",
		"tiers.silver.boost must be > 0",
		`commitments[0].tier "diamond" is not defined`,
		`commitments[1].kind "short" is duplicated`,
		"commitments[1].duration must be >= 0",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoad_BrokenYAML(t *testing.T) {
	path := writeYAML(t, "rarity: [unclosed")
	_, err := Load(path)
	require.ErrorIs(t, err, common.ErrConfiguration)
}

func TestValidate_CatalogMissingRarity(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	var kept []ItemConfig
	for _, it := range cfg.Catalog {
		if it.Rarity != "epic" {
			kept = append(kept, it)
		}
	}
	cfg.Catalog = kept

	err = cfg.Validate()
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Contains(t, err.Error(), "rarity epic has no items")
}

func TestValidate_UnknownRarityInBase(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Rarity.Base["mythic"] = 0.2
	delete(cfg.Rarity.Base, "legendary")

	err = cfg.Validate()
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Contains(t, err.Error(), `unknown rarity "mythic"`)
	assert.Contains(t, err.Error(), "rarity.base.legendary is missing")
}

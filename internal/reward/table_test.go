package reward

import (
	"testing"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

var (
	baseTable     = Table{0.50, 0.30, 0.15, 0.04, 0.01}
	defaultShares = Shares{Min: 0.1, Max: 0.3, MiddleMax: 0.4}
)

func newTable(t *testing.T) *ProbabilityTable {
	t.Helper()
	pt, err := NewProbabilityTable(baseTable, defaultShares)
	require.NoError(t, err)
	return pt
}

func TestBoost_SumsToOne(t *testing.T) {
	pt := newTable(t)

	for _, b := range []float64{0.01, 0.1, 0.5, 1, 1.5, 2, 3, 5, 10, 100, 1e6} {
		table, err := pt.Boost(b)
		require.NoError(t, err, "boost %v", b)
		assert.InDelta(t, 1.0, table.Sum(), eps, "boost %v", b)
		for i, p := range table {
			assert.GreaterOrEqual(t, p, 0.0, "boost %v class %d", b, i)
		}
	}
}

func TestBoost_OneReproducesBase(t *testing.T) {
	table, err := newTable(t).Boost(1)
	require.NoError(t, err)
	for i := range baseTable {
		assert.InDelta(t, baseTable[i], table[i], eps, catalog.Rarity(i).String())
	}
}

func TestBoost_RejectsNonPositive(t *testing.T) {
	pt := newTable(t)
	for _, b := range []float64{0, -1, -0.5} {
		_, err := pt.Boost(b)
		require.ErrorIs(t, err, common.ErrConfiguration, "boost %v", b)
	}
}

func TestBoost_ShiftsTowardRare(t *testing.T) {
	pt := newTable(t)
	plain, err := pt.Boost(1)
	require.NoError(t, err)
	platinum, err := pt.For(Tier{Name: "platinum", Count: 6, Boost: 3})
	require.NoError(t, err)

	assert.Less(t, platinum[catalog.Common], plain[catalog.Common])
	assert.Greater(t, platinum[catalog.Legendary], plain[catalog.Legendary])
	assert.Greater(t, platinum[catalog.Epic], plain[catalog.Epic])
}

func TestBoost_SilverMatchesHandComputed(t *testing.T) {
	table, err := newTable(t).Boost(1.5)
	require.NoError(t, err)

	// weights before renormalization
	w := Table{0.5 / 1.5, 0.3 * 1.25, 0.15 * 1.25, 0.04 * 1.25, 0.01 * 1.5}
	sum := w.Sum()
	for i := range w {
		assert.InDelta(t, w[i]/sum, table[i], eps)
	}
}

func TestBoost_CapsApply(t *testing.T) {
	table, err := newTable(t).Boost(1000)
	require.NoError(t, err)

	// common floored at 0.1, legendary capped at 0.3, uncommon capped at 0.4
	w := Table{0.1, 0.4, 0.4, 0.4, 0.3}
	sum := w.Sum()
	for i := range w {
		assert.InDelta(t, w[i]/sum, table[i], eps)
	}
}

func TestNewProbabilityTable_RejectsBadBase(t *testing.T) {
	_, err := NewProbabilityTable(Table{}, defaultShares)
	require.ErrorIs(t, err, common.ErrConfiguration)

	_, err = NewProbabilityTable(Table{0.5, -0.1, 0.3, 0.2, 0.1}, defaultShares)
	require.ErrorIs(t, err, common.ErrConfiguration)
}

func TestDecoyTable(t *testing.T) {
	dt, err := DecoyTable(baseTable)
	require.NoError(t, err)

	w := Table{0.25, 0.15, 0.15, 0.08, 0.02}
	sum := w.Sum()
	for i := range w {
		assert.InDelta(t, w[i]/sum, dt[i], eps)
	}
	assert.InDelta(t, 1.0, dt.Sum(), eps)
}

func TestDraw(t *testing.T) {
	table, err := newTable(t).Boost(2)
	require.NoError(t, err)

	r, fb := Draw(table, 0)
	assert.Equal(t, catalog.Common, r)
	assert.False(t, fb)

	r, fb = Draw(baseTable, 0.55)
	assert.Equal(t, catalog.Uncommon, r)
	assert.False(t, fb)

	r, fb = Draw(baseTable, 0.995)
	assert.Equal(t, catalog.Legendary, r)
	assert.False(t, fb)

	r, _ = Draw(table, 1-1e-12)
	assert.Equal(t, catalog.Legendary, r)
}

func TestDraw_FallbackWhenSumFallsShort(t *testing.T) {
	short := Table{0.2, 0.2, 0.2, 0.2, 0.1}

	r, fb := Draw(short, 0.95)
	assert.Equal(t, catalog.Legendary, r)
	assert.True(t, fb)

	r, fb = Draw(short, 0.85)
	assert.Equal(t, catalog.Legendary, r)
	assert.False(t, fb)
}

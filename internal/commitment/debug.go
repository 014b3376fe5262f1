//go:build debug

package commitment

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/focustank/internal/common"
)

// ForceComplete rewrites the persisted start time so the active commitment
// is due, then runs the regular completion check. Debug builds only.
func (m *Machine) ForceComplete(ctx context.Context) (Kind, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return "", false, nil
	}
	def := m.defs[m.active.Kind]
	rec := Record{Kind: m.active.Kind, Start: m.clock.Now().Add(-def.Duration)}
	if err := m.store.SaveActive(ctx, rec); err != nil {
		return "", false, fmt.Errorf("%w: rewrite start: %v", common.ErrPersistence, err)
	}
	m.active = &rec
	m.log.Warn(ctx, "commitment fast-forwarded", "kind", rec.Kind)

	return m.checkCompletion(ctx)
}

package collection

import (
	"context"
	"sync"
)

// MemorySnapshotter keeps the snapshot in memory. Fail makes writes fail.
type MemorySnapshotter struct {
	mu    sync.Mutex
	items []CollectedItem
	saves int
	Fail  error
}

func (m *MemorySnapshotter) LoadAll(context.Context) ([]CollectedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CollectedItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MemorySnapshotter) ReplaceAll(_ context.Context, items []CollectedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.items = make([]CollectedItem, len(items))
	copy(m.items, items)
	m.saves++
	return nil
}

// Saves reports how many snapshots were written.
func (m *MemorySnapshotter) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

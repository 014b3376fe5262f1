package commitment

import (
	"context"
	"sync"
)

// MemoryStore is an in-process RecordStore. FailSave and FailClear make
// the next writes fail.
type MemoryStore struct {
	mu        sync.Mutex
	rec       *Record
	FailSave  error
	FailClear error
}

func (s *MemoryStore) LoadActive(context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	r := *s.rec
	return &r, nil
}

func (s *MemoryStore) SaveActive(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.rec = &rec
	return nil
}

func (s *MemoryStore) ClearActive(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailClear != nil {
		return s.FailClear
	}
	s.rec = nil
	return nil
}

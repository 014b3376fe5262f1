//go:build debug

package services

import "context"

// ForceComplete finishes the active commitment now and issues its reward.
func (s *FocusService) ForceComplete(ctx context.Context) (*Completion, error) {
	st := s.machine.Status()
	kind, ok, err := s.machine.ForceComplete(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return s.reward(ctx, kind, st.Elapsed, false)
}

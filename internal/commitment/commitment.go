// Package commitment tracks the single active focus commitment. Progress is
// always derived from the persisted start time and the wall clock, so the
// machine survives suspension and restarts without losing or double
// counting time.
package commitment

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/tuning"
)

// Kind identifies a commitment definition, e.g. "short".
type Kind string

// Definition maps a commitment kind to its duration and reward tier.
type Definition struct {
	Kind     Kind
	Title    string
	Duration time.Duration
	Tier     string
}

// Record is the only durable state of an active commitment.
type Record struct {
	Kind  Kind
	Start time.Time
}

// RecordStore persists the active record synchronously.
type RecordStore interface {
	// LoadActive returns nil when no commitment is active.
	LoadActive(ctx context.Context) (*Record, error)
	SaveActive(ctx context.Context, rec Record) error
	ClearActive(ctx context.Context) error
}

// Blocker asks the platform to block distractions.
type Blocker interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	IsAuthorized(ctx context.Context) bool
}

// Notifier schedules the completion notification.
type Notifier interface {
	ScheduleCompletion(ctx context.Context, kind Kind, at time.Time) error
	CancelCompletion(ctx context.Context) error
}

// DefinitionsFromTuning converts the commitments section.
func DefinitionsFromTuning(cfg *tuning.Config) []Definition {
	out := make([]Definition, 0, len(cfg.Commitments))
	for _, c := range cfg.Commitments {
		out = append(out, Definition{
			Kind:     Kind(c.Kind),
			Title:    c.Title,
			Duration: c.Duration,
			Tier:     c.Tier,
		})
	}
	return out
}

func validateDefinitions(defs []Definition) (map[Kind]Definition, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no commitment definitions", common.ErrConfiguration)
	}
	out := make(map[Kind]Definition, len(defs))
	for _, d := range defs {
		if d.Kind == "" {
			return nil, fmt.Errorf("%w: commitment without kind", common.ErrConfiguration)
		}
		if _, dup := out[d.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate commitment %q", common.ErrConfiguration, d.Kind)
		}
		if d.Duration < 0 {
			return nil, fmt.Errorf("%w: commitment %q has negative duration", common.ErrConfiguration, d.Kind)
		}
		out[d.Kind] = d
	}
	return out, nil
}

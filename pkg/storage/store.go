package storage

import (
	"context"

	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
)

// Store is the persistence collaborator for event templates and their
// recurrence rules. Loads are idempotent and side-effect-free on the caller's
// in-memory state; saves have full overwrite semantics, not incremental.
//
// The rule collection is a map keyed by event id, which makes the
// at-most-one-rule-per-event invariant structural: inserting a rule for an
// id that already has one replaces it.
type Store interface {
	LoadEvents(ctx context.Context) ([]event.Event, error)
	LoadRules(ctx context.Context) (map[int]recurrence.Rule, error)
	SaveEvents(ctx context.Context, events []event.Event) error
	SaveRules(ctx context.Context, rules map[int]recurrence.Rule) error
}

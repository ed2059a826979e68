package backup

import (
	"context"
	"fmt"

	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/event"
	"github.com/chrona/chrona/pkg/recurrence"
	"github.com/chrona/chrona/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// Merger imports a foreign batch of events and recurrence rules into the live
// collections. Foreign events equal to an existing live event (loose equality:
// case-insensitive title plus exact start time) are discarded and mapped onto
// the live id; the rest get fresh ids from the allocator. Rules follow their
// events through the translation table and replace any live rule for the
// mapped id, so the one-rule-per-event invariant holds at completion.
type Merger struct {
	store storage.Store
	alloc *utils.IDAllocator
}

func NewMerger(store storage.Store, alloc *utils.IDAllocator) *Merger {
	return &Merger{store: store, alloc: alloc}
}

// Merge resolves the foreign batch against the live data and persists the
// result, then reloads so subsequent reads observe resolved state. It returns
// the foreign-id to live-id translation table. Rules whose foreign event
// never made it into the table are dropped, never attached to an unrelated
// event.
func (m *Merger) Merge(ctx context.Context, foreignEvents []event.Event, foreignRules []recurrence.Rule) (map[int]int, error) {
	live, err := m.store.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load live events: %w", err)
	}

	added := 0
	idMap := make(map[int]int, len(foreignEvents))
	for _, foreign := range foreignEvents {
		if existing, ok := findSame(live, foreign); ok {
			idMap[foreign.ID] = existing.ID
			continue
		}
		imported := foreign
		imported.ID = m.alloc.Next()
		imported.Normalize()
		live = append(live, imported)
		idMap[foreign.ID] = imported.ID
		added++
	}

	rules, err := m.store.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load live rules: %w", err)
	}
	for _, foreign := range foreignRules {
		liveID, ok := idMap[foreign.EventID]
		if !ok {
			log.Warnf("dropping recurrence rule for unknown foreign event %d", foreign.EventID)
			continue
		}
		rule := foreign
		rule.EventID = liveID
		rules[liveID] = rule
	}

	if err := m.store.SaveEvents(ctx, live); err != nil {
		return nil, fmt.Errorf("failed to save merged events: %w", err)
	}
	if err := m.store.SaveRules(ctx, rules); err != nil {
		return nil, fmt.Errorf("failed to save merged rules: %w", err)
	}
	// reload so the data files and the collections seen by later reads agree
	if _, err := m.store.LoadEvents(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload events after merge: %w", err)
	}
	if _, err := m.store.LoadRules(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload rules after merge: %w", err)
	}

	log.Infof("merged %d foreign events, %d added, %d mapped to existing ones", len(foreignEvents), added, len(foreignEvents)-added)
	return idMap, nil
}

func findSame(live []event.Event, candidate event.Event) (event.Event, bool) {
	for _, e := range live {
		if e.SameAs(candidate) {
			return e, true
		}
	}
	return event.Event{}, false
}

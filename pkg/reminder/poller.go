package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/chrona/chrona/internal/event_bus"
	"github.com/chrona/chrona/internal/utils"
	"github.com/chrona/chrona/pkg/search"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Poller periodically scans the near future for occurrences whose reminder
// window has opened and publishes one ReminderDue per occurrence. A fired
// occurrence is remembered until its start time passes, so a notification is
// published at most once even though the window spans several ticks.
type Poller struct {
	cron      *cron.Cron
	searcher  search.Service
	service   Service
	bus       *event_bus.EventBus
	clock     utils.Clock
	lookahead time.Duration

	fired map[string]time.Time
}

func NewPoller(searcher search.Service, service Service, bus *event_bus.EventBus, lookahead time.Duration) *Poller {
	return &Poller{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.PrintfLogger(log.StandardLogger())),
		)),
		searcher:  searcher,
		service:   service,
		bus:       bus,
		clock:     utils.SystemClock{},
		lookahead: lookahead,
		fired:     make(map[string]time.Time),
	}
}

// Start schedules the poll on the given cron spec (e.g. "@every 1m") and
// launches the scheduler.
func (p *Poller) Start(spec string) error {
	if _, err := p.cron.AddFunc(spec, func() {
		if err := p.Poll(context.Background()); err != nil {
			log.Errorf("reminder poll failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	p.cron.Start()
	log.Infof("reminder poller started with schedule %q", spec)
	return nil
}

// Stop stops the scheduler and waits for a running poll to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}

// Poll runs a single scan. It is called by the scheduler but is exported so a
// poll can also be triggered directly.
func (p *Poller) Poll(ctx context.Context) error {
	now := p.clock.Now()

	reminders, err := p.service.List(ctx)
	if err != nil {
		return err
	}
	if len(reminders) == 0 {
		p.prune(now)
		return nil
	}

	occurrences, err := p.searcher.SearchByDateRange(ctx, now, now.Add(p.lookahead))
	if err != nil {
		return err
	}

	for _, n := range Due(occurrences, reminders, now) {
		key := firedKey(n.EventID, n.StartTime)
		if _, seen := p.fired[key]; seen {
			continue
		}
		p.fired[key] = n.StartTime
		log.Info(n.Message)
		if err := p.bus.Publish(event_bus.NewEvent(ctx, event_bus.ReminderDueTopic, n)); err != nil {
			log.Warnf("failed to publish reminder for event %d: %v", n.EventID, err)
		}
	}
	p.prune(now)
	return nil
}

func (p *Poller) prune(now time.Time) {
	for key, start := range p.fired {
		if start.Before(now) {
			delete(p.fired, key)
		}
	}
}

func firedKey(eventID int, start time.Time) string {
	return fmt.Sprintf("%d@%d", eventID, start.Unix())
}

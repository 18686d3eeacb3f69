package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

type EventType string

const (
	EventOpened   EventType = "opened"
	EventResolved EventType = "resolved"
)

// Event marks a service crossing into or out of danger severity
// between two consecutive snapshots of the same region.
type Event struct {
	ID       string        `json:"id"`
	Type     EventType     `json:"type"`
	Region   core.Region   `json:"region"`
	Name     string        `json:"name"`
	Category core.Category `json:"category"`
	Severity core.Severity `json:"severity"`
	At       time.Time     `json:"at"`
}

// Tracker diffs consecutive snapshots per region and emits transition
// events. It only remembers the previous danger set, nothing older.
type Tracker struct {
	mu     sync.Mutex
	active map[core.Region]map[string]core.OutageRecord
	logger *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		active: make(map[core.Region]map[string]core.OutageRecord),
		logger: logger,
	}
}

// Observe takes a fresh snapshot and returns the events it implies.
// The first snapshot for a region reports every danger service as
// newly opened.
func (t *Tracker) Observe(snap *core.Snapshot) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	current := make(map[string]core.OutageRecord)
	for _, r := range snap.Alarms("") {
		current[r.Name] = r
	}
	previous := t.active[snap.Region]

	var events []Event

	for name, rec := range current {
		if _, wasActive := previous[name]; !wasActive {
			events = append(events, Event{
				ID:       uuid.New().String(),
				Type:     EventOpened,
				Region:   snap.Region,
				Name:     name,
				Category: rec.Category,
				Severity: rec.Severity,
				At:       now,
			})
			t.logger.Info("Alarm opened",
				zap.String("region", string(snap.Region)),
				zap.String("name", name),
			)
		}
	}

	for name, rec := range previous {
		if _, stillActive := current[name]; !stillActive {
			// Resolved or simply absent from the new snapshot; either
			// way the alarm is gone.
			sev := core.SeverityUnknown
			if fresh, ok := snap.Find(name); ok {
				sev = fresh.Severity
			}
			events = append(events, Event{
				ID:       uuid.New().String(),
				Type:     EventResolved,
				Region:   snap.Region,
				Name:     name,
				Category: rec.Category,
				Severity: sev,
				At:       now,
			})
			t.logger.Info("Alarm resolved",
				zap.String("region", string(snap.Region)),
				zap.String("name", name),
			)
		}
	}

	t.active[snap.Region] = current
	return events
}

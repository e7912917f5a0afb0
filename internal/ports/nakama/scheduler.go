package nakama

import (
	"math"
	"slices"
	"strings"
	"time"

	"careerpoker/internal/domain"
	"careerpoker/internal/ports"

	"github.com/google/uuid"
)

type scheduledIntent struct {
	handle string
	intent domain.Intent
	due    int64
}

// tickScheduler runs deferred intents on match ticks. It is only touched from
// the match loop goroutine.
type tickScheduler struct {
	tickRate int
	now      int64
	tasks    map[string]scheduledIntent
}

func newTickScheduler(tickRate int) *tickScheduler {
	if tickRate <= 0 {
		tickRate = 1
	}
	return &tickScheduler{
		tickRate: tickRate,
		tasks:    make(map[string]scheduledIntent),
	}
}

// Schedule registers intent to fire delay from the current tick.
func (s *tickScheduler) Schedule(intent domain.Intent, delay time.Duration) string {
	ticks := int64(math.Ceil(delay.Seconds() * float64(s.tickRate)))
	handle := uuid.NewString()
	s.tasks[handle] = scheduledIntent{handle: handle, intent: intent, due: s.now + max(ticks, 1)}
	return handle
}

func (s *tickScheduler) Cancel(handle string) {
	delete(s.tasks, handle)
}

// Pending returns the number of intents still waiting.
func (s *tickScheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves the clock to tick and removes the intents that are due, in
// due order.
func (s *tickScheduler) Advance(tick int64) []domain.Intent {
	s.now = tick
	var due []scheduledIntent
	for _, task := range s.tasks {
		if task.due <= tick {
			due = append(due, task)
		}
	}
	slices.SortFunc(due, func(a, b scheduledIntent) int {
		if a.due != b.due {
			return int(a.due - b.due)
		}
		return strings.Compare(a.intent.PlayerID, b.intent.PlayerID)
	})

	out := make([]domain.Intent, 0, len(due))
	for _, task := range due {
		delete(s.tasks, task.handle)
		out = append(out, task.intent)
	}
	return out
}

var _ ports.Scheduler = (*tickScheduler)(nil)

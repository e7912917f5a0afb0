package nakama

import (
	"testing"
	"time"

	"careerpoker/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestTickScheduler_FiresAfterDelay(t *testing.T) {
	s := newTickScheduler(5)
	skip := domain.Intent{Kind: domain.IntentAnswer, PlayerID: "bob", Answer: "skip"}
	s.Schedule(skip, 2*time.Second)

	assert.Empty(t, s.Advance(9))
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, []domain.Intent{skip}, s.Advance(10))
	assert.Equal(t, 0, s.Pending())
	assert.Empty(t, s.Advance(11), "intents fire once")
}

func TestTickScheduler_RoundsUpToOneTick(t *testing.T) {
	s := newTickScheduler(5)
	s.Advance(3)
	s.Schedule(domain.Intent{Kind: domain.IntentPass, PlayerID: "a"}, 0)
	s.Schedule(domain.Intent{Kind: domain.IntentPass, PlayerID: "b"}, 50*time.Millisecond)

	due := s.Advance(4)
	assert.Len(t, due, 2)
}

func TestTickScheduler_Cancel(t *testing.T) {
	s := newTickScheduler(1)
	handle := s.Schedule(domain.Intent{Kind: domain.IntentPass, PlayerID: "a"}, time.Second)
	other := s.Schedule(domain.Intent{Kind: domain.IntentPass, PlayerID: "b"}, time.Second)
	assert.NotEqual(t, handle, other)

	s.Cancel(handle)
	s.Cancel("unknown")

	due := s.Advance(5)
	assert.Len(t, due, 1)
	assert.Equal(t, "b", due[0].PlayerID)
}

func TestTickScheduler_DueOrder(t *testing.T) {
	s := newTickScheduler(1)
	s.Schedule(domain.Intent{PlayerID: "late"}, 3*time.Second)
	s.Schedule(domain.Intent{PlayerID: "c"}, time.Second)
	s.Schedule(domain.Intent{PlayerID: "b"}, time.Second)

	due := s.Advance(10)
	var order []string
	for _, in := range due {
		order = append(order, in.PlayerID)
	}
	assert.Equal(t, []string{"b", "c", "late"}, order)
}

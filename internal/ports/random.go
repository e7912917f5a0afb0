package ports

import (
	"math/rand"
	"time"

	"careerpoker/internal/domain"
)

// ChanceSource draws the one-chance interrupt gate.
type ChanceSource interface {
	// FairChance reports a win with probability 1/n. n is the number of
	// players still holding cards.
	FairChance(n int) bool
}

// RandomSource is both the deck shuffler and the chance source.
type RandomSource interface {
	domain.Shuffler
	ChanceSource
}

// RandSource adapts a *rand.Rand to RandomSource.
type RandSource struct {
	*rand.Rand
}

// NewRandSource wraps rng, or a time-seeded generator when rng is nil.
func NewRandSource(rng *rand.Rand) RandSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return RandSource{Rand: rng}
}

func (r RandSource) FairChance(n int) bool {
	if n <= 1 {
		return true
	}
	return r.Intn(n) == 0
}

package domain

import "fmt"

// Servable checks whether play may be put on the river now.
func Servable(g *Game, play Deck) error {
	if !play.IsSameNumber() {
		return fmt.Errorf("%w: %s", ErrNotSameNumber, play)
	}
	top, ok := g.Top()
	if !ok {
		return nil
	}

	cmp := GroupCompare(play, top)
	if g.Effect.Reversed() {
		cmp = -cmp
	}
	if cmp <= 0 {
		return fmt.Errorf("%w: %s on %s", ErrMustBeatTop, play, top)
	}

	rank, hasRank := play.Rank()
	expected := g.Effect.RiverSize
	if hasRank && rank == RankNine && !g.Effect.Disabled(RankNine) {
		expected = toggleRiverSize(expected)
	}
	if len(play) != expected {
		return fmt.Errorf("%w: want %d cards, got %d", ErrSizeMismatch, expected, len(play))
	}

	if g.Effect.IsStep {
		topRank, topHasRank := top.Rank()
		if !hasRank || !topHasRank || Cardinal(rank)-Cardinal(topRank) != 1 {
			return fmt.Errorf("%w: %s after %s", ErrMustStep, play, top)
		}
	}

	// The lock is switched on by suit_limits but checked against the
	// preceding play.
	if !g.Effect.SuitLimits.Empty() && !MatchSuits(top, play) {
		return fmt.Errorf("%w: %s after %s", ErrSuitMismatch, play, top)
	}
	return nil
}

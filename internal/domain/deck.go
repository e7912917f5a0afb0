package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Deck is an ordered pile of cards: a hand, a discard pile, or one play.
type Deck []Card

// Shuffler produces a uniform random permutation. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewDeck returns the canonical pool in suit-major, rank-minor order followed
// by the given number of unassigned jokers.
func NewDeck(jokers int) Deck {
	deck := make(Deck, 0, len(Suits)*MaxRank+jokers)
	for _, s := range Suits {
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, NewCard(s, r))
		}
	}
	for i := 0; i < jokers; i++ {
		deck = append(deck, NewJoker())
	}
	return deck
}

// Shuffle permutes the deck in place.
func (d Deck) Shuffle(s Shuffler) {
	s.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
}

// Sort orders the deck in place, keeping equal cards in their relative order.
func (d Deck) Sort(cmp func(a, b Card) int) {
	slices.SortStableFunc(d, cmp)
}

// Split deals the deck round-robin into n new decks.
func (d Deck) Split(n int) ([]Deck, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot split into %d decks", n)
	}
	out := make([]Deck, n)
	for i := range out {
		out[i] = make(Deck, 0, len(d)/n+1)
	}
	for i, c := range d {
		out[i%n] = append(out[i%n], c)
	}
	return out, nil
}

// Contains reports whether every card is present, counting duplicates.
func (d Deck) Contains(cards Deck) bool {
	_, err := d.without(cards)
	return err == nil
}

// Remove takes one occurrence of each card out of the deck. If any card is
// missing the deck is left untouched.
func (d *Deck) Remove(cards Deck) error {
	rest, err := d.without(cards)
	if err != nil {
		return err
	}
	*d = rest
	return nil
}

func (d Deck) without(cards Deck) (Deck, error) {
	taken := make([]bool, len(d))
	for _, want := range cards {
		found := false
		for i, c := range d {
			if !taken[i] && c == want {
				taken[i] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, want)
		}
	}
	rest := make(Deck, 0, len(d)-len(cards))
	for i, c := range d {
		if !taken[i] {
			rest = append(rest, c)
		}
	}
	return rest, nil
}

// Clone returns an independent copy; a nil deck stays nil.
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	return slices.Clone(d)
}

// Rank returns the shared effective rank of the group. ok is false when the
// group holds only unassigned jokers (or nothing).
func (d Deck) Rank() (rank int, ok bool) {
	for _, c := range d {
		if r, has := c.EffectiveRank(); has {
			return r, true
		}
	}
	return 0, false
}

// IsSameNumber reports whether every ranked card shares one rank. A group of
// jokers only is trivially same-numbered.
func (d Deck) IsSameNumber() bool {
	rank, ok := d.Rank()
	if !ok {
		return true
	}
	for _, c := range d {
		if r, has := c.EffectiveRank(); has && r != rank {
			return false
		}
	}
	return true
}

// HasRank reports whether any card in the deck carries the rank.
func (d Deck) HasRank(rank int) bool {
	for _, c := range d {
		if r, ok := c.EffectiveRank(); ok && r == rank {
			return true
		}
	}
	return false
}

// SuitsOf collects the effective suits of the cards, ignoring Unsuited.
func SuitsOf(cards Deck) SuitSet {
	var set SuitSet
	for _, c := range cards {
		if s := c.EffectiveSuit(); s != Unsuited {
			set = set.With(s)
		}
	}
	return set
}

// MatchSuits reports whether candidate carries every suit of reference.
func MatchSuits(reference, candidate Deck) bool {
	return SuitsOf(candidate).Superset(SuitsOf(reference))
}

// GroupCompare orders two same-rank groups of equal size. Both are sorted by
// CompareCards and paired element-wise; within such groups every pair carries
// the same verdict, so the lowest pair decides. Jokers sort last and ride on
// the group's rank.
func GroupCompare(a, b Deck) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	as, bs := a.Clone(), b.Clone()
	as.Sort(CompareCards)
	bs.Sort(CompareCards)
	return CompareCards(as[0], bs[0])
}

func (d Deck) String() string {
	if len(d) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(d))
	for i, c := range d {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

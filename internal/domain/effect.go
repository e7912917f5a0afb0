package domain

import (
	"encoding/json"
	"math/bits"
)

// SuitSet is a small set of suits.
type SuitSet uint8

func (s SuitSet) With(suit Suit) SuitSet { return s | 1<<uint(suit) }

func (s SuitSet) Has(suit Suit) bool { return s&(1<<uint(suit)) != 0 }

func (s SuitSet) Empty() bool { return s == 0 }

func (s SuitSet) Len() int { return bits.OnesCount8(uint8(s)) }

// Superset reports whether s holds every suit in other.
func (s SuitSet) Superset(other SuitSet) bool { return other&^s == 0 }

// Slice lists the suits in enumeration order.
func (s SuitSet) Slice() []Suit {
	var out []Suit
	for _, suit := range []Suit{Unsuited, Spade, Diamond, Heart, Clover} {
		if s.Has(suit) {
			out = append(out, suit)
		}
	}
	return out
}

func (s SuitSet) MarshalJSON() ([]byte, error) {
	suits := s.Slice()
	if suits == nil {
		suits = []Suit{}
	}
	return json.Marshal(suits)
}

func (s *SuitSet) UnmarshalJSON(data []byte) error {
	var suits []Suit
	if err := json.Unmarshal(data, &suits); err != nil {
		return err
	}
	*s = 0
	for _, suit := range suits {
		*s = s.With(suit)
	}
	return nil
}

// RankSet is a set of ranks 1..13.
type RankSet uint16

func (r RankSet) With(rank int) RankSet { return r | 1<<uint(rank) }

func (r RankSet) Has(rank int) bool { return r&(1<<uint(rank)) != 0 }

// WithRange adds every rank in [from, to].
func (r RankSet) WithRange(from, to int) RankSet {
	for rank := from; rank <= to; rank++ {
		r = r.With(rank)
	}
	return r
}

func (r RankSet) Slice() []int {
	var out []int
	for rank := MinRank; rank <= MaxRank; rank++ {
		if r.Has(rank) {
			out = append(out, rank)
		}
	}
	return out
}

func (r RankSet) MarshalJSON() ([]byte, error) {
	ranks := r.Slice()
	if ranks == nil {
		ranks = []int{}
	}
	return json.Marshal(ranks)
}

func (r *RankSet) UnmarshalJSON(data []byte) error {
	var ranks []int
	if err := json.Unmarshal(data, &ranks); err != nil {
		return err
	}
	*r = 0
	for _, rank := range ranks {
		*r = r.With(rank)
	}
	return nil
}

// Effect holds the rule overrides active for the current chain. Everything
// except Revoluted is reset when the chain is flushed.
type Effect struct {
	// RiverSize is the number of cards the next play must have; 0 while the
	// river is empty.
	RiverSize int `json:"river_size"`
	// SuitLimits is set by a rank 12 play and switches the suit lock on.
	SuitLimits SuitSet `json:"suit_limits"`
	// EffectLimits lists ranks whose own rule is disabled for the chain.
	EffectLimits RankSet `json:"effect_limits"`
	// TurnRevoluted flips rank order until the chain closes.
	TurnRevoluted bool `json:"turn_revoluted"`
	// IsStep requires each play to be exactly one cardinal step above the top.
	IsStep bool `json:"is_step"`
	// Revoluted flips rank order for the rest of the match.
	Revoluted bool `json:"revoluted"`
}

// Disabled reports whether the rule of the rank is off for this chain.
func (e Effect) Disabled(rank int) bool {
	return e.EffectLimits.Has(rank)
}

// Reversed reports whether rank comparisons are currently inverted.
func (e Effect) Reversed() bool {
	return e.Revoluted != e.TurnRevoluted
}

// NewChain returns the defaults for a fresh chain, carrying the revolution.
func (e Effect) NewChain() Effect {
	return Effect{Revoluted: e.Revoluted}
}

// toggleRiverSize swaps a size of 1 and 3; any other size is kept.
func toggleRiverSize(n int) int {
	switch n {
	case 1:
		return 3
	case 3:
		return 1
	}
	return n
}

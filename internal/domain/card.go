package domain

import (
	"fmt"
	"strings"
)

// Suit is the suit of a card. Unsuited only appears on an unassigned joker.
type Suit int

const (
	Unsuited Suit = iota
	Spade
	Diamond
	Heart
	Clover
)

// Suits lists the four real suits in deck enumeration order.
var Suits = []Suit{Spade, Diamond, Heart, Clover}

func (s Suit) String() string {
	switch s {
	case Spade:
		return "s"
	case Diamond:
		return "d"
	case Heart:
		return "h"
	case Clover:
		return "c"
	default:
		return "*"
	}
}

func parseSuit(b byte) (Suit, error) {
	switch b {
	case 's':
		return Spade, nil
	case 'd':
		return Diamond, nil
	case 'h':
		return Heart, nil
	case 'c':
		return Clover, nil
	case '*':
		return Unsuited, nil
	}
	return Unsuited, fmt.Errorf("%w: suit %q", ErrParse, b)
}

// MarshalText encodes the suit as its single-character form.
func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes the single-character form produced by MarshalText.
func (s *Suit) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("%w: suit %q", ErrParse, text)
	}
	parsed, err := parseSuit(text[0])
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Card is either a numbered card or a joker. A joker may carry an assignment
// (the suit and rank it is played as); an unassigned joker has Rank 0.
type Card struct {
	Suit  Suit
	Rank  int // 1..13 (A=1, J=11, Q=12, K=13), 0 for an unassigned joker
	Joker bool
}

// NewCard returns a numbered card.
func NewCard(suit Suit, rank int) Card {
	return Card{Suit: suit, Rank: rank}
}

// NewJoker returns an unassigned joker.
func NewJoker() Card {
	return Card{Joker: true}
}

// AssignedJoker returns a joker played as the given suit and rank.
func AssignedJoker(suit Suit, rank int) Card {
	return Card{Suit: suit, Rank: rank, Joker: true}
}

// EffectiveRank reports the rank used for comparison. ok is false for an
// unassigned joker, which ranks above everything.
func (c Card) EffectiveRank() (rank int, ok bool) {
	if c.Joker && c.Rank == 0 {
		return 0, false
	}
	return c.Rank, true
}

// EffectiveSuit returns Unsuited for an unassigned joker.
func (c Card) EffectiveSuit() Suit {
	if _, ok := c.EffectiveRank(); !ok {
		return Unsuited
	}
	return c.Suit
}

// Cardinal maps a rank onto play strength: 3 is 0 and 2 is 12.
func Cardinal(rank int) int {
	return (rank + 10) % 13
}

// CompareCards orders cards by the cardinal value of their effective rank.
// Unassigned jokers compare greater than every rank and equal to each other.
func CompareCards(a, b Card) int {
	ar, aok := a.EffectiveRank()
	br, bok := b.EffectiveRank()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return Cardinal(ar) - Cardinal(br)
}

func rankString(rank int) string {
	switch rank {
	case 1:
		return "A"
	case 10:
		return "T"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	}
	return fmt.Sprintf("%d", rank)
}

func parseRank(b byte) (int, error) {
	switch b {
	case 'A':
		return 1, nil
	case 'T':
		return 10, nil
	case 'J':
		return 11, nil
	case 'Q':
		return 12, nil
	case 'K':
		return 13, nil
	}
	if b >= '2' && b <= '9' {
		return int(b - '0'), nil
	}
	return 0, fmt.Errorf("%w: rank %q", ErrParse, b)
}

func (c Card) String() string {
	if c.Joker {
		if c.Rank == 0 {
			return "joker"
		}
		return fmt.Sprintf("joker(as %s%s)", rankString(c.Rank), c.Suit)
	}
	return rankString(c.Rank) + c.Suit.String()
}

// ParseCard reads the notation produced by Card.String: "Ah", "Td", "joker"
// or "joker(as 3s)".
func ParseCard(s string) (Card, error) {
	if s == "joker" {
		return NewJoker(), nil
	}
	if inner, ok := strings.CutPrefix(s, "joker(as "); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return Card{}, fmt.Errorf("%w: %q", ErrParse, s)
		}
		assigned, err := parseNumberCard(inner)
		if err != nil {
			return Card{}, err
		}
		return AssignedJoker(assigned.Suit, assigned.Rank), nil
	}
	return parseNumberCard(s)
}

func parseNumberCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	rank, err := parseRank(s[0])
	if err != nil {
		return Card{}, err
	}
	suit, err := parseSuit(s[1])
	if err != nil {
		return Card{}, err
	}
	if suit == Unsuited {
		return Card{}, fmt.Errorf("%w: numbered card without suit %q", ErrParse, s)
	}
	return NewCard(suit, rank), nil
}

// MustParseCards parses a list of card notations and panics on error. It is
// meant for fixtures.
func MustParseCards(notations ...string) Deck {
	out := make(Deck, 0, len(notations))
	for _, n := range notations {
		c, err := ParseCard(n)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// MarshalText encodes the card in its notation form.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes the notation produced by MarshalText.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

package app

import "careerpoker/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventCardSelected   EventKind = "card_selected"
	EventCardsServed    EventKind = "cards_served"
	EventTurnPassed     EventKind = "turn_passed"
	EventPromptOpened   EventKind = "prompt_opened"
	EventPromptResolved EventKind = "prompt_resolved"
	EventOneChanceTaken EventKind = "one_chance_taken"
	EventChainFlushed   EventKind = "chain_flushed"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
	Owner  bool   `json:"owner"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type GameStartedPayload struct {
	Phase           domain.Phase `json:"phase"`
	Players         []string     `json:"players"`
	FirstTurnUserID string       `json:"first_turn_user_id"`
}

type HandDealtPayload struct {
	UserID string      `json:"user_id"`
	Hand   domain.Deck `json:"hand"`
}

type CardSelectedPayload struct {
	UserID    string      `json:"user_id"`
	Selection domain.Deck `json:"selection"`
}

type CardsServedPayload struct {
	UserID string      `json:"user_id"`
	Cards  domain.Deck `json:"cards"`
}

type TurnPassedPayload struct {
	UserID         string `json:"user_id"`
	NextTurnUserID string `json:"next_turn_user_id"`
}

type PromptOpenedPayload struct {
	Prompt domain.Prompt `json:"prompt"`
}

// PromptResolvedPayload reports a closed prompt. Count is the number of cards
// moved by a Select prompt; the cards themselves only show up in snapshots.
type PromptResolvedPayload struct {
	Kind    domain.PromptKind `json:"kind"`
	UserID  string            `json:"user_id"`
	Count   int               `json:"count"`
	To      string            `json:"to,omitempty"`
	Answers map[string]string `json:"answers,omitempty"`
}

type OneChanceTakenPayload struct {
	UserID    string      `json:"user_id"`
	FromUser  string      `json:"from_user_id"`
	Card      domain.Card `json:"card"`
	Discarded domain.Deck `json:"discarded"`
}

type ChainFlushedPayload struct {
	Cards          domain.Deck `json:"cards"`
	To             string      `json:"to"`
	NextTurnUserID string      `json:"next_turn_user_id"`
}

type GameEndedPayload struct {
	FinishOrder []string `json:"finish_order"`
}

package domain

import "errors"

// Rule and state errors returned by the engine. Callers match them with errors.Is;
// most are wrapped with context about the offending card, pile or player.
var (
	ErrPlayersEmpty          = errors.New("players is empty")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrRiverEmpty            = errors.New("cannot pass because river is empty")
	ErrEmptySelection        = errors.New("no cards selected")
	ErrNotSameNumber         = errors.New("cards do not share a number")
	ErrMustBeatTop           = errors.New("must be greater than top cards")
	ErrSizeMismatch          = errors.New("river size mismatch")
	ErrMustStep              = errors.New("must step up by one")
	ErrSuitMismatch          = errors.New("suits do not match the lock")
	ErrFieldNotFound         = errors.New("field not found")
	ErrNotFound              = errors.New("card not found")
	ErrPendingAnswerRequired = errors.New("an open prompt must be answered first")
	ErrInvalidAnswer         = errors.New("invalid answer")
	ErrInvalidRank           = errors.New("invalid rank")
	ErrMatchEnded            = errors.New("match ended")
	ErrParse                 = errors.New("invalid card notation")
)

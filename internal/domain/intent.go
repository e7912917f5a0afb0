package domain

import "fmt"

// IntentKind enumerates the player operations.
type IntentKind int

const (
	IntentDistribute IntentKind = iota + 1
	IntentSelect
	IntentServe
	IntentPass
	IntentAnswer
)

func (k IntentKind) String() string {
	switch k {
	case IntentDistribute:
		return "distribute"
	case IntentSelect:
		return "select"
	case IntentServe:
		return "serve"
	case IntentPass:
		return "pass"
	case IntentAnswer:
		return "answer"
	}
	return fmt.Sprintf("intent(%d)", int(k))
}

// Intent is one player operation. Card is only read by IntentSelect and
// Answer only by IntentAnswer.
type Intent struct {
	Kind     IntentKind
	PlayerID string
	Card     Card
	Answer   string
}

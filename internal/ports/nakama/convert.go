package nakama

import (
	"encoding/json"
	"errors"
	"fmt"

	"careerpoker/internal/app"
	"careerpoker/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerJoined:   OpPlayerJoined,
	app.EventPlayerLeft:     OpPlayerLeft,
	app.EventGameStarted:    OpGameStarted,
	app.EventHandDealt:      OpHandDealt,
	app.EventCardSelected:   OpCardSelected,
	app.EventCardsServed:    OpCardsServed,
	app.EventTurnPassed:     OpTurnPassed,
	app.EventPromptOpened:   OpPromptOpened,
	app.EventPromptResolved: OpPromptResolved,
	app.EventOneChanceTaken: OpOneChanceTaken,
	app.EventChainFlushed:   OpChainFlushed,
	app.EventGameEnded:      OpGameEnded,
}

// encodeEvent returns the op code and JSON payload of an app event.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// SelectRequest is the payload of OpSelect.
type SelectRequest struct {
	Card domain.Card `json:"card"`
}

// AnswerRequest is the payload of OpAnswer.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// GameErrorEvent is sent privately when an operation is rejected.
type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// decodeIntent turns a client message into a player operation.
func decodeIntent(opCode int64, userID string, data []byte) (domain.Intent, error) {
	in := domain.Intent{PlayerID: userID}
	switch opCode {
	case OpDistribute:
		in.Kind = domain.IntentDistribute
	case OpSelect:
		var req SelectRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return in, fmt.Errorf("invalid select request: %w", err)
		}
		in.Kind = domain.IntentSelect
		in.Card = req.Card
	case OpServe:
		in.Kind = domain.IntentServe
	case OpPass:
		in.Kind = domain.IntentPass
	case OpAnswer:
		var req AnswerRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return in, fmt.Errorf("invalid answer request: %w", err)
		}
		in.Kind = domain.IntentAnswer
		in.Answer = req.Answer
	default:
		return in, fmt.Errorf("unknown opcode %d", opCode)
	}
	return in, nil
}

// errorCode maps a rejected operation to the code sent to the client.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrMatchEnded):
		return ErrCodeGone
	case errors.Is(err, domain.ErrNotYourTurn), errors.Is(err, domain.ErrPendingAnswerRequired):
		return ErrCodeConflict
	}
	return ErrCodeBadRequest
}

// matchLabel renders the label Nakama indexes for match listing.
func matchLabel(openSeats int, phase domain.Phase) (string, error) {
	label, err := structpb.NewStruct(map[string]any{
		MatchLabelKeyOpenSeats: openSeats,
		MatchLabelKeyGame:      GameName,
		MatchLabelKeyPhase:     string(phase),
	})
	if err != nil {
		return "", err
	}
	data, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

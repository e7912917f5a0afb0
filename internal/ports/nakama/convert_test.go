package nakama

import (
	"encoding/json"
	"fmt"
	"testing"

	"careerpoker/internal/app"
	"careerpoker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLabel(t *testing.T) {
	tests := []struct {
		name  string
		open  int
		phase domain.Phase
	}{
		{"Lobby", 3, domain.PhaseLobby},
		{"Playing", 0, domain.PhasePlaying},
		{"Ended", 2, domain.PhaseEnded},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw, err := matchLabel(test.open, test.phase)
			require.NoError(t, err)

			var label map[string]any
			require.NoError(t, json.Unmarshal([]byte(raw), &label))
			assert.EqualValues(t, test.open, label[MatchLabelKeyOpenSeats])
			assert.Equal(t, GameName, label[MatchLabelKeyGame])
			assert.Equal(t, string(test.phase), label[MatchLabelKeyPhase])
		})
	}
}

func TestQuickMatchQuery(t *testing.T) {
	assert.Equal(t, "+label.open:>=1 +label.game:careerpoker +label.phase:lobby", quickMatchQuery())
}

func TestDecodeIntent(t *testing.T) {
	in, err := decodeIntent(OpSelect, "alice", []byte(`{"card":"Ah"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.IntentSelect, in.Kind)
	assert.Equal(t, "alice", in.PlayerID)
	assert.Equal(t, domain.NewCard(domain.Heart, 1), in.Card)

	in, err = decodeIntent(OpAnswer, "bob", []byte(`{"answer":"skip"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.IntentAnswer, in.Kind)
	assert.Equal(t, "skip", in.Answer)

	for op, kind := range map[int64]domain.IntentKind{
		OpDistribute: domain.IntentDistribute,
		OpServe:      domain.IntentServe,
		OpPass:       domain.IntentPass,
	} {
		in, err := decodeIntent(op, "carol", nil)
		require.NoError(t, err)
		assert.Equal(t, kind, in.Kind)
	}
}

func TestDecodeIntent_Errors(t *testing.T) {
	_, err := decodeIntent(OpSelect, "alice", []byte(`{"card":"Zz"}`))
	assert.Error(t, err)
	_, err = decodeIntent(OpAnswer, "alice", []byte(`not json`))
	assert.Error(t, err)
	_, err = decodeIntent(99, "alice", nil)
	assert.Error(t, err)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeGone, errorCode(domain.ErrMatchEnded))
	assert.Equal(t, ErrCodeConflict, errorCode(domain.ErrNotYourTurn))
	assert.Equal(t, ErrCodeConflict, errorCode(fmt.Errorf("wrapped: %w", domain.ErrPendingAnswerRequired)))
	assert.Equal(t, ErrCodeBadRequest, errorCode(domain.ErrRiverEmpty))
}

func TestEncodeEvent(t *testing.T) {
	op, data, err := encodeEvent(app.Event{
		Kind:    app.EventTurnPassed,
		Payload: app.TurnPassedPayload{UserID: "a", NextTurnUserID: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, OpTurnPassed, op)
	assert.JSONEq(t, `{"user_id":"a","next_turn_user_id":"b"}`, string(data))

	_, _, err = encodeEvent(app.Event{Kind: "bogus"})
	assert.Error(t, err)
}

func TestEncodeEvent_CoversEveryKind(t *testing.T) {
	kinds := []app.EventKind{
		app.EventPlayerJoined, app.EventPlayerLeft, app.EventGameStarted, app.EventHandDealt,
		app.EventCardSelected, app.EventCardsServed, app.EventTurnPassed, app.EventPromptOpened,
		app.EventPromptResolved, app.EventOneChanceTaken, app.EventChainFlushed, app.EventGameEnded,
	}
	seen := map[int64]bool{}
	for _, kind := range kinds {
		op, ok := eventOpCodes[kind]
		require.True(t, ok, kind)
		assert.False(t, seen[op], "duplicate op code %d", op)
		seen[op] = true
	}
}

package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"careerpoker/internal/app"
	"careerpoker/internal/config"
	"careerpoker/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// fakePresence only answers GetUserId; the handler never reads anything else.
type fakePresence struct {
	runtime.Presence
	userID string
}

func (p fakePresence) GetUserId() string { return p.userID }

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent   []sentMessage
	labels []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	msg := sentMessage{opCode: opCode, data: append([]byte(nil), data...)}
	for _, p := range presences {
		msg.recipients = append(msg.recipients, p.GetUserId())
	}
	md.sent = append(md.sent, msg)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) byOp(opCode int64) []sentMessage {
	var out []sentMessage
	for _, msg := range md.sent {
		if msg.opCode == opCode {
			out = append(out, msg)
		}
	}
	return out
}

func (md *mockDispatcher) lastLabel(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, md.labels)
	var label map[string]any
	require.NoError(t, json.Unmarshal([]byte(md.labels[len(md.labels)-1]), &label))
	return label
}

func presences(userIDs ...string) []runtime.Presence {
	out := make([]runtime.Presence, len(userIDs))
	for i, id := range userIDs {
		out[i] = fakePresence{userID: id}
	}
	return out
}

func newTestMatch(t *testing.T, userIDs ...string) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	mh := newMatchHandler()
	state := newMatchState(config.Default(), 5)
	dispatcher := &mockDispatcher{}
	if len(userIDs) > 0 {
		mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presences(userIDs...))
	}
	return mh, state, dispatcher
}

func decodeError(t *testing.T, msg sentMessage) GameErrorEvent {
	t.Helper()
	var ev GameErrorEvent
	require.NoError(t, json.Unmarshal(msg.data, &ev))
	return ev
}

func TestSeatHelpers(t *testing.T) {
	assert.Equal(t, 1, lowestOpenSeat([]string{"a", "", "c", ""}))
	assert.Equal(t, -1, lowestOpenSeat([]string{"a", "b"}))
	assert.Equal(t, 2, firstOccupiedSeat([]string{"", "", "c"}))
	assert.Equal(t, -1, firstOccupiedSeat([]string{"", ""}))
}

func TestMatchInit_DefaultsAndLabel(t *testing.T) {
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{envTickRate: "10"})
	state, tickRate, label := newMatchHandler().MatchInit(ctx, noopLogger{}, nil, nil, nil)

	require.IsType(t, &MatchState{}, state)
	assert.Equal(t, 10, tickRate)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(label), &decoded))
	assert.Equal(t, GameName, decoded[MatchLabelKeyGame])
	assert.Equal(t, string(domain.PhaseLobby), decoded[MatchLabelKeyPhase])
	assert.EqualValues(t, config.GetGameConfig().MaxPlayers, decoded[MatchLabelKeyOpenSeats])
}

func TestMatchJoin_SeatsPlayersAndOwner(t *testing.T) {
	_, state, dispatcher := newTestMatch(t, "alice", "bob")

	assert.Equal(t, "alice", state.Seats[0])
	assert.Equal(t, "bob", state.Seats[1])
	assert.Equal(t, 0, state.OwnerSeat)
	assert.Len(t, dispatcher.byOp(OpPlayerJoined), 2)
	assert.EqualValues(t, len(state.Seats)-2, dispatcher.lastLabel(t)[MatchLabelKeyOpenSeats])
}

func TestMatchJoinAttempt(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")
	attempt := func(userID string) (bool, string) {
		_, ok, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, fakePresence{userID: userID}, nil)
		return ok, reason
	}

	ok, _ := attempt("carol")
	assert.True(t, ok)

	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)
	require.True(t, state.InProgress())

	ok, reason := attempt("carol")
	assert.False(t, ok)
	assert.Equal(t, "Match in progress", reason)

	ok, _ = attempt("bob")
	assert.True(t, ok, "seated players may rejoin")
}

func TestMatchJoinAttempt_Full(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t)
	for i := range state.Seats {
		state.Seats[i] = string(rune('a' + i))
	}
	_, ok, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, fakePresence{userID: "late"}, nil)
	assert.False(t, ok)
	assert.Equal(t, "Match full", reason)
}

func TestDistribute_OnlyOwner(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")

	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "bob", nil)

	assert.Nil(t, state.Game)
	errs := dispatcher.byOp(OpGameError)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"bob"}, errs[0].recipients)
	assert.Equal(t, ErrCodeForbidden, decodeError(t, errs[0]).Code)
}

func TestDistribute_NeedsPlayers(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice")

	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)

	assert.Nil(t, state.Game)
	require.Len(t, dispatcher.byOp(OpGameError), 1)
}

func TestDistribute_StartsGame(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob", "carol")
	dispatcher.sent = nil

	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)

	require.NotNil(t, state.Game)
	assert.Equal(t, domain.PhasePlaying, state.Game.Phase)
	assert.Equal(t, []string{"alice", "bob", "carol"}, state.Game.Players)
	assert.Equal(t, "alice", state.Game.Current)

	dealt := dispatcher.byOp(OpHandDealt)
	require.Len(t, dealt, 3)
	for _, msg := range dealt {
		var payload app.HandDealtPayload
		require.NoError(t, json.Unmarshal(msg.data, &payload))
		assert.Equal(t, []string{payload.UserID}, msg.recipients, "hands are private")
		assert.Len(t, payload.Hand, 18)
	}
	assert.Len(t, dispatcher.byOp(OpGameStarted), 1)
	assert.Len(t, dispatcher.byOp(OpSnapshot), 3)

	label := dispatcher.lastLabel(t)
	assert.Equal(t, string(domain.PhasePlaying), label[MatchLabelKeyPhase])
	assert.EqualValues(t, 0, label[MatchLabelKeyOpenSeats])
}

func TestHandleMessage_RejectsBeforeGame(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")

	mh.handleMessage(state, dispatcher, noopLogger{}, OpPass, "alice", nil)

	errs := dispatcher.byOp(OpGameError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeConflict, decodeError(t, errs[0]).Code)
}

func TestHandleMessage_ErrorsGoToSender(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")
	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)
	dispatcher.sent = nil

	mh.handleMessage(state, dispatcher, noopLogger{}, OpPass, "bob", nil)
	mh.handleMessage(state, dispatcher, noopLogger{}, OpSelect, "alice", []byte("{"))
	mh.handleMessage(state, dispatcher, noopLogger{}, OpServe, "stranger", nil)

	errs := dispatcher.byOp(OpGameError)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"bob"}, errs[0].recipients)
	assert.Equal(t, ErrCodeConflict, decodeError(t, errs[0]).Code)
	assert.Equal(t, []string{"alice"}, errs[1].recipients)
	assert.Equal(t, ErrCodeBadRequest, decodeError(t, errs[1]).Code)
}

func TestHandleMessage_Select(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")
	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)
	dispatcher.sent = nil

	card := state.Game.Fields[domain.Hand("alice")][0]
	data, err := json.Marshal(SelectRequest{Card: card})
	require.NoError(t, err)

	mh.handleMessage(state, dispatcher, noopLogger{}, OpSelect, "alice", data)
	selected := dispatcher.byOp(OpCardSelected)
	require.Len(t, selected, 1)
	assert.Equal(t, []string{"alice"}, selected[0].recipients)
	assert.Equal(t, domain.Deck{card}, state.Game.Selection("alice"))

	mh.handleMessage(state, dispatcher, noopLogger{}, OpPass, "alice", nil)
	errs := dispatcher.byOp(OpGameError)
	require.Len(t, errs, 1, "nothing to pass on an empty river")
	assert.Equal(t, ErrCodeBadRequest, decodeError(t, errs[0]).Code)
	assert.Equal(t, "alice", state.Game.Current)
}

func TestMatchLeave(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob", "carol")

	next := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presences("alice"))
	require.NotNil(t, next)
	assert.Equal(t, "", state.Seats[0])
	assert.Equal(t, 1, state.OwnerSeat, "ownership moves to the next seated player")
	assert.Len(t, dispatcher.byOp(OpPlayerLeft), 1)

	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "bob", nil)
	require.True(t, state.InProgress())

	mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presences("carol"))
	assert.Equal(t, 2, state.SeatOf("carol"), "seat is kept during a deal")

	next = mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presences("bob"))
	assert.Nil(t, next, "match ends when nobody is connected")
}

func TestMatchLoop_RunsDueIntents(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")
	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)

	card := state.Game.Fields[domain.Hand("bob")][0]
	state.Scheduler.Schedule(domain.Intent{Kind: domain.IntentSelect, PlayerID: "bob", Card: card}, 0)
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, nil)

	assert.Equal(t, int64(1), state.Tick)
	assert.Equal(t, 0, state.Scheduler.Pending())
	assert.Equal(t, domain.Deck{card}, state.Game.Selection("bob"))
}

func TestMatchSignal_Snapshot(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "alice", "bob")

	_, reply := mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, SignalSnapshot)
	assert.Empty(t, reply)

	mh.handleMessage(state, dispatcher, noopLogger{}, OpDistribute, "alice", nil)
	_, reply = mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, SignalSnapshot)

	var game domain.Game
	require.NoError(t, json.Unmarshal([]byte(reply), &game))
	assert.Equal(t, domain.PhasePlaying, game.Phase)
	assert.Equal(t, state.Game.Fields, game.Fields)
}

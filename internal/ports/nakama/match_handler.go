package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"slices"
	"strconv"

	"careerpoker/internal/app"
	"careerpoker/internal/config"
	"careerpoker/internal/domain"
	"careerpoker/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats      []string                    `json:"seats"`      // user IDs, empty string means seat is empty
	OwnerSeat  int                         `json:"owner_seat"` // seat index of the match owner
	MinPlayers int                         `json:"min_players"`
	Tick       int64                       `json:"tick"`
	Presences  map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	App        *app.Service                `json:"-"`
	Game       *domain.Game                `json:"game"` // nil until the first deal
	Scheduler  *tickScheduler              `json:"-"`
}

func newMatchState(cfg *config.GameConfig, tickRate int) *MatchState {
	scheduler := newTickScheduler(tickRate)
	return &MatchState{
		Seats:      make([]string, cfg.MaxPlayers),
		OwnerSeat:  -1,
		MinPlayers: max(cfg.MinPlayers, app.MinPlayersToStartGame),
		Presences:  make(map[string]runtime.Presence),
		App:        app.NewService(ports.NewRandSource(nil), scheduler, cfg),
		Scheduler:  scheduler,
	}
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

// SeatOf returns the seat index of the user, or -1.
func (ms *MatchState) SeatOf(userID string) int {
	return slices.Index(ms.Seats, userID)
}

// SeatedPlayers lists the occupied seats in seat order.
func (ms *MatchState) SeatedPlayers() []string {
	var out []string
	for _, userID := range ms.Seats {
		if userID != "" {
			out = append(out, userID)
		}
	}
	return out
}

// InProgress reports whether a deal is being played out.
func (ms *MatchState) InProgress() bool {
	return ms.Game != nil && ms.Game.Phase == domain.PhasePlaying
}

// Phase is the phase advertised in the label.
func (ms *MatchState) Phase() domain.Phase {
	if ms.Game == nil {
		return domain.PhaseLobby
	}
	return ms.Game.Phase
}

// lowestOpenSeat returns the first free seat index, or -1 when full.
func lowestOpenSeat(seats []string) int {
	return slices.Index(seats, "")
}

// firstOccupiedSeat returns the first seat index with an occupant or -1.
func firstOccupiedSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" {
			return i
		}
	}
	return -1
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	tickRate := cfg.TickRate
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env[envTickRate]; ok {
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				tickRate = i
			}
		}
	}
	if tickRate <= 0 {
		tickRate = 1
	}

	state := newMatchState(cfg, tickRate)
	label, err := matchLabel(state.GetOpenSeatsCount(), state.Phase())
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	accepted, reason := matchState.canJoin(presence.GetUserId())
	return matchState, accepted, reason
}

// canJoin admits seated players back at any time and newcomers only to a
// lobby with a free seat.
func (ms *MatchState) canJoin(userID string) (bool, string) {
	if ms.SeatOf(userID) >= 0 {
		return true, ""
	}
	if ms.InProgress() {
		return false, "Match in progress"
	}
	if ms.GetOpenSeatsCount() <= 0 {
		return false, "Match full"
	}
	return true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		mh.seatPlayer(matchState, dispatcher, logger, p.GetUserId())
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendSnapshots(matchState, dispatcher, logger)
	return matchState
}

// seatPlayer gives the user the lowest free seat unless they already hold one.
func (mh *matchHandler) seatPlayer(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	seat := state.SeatOf(userID)
	if seat < 0 {
		seat = lowestOpenSeat(state.Seats)
		if seat < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
			return
		}
		state.Seats[seat] = userID
		logger.Debug("MatchJoin: User %s took seat %d.", userID, seat)
	}
	if state.OwnerSeat < 0 || state.Seats[state.OwnerSeat] == "" {
		state.OwnerSeat = firstOccupiedSeat(state.Seats)
	}

	mh.broadcastEvent(state, dispatcher, logger, app.Event{
		Kind: app.EventPlayerJoined,
		Payload: app.PlayerJoinedPayload{
			UserID: userID,
			Seat:   seat,
			Owner:  seat == state.OwnerSeat,
		},
	})
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		mh.unseatPlayer(matchState, dispatcher, logger, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no players connected.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// unseatPlayer drops the presence. The seat is only freed outside of a deal
// so that a disconnected player can come back to their hand.
func (mh *matchHandler) unseatPlayer(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	delete(state.Presences, userID)
	seat := state.SeatOf(userID)
	if seat < 0 {
		return
	}
	if state.InProgress() {
		logger.Info("MatchLeave: User %s left mid-game, keeping seat %d.", userID, seat)
		return
	}

	state.Seats[seat] = ""
	logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
	if state.OwnerSeat == seat {
		state.OwnerSeat = firstOccupiedSeat(state.Seats)
	}
	mh.broadcastEvent(state, dispatcher, logger, app.Event{
		Kind:    app.EventPlayerLeft,
		Payload: app.PlayerLeftPayload{UserID: userID},
	})
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(matchState, dispatcher, logger, msg.GetOpCode(), msg.GetUserId(), msg.GetData())
	}

	for _, intent := range matchState.Scheduler.Advance(tick) {
		logger.Debug("MatchLoop: Running deferred %s for %s.", intent.Kind, intent.PlayerID)
		mh.applyIntent(matchState, dispatcher, logger, intent)
	}

	return matchState
}

// handleMessage routes one client message.
func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, userID string, data []byte) {
	if state.SeatOf(userID) < 0 {
		logger.Warn("MatchLoop: Ignoring opcode %d from unseated user %s", opCode, userID)
		return
	}

	intent, err := decodeIntent(opCode, userID, data)
	if err != nil {
		logger.Warn("MatchLoop: Bad message from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, ErrCodeBadRequest, err.Error())
		return
	}

	if intent.Kind == domain.IntentDistribute {
		mh.handleDistribute(state, dispatcher, logger, userID)
		return
	}
	if state.Game == nil {
		logger.Warn("MatchLoop: Game not started, dropping %s from %s.", intent.Kind, userID)
		mh.sendError(state, dispatcher, logger, userID, ErrCodeConflict, "game not started")
		return
	}
	mh.applyIntent(state, dispatcher, logger, intent)
}

// handleDistribute deals a new game when the owner asks with enough players seated.
func (mh *matchHandler) handleDistribute(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	senderSeat := state.SeatOf(userID)
	logger.Info("Distribute: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", userID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("Distribute: User %s tried to deal but is not owner (owner_seat=%d)", userID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, userID, ErrCodeForbidden, "only the match owner can deal")
		return
	}
	if state.InProgress() {
		mh.sendError(state, dispatcher, logger, userID, ErrCodeConflict, "game already in progress")
		return
	}
	activeCount := state.GetOccupiedSeatCount()
	if activeCount < state.MinPlayers {
		logger.Warn("Distribute: Cannot start with %d players. Need at least %d.", activeCount, state.MinPlayers)
		mh.sendError(state, dispatcher, logger, userID, ErrCodeBadRequest, "not enough players")
		return
	}

	state.Game = domain.NewGame(state.SeatedPlayers())
	if mh.applyIntent(state, dispatcher, logger, domain.Intent{Kind: domain.IntentDistribute, PlayerID: userID}) {
		logger.Info("Distribute: Game started with %d players.", activeCount)
	}
}

// applyIntent runs an operation through the app service and publishes the
// outcome. It reports whether the operation was accepted.
func (mh *matchHandler) applyIntent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, intent domain.Intent) bool {
	phase := state.Phase()
	events, err := state.App.Apply(state.Game, intent)
	if err != nil {
		logger.Warn("applyIntent: User %s failed to %s: %v", intent.PlayerID, intent.Kind, err)
		mh.sendError(state, dispatcher, logger, intent.PlayerID, errorCode(err), err.Error())
		return false
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	if state.Phase() != phase {
		mh.updateLabel(state, dispatcher, logger)
	}
	mh.sendSnapshots(state, dispatcher, logger)
	return true
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("broadcastEvent: %v", err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Private events for disconnected players must not leak to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("broadcastEvent: Failed to send %v: %v", ev.Kind, err)
	}
}

// sendSnapshots sends every connected seated player their own view of the game.
func (mh *matchHandler) sendSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil {
		return
	}
	for _, userID := range state.SeatedPlayers() {
		presence, ok := state.Presences[userID]
		if !ok {
			continue
		}
		data, err := json.Marshal(state.Game.View(userID))
		if err != nil {
			logger.Error("sendSnapshots: Failed to marshal view for %s: %v", userID, err)
			continue
		}
		if err := dispatcher.BroadcastMessage(OpSnapshot, data, []runtime.Presence{presence}, nil, true); err != nil {
			logger.Error("sendSnapshots: Failed to send to %s: %v", userID, err)
		}
	}
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	data, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send GameErrorEvent: %v", err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	open := state.GetOpenSeatsCount()
	if state.InProgress() {
		open = 0
	}
	label, err := matchLabel(open, state.Phase())
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating with %d seconds of grace", graceSeconds)
	return state
}

// MatchSignal answers SignalSnapshot with the JSON of the game aggregate.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != SignalSnapshot || matchState.Game == nil {
		return state, ""
	}
	snapshot, err := json.Marshal(matchState.Game)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal game: %v", err)
		return state, ""
	}
	return state, string(snapshot)
}

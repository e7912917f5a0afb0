package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameCareerPoker is the authoritative match handler name registered with Nakama.
	MatchNameCareerPoker = "careerpoker_match"

	// GameName is advertised in the match label.
	GameName = "careerpoker"

	// SignalSnapshot asks MatchSignal for the JSON of the game aggregate.
	SignalSnapshot = "snapshot"

	gameConfigPath = "data/game_config.json"
	envTickRate    = "careerpoker_tick_rate"
)

// Label keys used by the quick match query.
const (
	MatchLabelKeyOpenSeats = "open"
	MatchLabelKeyGame      = "game"
	MatchLabelKeyPhase     = "phase"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpDistribute int64 = 1
	OpSelect     int64 = 2
	OpServe      int64 = 3
	OpPass       int64 = 4
	OpAnswer     int64 = 5

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpHandDealt      int64 = 103 // send privately
	OpCardSelected   int64 = 104 // send privately
	OpCardsServed    int64 = 105
	OpTurnPassed     int64 = 106
	OpPromptOpened   int64 = 107
	OpPromptResolved int64 = 108
	OpOneChanceTaken int64 = 109
	OpChainFlushed   int64 = 110
	OpGameEnded      int64 = 111
	OpSnapshot       int64 = 112 // send privately
	OpGameError      int64 = 113 // send privately
	OpGameStarted    int64 = 114
)

// Codes carried by game error events.
const (
	ErrCodeBadRequest = 400
	ErrCodeForbidden  = 403
	ErrCodeConflict   = 409
	ErrCodeGone       = 410
)

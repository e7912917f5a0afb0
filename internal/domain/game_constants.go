package domain

const (
	MinRank = 1
	MaxRank = 13

	// DefaultJokerCount is the number of jokers added to the 52-card pool.
	DefaultJokerCount = 2
)

// Ranks with a rule attached to them.
const (
	RankAce   = 1
	RankTwo   = 2
	RankThree = 3
	RankFour  = 4
	RankFive  = 5
	RankSix   = 6
	RankSeven = 7
	RankEight = 8
	RankNine  = 9
	RankTen   = 10
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
)

// Prompt answer tokens.
const (
	AnswerOK    = "ok"
	AnswerServe = "serve"
	AnswerSkip  = "skip"
)

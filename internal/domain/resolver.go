package domain

import "fmt"

const (
	questionSelect4      = "select cards from trushes"
	questionSelect7      = "select cards from hands"
	questionSelect13     = "select cards from excluded"
	questionUseOneChance = "select A if use one chance"
)

// Resolve applies the rule of the rank of an accepted play. It returns the
// prompt it opened, if any; the caller must not end the turn until that
// prompt is answered.
func (g *Game) Resolve(actor string, play Deck) (*Prompt, error) {
	g.Effect.RiverSize = len(play)
	if len(play) == 4 {
		g.Effect.Revoluted = !g.Effect.Revoluted
	}

	rank, ok := play.Rank()
	if !ok || g.Effect.Disabled(rank) {
		return nil, nil
	}

	hand := g.Fields[Hand(actor)]
	switch rank {
	case RankAce, RankTwo, RankFive, RankSix, RankEight:
	case RankThree:
		g.Effect.EffectLimits = g.Effect.EffectLimits.WithRange(MinRank, MaxRank)
	case RankFour:
		if len(hand) > 0 && len(g.Fields[Trushes]) > 0 {
			return g.openSelect(PromptSelect4, actor, questionSelect4), nil
		}
	case RankSeven:
		if len(hand) > 0 {
			return g.openSelect(PromptSelect7, actor, questionSelect7), nil
		}
	case RankNine:
		g.Effect.RiverSize = toggleRiverSize(g.Effect.RiverSize)
	case RankTen:
		g.Effect.EffectLimits = g.Effect.EffectLimits.WithRange(MinRank, RankNine)
	case RankJack:
		g.Effect.TurnRevoluted = true
	case RankQueen:
		g.Effect.IsStep = true
		g.Effect.SuitLimits = SuitsOf(play)
	case RankKing:
		if len(hand) > 0 && len(g.Fields[Excluded]) > 0 {
			return g.openSelect(PromptSelect13, actor, questionSelect13), nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	return nil, nil
}

func (g *Game) openSelect(kind PromptKind, actor, question string) *Prompt {
	return g.openPrompt(Prompt{
		Kind:      kind,
		PlayerIDs: []string{actor},
		Question:  question,
		Options:   []string{AnswerOK},
	})
}

// OpenOneChance asks the given Ace holders whether they contest the play on
// top of the river.
func (g *Game) OpenOneChance(holders []string) *Prompt {
	return g.openPrompt(Prompt{
		Kind:      PromptUseOneChance,
		PlayerIDs: holders,
		Question:  questionUseOneChance,
		Options:   []string{AnswerServe, AnswerSkip},
	})
}

func (g *Game) openPrompt(p Prompt) *Prompt {
	g.Prompts = append(g.Prompts, p)
	return &p
}

// ClosePrompt pops the active prompt and forgets its answers.
func (g *Game) ClosePrompt() {
	if len(g.Prompts) > 0 {
		g.Prompts = g.Prompts[1:]
	}
	g.Answers = map[string]string{}
}

// SourceField is the pile a Select prompt's staged cards are taken from.
func (p Prompt) SourceField(actor string) (FieldKey, bool) {
	switch p.Kind {
	case PromptSelect4:
		return Trushes, true
	case PromptSelect13:
		return Excluded, true
	case PromptSelect7:
		return Hand(actor), true
	}
	return FieldKey{}, false
}

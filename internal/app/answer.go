package app

import (
	"fmt"

	"careerpoker/internal/domain"
)

func (s *Service) answer(t *tx, playerID, token string) error {
	g := t.game
	prompt, ok := g.ActivePrompt()
	if !ok {
		return fmt.Errorf("%w: no open prompt", domain.ErrInvalidAnswer)
	}
	if !prompt.Addressed(playerID) {
		return fmt.Errorf("%w: prompt is not addressed to %s", domain.ErrInvalidAnswer, playerID)
	}
	if _, done := g.Answers[playerID]; done {
		return fmt.Errorf("%w: %s already answered", domain.ErrInvalidAnswer, playerID)
	}
	if !prompt.Allows(token) {
		return fmt.Errorf("%w: %q is not one of %v", domain.ErrInvalidAnswer, token, prompt.Options)
	}

	switch prompt.Kind {
	case domain.PromptSelect4, domain.PromptSelect7, domain.PromptSelect13:
		if err := checkSelectAnswer(g, prompt, playerID); err != nil {
			return err
		}
	case domain.PromptUseOneChance:
		if token == domain.AnswerServe && !stagedAce(g, playerID) {
			return fmt.Errorf("%w: stage exactly one Ace, not your last card", domain.ErrInvalidAnswer)
		}
	}

	g.Answers[playerID] = token
	t.cancelDeferred(playerID)
	if len(g.Answers) < len(prompt.PlayerIDs) {
		return nil
	}

	if prompt.Kind == domain.PromptUseOneChance {
		return s.resolveOneChance(t, prompt)
	}
	return s.resolveSelect(t, prompt, playerID)
}

// selectSize is the number of cards a Select prompt wants: the size of the
// play that opened it, capped by what the source pile holds.
func selectSize(g *domain.Game, source domain.Deck) int {
	top, _ := g.Top()
	return min(len(top), len(source))
}

func checkSelectAnswer(g *domain.Game, prompt domain.Prompt, playerID string) error {
	key, _ := prompt.SourceField(playerID)
	source, err := g.Field(key)
	if err != nil {
		return err
	}
	staged := g.Selection(playerID)
	if want := selectSize(g, source); len(staged) != want {
		return fmt.Errorf("%w: select %d cards, have %d", domain.ErrInvalidAnswer, want, len(staged))
	}
	if !source.Contains(staged) {
		return fmt.Errorf("%w: %s not in %s", domain.ErrNotFound, staged, key)
	}
	return nil
}

// stagedAce reports whether the player staged a single Ace from a hand that
// holds other cards too.
func stagedAce(g *domain.Game, playerID string) bool {
	staged := g.Selection(playerID)
	if len(staged) != 1 {
		return false
	}
	if rank, ok := staged.Rank(); !ok || rank != domain.RankAce {
		return false
	}
	hand := g.Fields[domain.Hand(playerID)]
	return len(hand) > 1 && hand.Contains(staged)
}

func (s *Service) resolveSelect(t *tx, prompt domain.Prompt, actor string) error {
	g := t.game
	from, _ := prompt.SourceField(actor)
	to := domain.Hand(actor)
	if prompt.Kind == domain.PromptSelect7 {
		right, ok := g.RelativePlayer(actor, -1)
		if !ok {
			return domain.ErrFieldNotFound
		}
		to = domain.Hand(right)
	}

	cards := g.Selection(actor).Clone()
	if err := g.Transfer(from, to, cards); err != nil {
		return err
	}
	g.SortField(to)
	g.ClearSelect(actor)
	g.ClosePrompt()
	t.emit(EventPromptResolved, PromptResolvedPayload{
		Kind:   prompt.Kind,
		UserID: actor,
		Count:  len(cards),
		To:     to.String(),
	})

	g.LastServedPlayerID = actor
	s.endTurn(t, actor, true)
	return nil
}

func (s *Service) resolveOneChance(t *tx, prompt domain.Prompt) error {
	g := t.game
	server := g.Current
	answers := g.Answers

	var contestants []string
	for _, id := range seatsAfter(g, server) {
		if answers[id] == domain.AnswerServe && stagedAce(g, id) {
			contestants = append(contestants, id)
		}
	}

	t.cancelAllDeferred()
	g.ClosePrompt()
	t.emit(EventPromptResolved, PromptResolvedPayload{
		Kind:    prompt.Kind,
		UserID:  server,
		Answers: answers,
	})

	pending, _ := g.Top()
	if len(contestants) == 0 || !s.rng.FairChance(len(g.ActivePlayerIDs())) {
		return s.commitPlay(t, server, pending)
	}

	interrupter := contestants[0]
	ace := g.Selection(interrupter).Clone()
	hand := g.Fields[domain.Hand(interrupter)]
	if err := hand.Remove(ace); err != nil {
		return err
	}
	g.Fields[domain.Hand(interrupter)] = hand
	g.ClearSelect(interrupter)

	discarded := g.FlushTo(domain.Trushes)
	g.River = []domain.Deck{ace}
	if _, err := g.Resolve(interrupter, ace); err != nil {
		return err
	}
	g.LastServedPlayerID = interrupter
	g.Current = interrupter
	t.emit(EventOneChanceTaken, OneChanceTakenPayload{
		UserID:    interrupter,
		FromUser:  server,
		Card:      ace[0],
		Discarded: discarded,
	})

	s.endTurn(t, interrupter, true)
	return nil
}

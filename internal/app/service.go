package app

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"careerpoker/internal/config"
	"careerpoker/internal/domain"
	"careerpoker/internal/ports"
)

// Service contains Career Poker use-cases operating on domain state.
type Service struct {
	rng              ports.RandomSource
	scheduler        ports.Scheduler
	jokers           int
	oneChanceTimeout time.Duration
}

// NewService constructs a Service. A nil rng falls back to a time-seeded
// source, a nil scheduler disables auto-answers and a nil cfg uses the loaded
// game config.
func NewService(rng ports.RandomSource, scheduler ports.Scheduler, cfg *config.GameConfig) *Service {
	if rng == nil {
		rng = ports.NewRandSource(nil)
	}
	if cfg == nil {
		cfg = config.GetGameConfig()
	}
	return &Service{
		rng:              rng,
		scheduler:        scheduler,
		jokers:           cfg.JokerCount,
		oneChanceTimeout: cfg.OneChanceTimeout(),
	}
}

// tx collects what one operation did to a working copy of the game.
type tx struct {
	game      *domain.Game
	events    []Event
	schedules []domain.Intent
	cancels   []string
}

func (t *tx) emit(kind EventKind, payload any, recipients ...string) {
	t.events = append(t.events, Event{Kind: kind, Payload: payload, Recipients: recipients})
}

func (t *tx) cancelDeferred(playerID string) {
	if handle, ok := t.game.Deferred[playerID]; ok {
		delete(t.game.Deferred, playerID)
		t.cancels = append(t.cancels, handle)
	}
}

func (t *tx) cancelAllDeferred() {
	for _, id := range slices.Sorted(maps.Keys(t.game.Deferred)) {
		t.cancelDeferred(id)
	}
}

// Apply runs one player operation. The game is only changed when the
// operation succeeds; scheduling side effects run after the commit.
func (s *Service) Apply(game *domain.Game, in domain.Intent) ([]Event, error) {
	if game.Phase == domain.PhaseEnded {
		return nil, domain.ErrMatchEnded
	}

	t := &tx{game: game.Clone()}
	var err error
	switch in.Kind {
	case domain.IntentDistribute:
		err = s.distribute(t)
	case domain.IntentSelect:
		err = s.selectCard(t, in.PlayerID, in.Card)
	case domain.IntentServe:
		err = s.serve(t, in.PlayerID)
	case domain.IntentPass:
		err = s.pass(t, in.PlayerID)
	case domain.IntentAnswer:
		err = s.answer(t, in.PlayerID, in.Answer)
	default:
		err = fmt.Errorf("unknown intent %s", in.Kind)
	}
	if err != nil {
		return nil, err
	}

	*game = *t.game
	s.runDeferred(game, t)
	return t.events, nil
}

func (s *Service) runDeferred(game *domain.Game, t *tx) {
	if s.scheduler == nil {
		return
	}
	for _, handle := range t.cancels {
		s.scheduler.Cancel(handle)
	}
	for _, intent := range t.schedules {
		if game.Deferred == nil {
			game.Deferred = make(map[string]string)
		}
		game.Deferred[intent.PlayerID] = s.scheduler.Schedule(intent, s.oneChanceTimeout)
	}
}

// Distribute deals a fresh match to the seated players.
func (s *Service) Distribute(game *domain.Game) ([]Event, error) {
	return s.Apply(game, domain.Intent{Kind: domain.IntentDistribute})
}

// Select toggles a card in the player's staged selection.
func (s *Service) Select(game *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	return s.Apply(game, domain.Intent{Kind: domain.IntentSelect, PlayerID: playerID, Card: card})
}

// Serve plays the player's staged selection.
func (s *Service) Serve(game *domain.Game, playerID string) ([]Event, error) {
	return s.Apply(game, domain.Intent{Kind: domain.IntentServe, PlayerID: playerID})
}

// Pass gives up the player's turn.
func (s *Service) Pass(game *domain.Game, playerID string) ([]Event, error) {
	return s.Apply(game, domain.Intent{Kind: domain.IntentPass, PlayerID: playerID})
}

// Answer replies to the open prompt.
func (s *Service) Answer(game *domain.Game, playerID, token string) ([]Event, error) {
	return s.Apply(game, domain.Intent{Kind: domain.IntentAnswer, PlayerID: playerID, Answer: token})
}

func (s *Service) distribute(t *tx) error {
	g := t.game
	if len(g.Players) == 0 {
		return domain.ErrPlayersEmpty
	}

	t.cancelAllDeferred()
	g.Reset()

	deck := domain.NewDeck(s.jokers)
	deck.Shuffle(s.rng)
	hands, err := deck.Split(len(g.Players))
	if err != nil {
		return err
	}
	for i, userID := range g.Players {
		hand := hands[i]
		hand.Sort(domain.CompareCards)
		g.Fields[domain.Hand(userID)] = hand
		t.emit(EventHandDealt, HandDealtPayload{UserID: userID, Hand: hand.Clone()}, userID)
	}

	g.Phase = domain.PhasePlaying
	g.Current = g.Players[0]
	t.emit(EventGameStarted, GameStartedPayload{
		Phase:           g.Phase,
		Players:         slices.Clone(g.Players),
		FirstTurnUserID: g.Current,
	})
	return nil
}

func (s *Service) selectCard(t *tx, playerID string, card domain.Card) error {
	g := t.game
	if _, err := g.Field(domain.Hand(playerID)); err != nil {
		return err
	}
	g.ToggleSelect(playerID, card)
	t.emit(EventCardSelected, CardSelectedPayload{UserID: playerID, Selection: g.Selection(playerID).Clone()}, playerID)
	return nil
}

// checkTurn guards the operations that need the caller to hold the turn.
func checkTurn(g *domain.Game, playerID string) error {
	if _, open := g.ActivePrompt(); open {
		return domain.ErrPendingAnswerRequired
	}
	if g.Phase != domain.PhasePlaying || g.Current != playerID {
		return domain.ErrNotYourTurn
	}
	return nil
}

func (s *Service) serve(t *tx, playerID string) error {
	g := t.game
	if err := checkTurn(g, playerID); err != nil {
		return err
	}
	play := g.Selection(playerID).Clone()
	if len(play) == 0 {
		return domain.ErrEmptySelection
	}
	if err := domain.Servable(g, play); err != nil {
		return err
	}
	hand := g.Fields[domain.Hand(playerID)]
	if err := hand.Remove(play); err != nil {
		return err
	}
	g.Fields[domain.Hand(playerID)] = hand
	g.River = append(g.River, play)
	g.ClearSelect(playerID)
	t.emit(EventCardsServed, CardsServedPayload{UserID: playerID, Cards: play.Clone()})

	if holders := aceHolders(g, playerID); len(holders) > 0 && !g.Effect.Disabled(domain.RankAce) {
		prompt := g.OpenOneChance(holders)
		t.emit(EventPromptOpened, PromptOpenedPayload{Prompt: *prompt})
		for _, id := range holders {
			t.schedules = append(t.schedules, domain.Intent{
				Kind:     domain.IntentAnswer,
				PlayerID: id,
				Answer:   domain.AnswerSkip,
			})
		}
		return nil
	}
	return s.commitPlay(t, playerID, play)
}

// commitPlay resolves an accepted play and hands the turn on, unless the
// play opened a prompt that has to be answered first.
func (s *Service) commitPlay(t *tx, playerID string, play domain.Deck) error {
	g := t.game
	opened, err := g.Resolve(playerID, play)
	if err != nil {
		return err
	}
	g.LastServedPlayerID = playerID
	if opened != nil {
		t.emit(EventPromptOpened, PromptOpenedPayload{Prompt: *opened})
		return nil
	}
	s.endTurn(t, playerID, true)
	return nil
}

func (s *Service) pass(t *tx, playerID string) error {
	g := t.game
	if err := checkTurn(g, playerID); err != nil {
		return err
	}
	if len(g.River) == 0 {
		return domain.ErrRiverEmpty
	}
	s.endTurn(t, playerID, false)
	return nil
}

func (s *Service) endTurn(t *tx, actor string, served bool) {
	res := t.game.EndTurn(actor, served)
	if !served {
		t.emit(EventTurnPassed, TurnPassedPayload{UserID: actor, NextTurnUserID: res.Next})
	}
	if len(res.Flushed) > 0 {
		t.emit(EventChainFlushed, ChainFlushedPayload{
			Cards:          res.Flushed,
			To:             res.FlushedTo.String(),
			NextTurnUserID: res.Next,
		})
	}
	if res.Ended {
		t.cancelAllDeferred()
		t.emit(EventGameEnded, GameEndedPayload{FinishOrder: slices.Clone(t.game.FinishOrder)})
	}
}

// seatsAfter lists the seated players in seat order, starting after playerID.
func seatsAfter(g *domain.Game, playerID string) []string {
	start := slices.Index(g.Players, playerID)
	var out []string
	for i := 1; i < len(g.Players); i++ {
		out = append(out, g.Players[(start+i+len(g.Players))%len(g.Players)])
	}
	return out
}

// aceHolders lists the other active players holding an Ace.
func aceHolders(g *domain.Game, server string) []string {
	var holders []string
	for _, id := range seatsAfter(g, server) {
		if g.IsActive(id) && g.Fields[domain.Hand(id)].HasRank(domain.RankAce) {
			holders = append(holders, id)
		}
	}
	return holders
}

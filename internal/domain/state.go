package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Phase represents the lifecycle stage of a Career Poker match.
type Phase string

const (
	// PhaseLobby is the state before cards are dealt.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active game state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after only one player holds cards.
	PhaseEnded Phase = "ended"
)

// FieldKind names a class of card pile.
type FieldKind string

const (
	FieldHand     FieldKind = "hand"
	FieldTrushes  FieldKind = "trushes"
	FieldExcluded FieldKind = "excluded"
)

// FieldKey identifies a named pile: a player's hand, the discard pile
// (Trushes) or the pile of cards removed from play (Excluded).
type FieldKey struct {
	Kind     FieldKind
	PlayerID string
}

var (
	Trushes  = FieldKey{Kind: FieldTrushes}
	Excluded = FieldKey{Kind: FieldExcluded}
)

// Hand returns the key of a player's hand.
func Hand(playerID string) FieldKey {
	return FieldKey{Kind: FieldHand, PlayerID: playerID}
}

func (k FieldKey) String() string {
	if k.Kind == FieldHand {
		return string(FieldHand) + ":" + k.PlayerID
	}
	return string(k.Kind)
}

func (k FieldKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FieldKey) UnmarshalText(text []byte) error {
	s := string(text)
	if id, ok := strings.CutPrefix(s, string(FieldHand)+":"); ok {
		*k = Hand(id)
		return nil
	}
	switch FieldKind(s) {
	case FieldTrushes:
		*k = Trushes
	case FieldExcluded:
		*k = Excluded
	default:
		return fmt.Errorf("%w: %q", ErrFieldNotFound, s)
	}
	return nil
}

// PromptKind identifies which decision a prompt is waiting for.
type PromptKind string

const (
	// PromptSelect4 asks the player to take cards from Trushes.
	PromptSelect4 PromptKind = "select4"
	// PromptSelect7 asks the player to hand cards to their right neighbour.
	PromptSelect7 PromptKind = "select7"
	// PromptSelect13 asks the player to take cards from Excluded.
	PromptSelect13 PromptKind = "select13"
	// PromptUseOneChance asks Ace holders whether they contest the play.
	PromptUseOneChance PromptKind = "use_one_chance"
)

// Prompt is a pending decision that blocks the turn cycle until every
// addressee has answered.
type Prompt struct {
	Kind      PromptKind `json:"kind"`
	PlayerIDs []string   `json:"player_ids"`
	Question  string     `json:"question"`
	Options   []string   `json:"options"`
}

// Addressed reports whether the player must answer the prompt.
func (p Prompt) Addressed(playerID string) bool {
	return slices.Contains(p.PlayerIDs, playerID)
}

// Allows reports whether the token is one of the prompt's options.
func (p Prompt) Allows(token string) bool {
	return slices.Contains(p.Options, token)
}

// Game is the aggregate state of one match. It is only changed through the
// player operations in the app package.
type Game struct {
	Phase   Phase    `json:"phase"`
	Players []string `json:"players"` // seat order, fixed for the match

	Fields map[FieldKey]Deck `json:"fields"`
	// River holds the plays of the current chain, most recent last.
	River []Deck `json:"river"`

	Current            string `json:"current"`
	LastServedPlayerID string `json:"last_served_player_id"`

	Effect Effect `json:"effect"`

	// Prompts is a queue; the head is the active prompt.
	Prompts []Prompt          `json:"prompts"`
	Selects map[string]Deck   `json:"selects"`
	Answers map[string]string `json:"answers"`

	// Deferred maps a player to the handle of a scheduled call that will
	// answer on their behalf.
	Deferred map[string]string `json:"deferred,omitempty"`

	FinishOrder []string `json:"finish_order"`
}

// NewGame seats the players and creates their empty piles.
func NewGame(playerIDs []string) *Game {
	g := &Game{
		Phase:   PhaseLobby,
		Players: slices.Clone(playerIDs),
	}
	g.Reset()
	return g
}

// Reset empties every pile and clears the chain, keeping the seating.
func (g *Game) Reset() {
	g.Fields = map[FieldKey]Deck{
		Trushes:  {},
		Excluded: {},
	}
	g.Selects = make(map[string]Deck, len(g.Players))
	for _, id := range g.Players {
		g.Fields[Hand(id)] = Deck{}
		g.Selects[id] = Deck{}
	}
	g.River = []Deck{}
	g.Current = ""
	g.LastServedPlayerID = ""
	g.Effect = Effect{}
	g.Prompts = []Prompt{}
	g.Answers = map[string]string{}
	g.Deferred = nil
	g.FinishOrder = []string{}
	g.Phase = PhaseLobby
}

// Field returns the pile for the key.
func (g *Game) Field(key FieldKey) (Deck, error) {
	deck, ok := g.Fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, key)
	}
	return deck, nil
}

// Transfer moves cards between two piles. Nothing moves if a card is missing.
func (g *Game) Transfer(from, to FieldKey, cards Deck) error {
	src, err := g.Field(from)
	if err != nil {
		return err
	}
	dst, err := g.Field(to)
	if err != nil {
		return err
	}
	if err := src.Remove(cards); err != nil {
		return fmt.Errorf("%w in %s", err, from)
	}
	g.Fields[from] = src
	g.Fields[to] = append(dst, cards...)
	return nil
}

// SortField orders a pile by card strength.
func (g *Game) SortField(key FieldKey) {
	if deck, ok := g.Fields[key]; ok {
		deck.Sort(CompareCards)
	}
}

// Top returns the most recent play of the chain.
func (g *Game) Top() (Deck, bool) {
	if len(g.River) == 0 {
		return nil, false
	}
	return g.River[len(g.River)-1], true
}

// ActivePrompt returns the head of the prompt queue.
func (g *Game) ActivePrompt() (Prompt, bool) {
	if len(g.Prompts) == 0 {
		return Prompt{}, false
	}
	return g.Prompts[0], true
}

// IsSeated reports whether the player takes part in the match.
func (g *Game) IsSeated(playerID string) bool {
	return slices.Contains(g.Players, playerID)
}

// Selection returns the player's staged cards.
func (g *Game) Selection(playerID string) Deck {
	return g.Selects[playerID]
}

// ToggleSelect adds the card to the player's staged selection, or removes it
// when already staged.
func (g *Game) ToggleSelect(playerID string, card Card) {
	sel := g.Selects[playerID]
	if i := slices.Index(sel, card); i >= 0 {
		g.Selects[playerID] = slices.Delete(sel.Clone(), i, i+1)
		return
	}
	g.Selects[playerID] = append(sel.Clone(), card)
}

// ClearSelect empties the player's staged selection.
func (g *Game) ClearSelect(playerID string) {
	g.Selects[playerID] = Deck{}
}

// Clone returns a deep copy of the aggregate.
func (g *Game) Clone() *Game {
	out := *g
	out.Players = slices.Clone(g.Players)
	out.Fields = make(map[FieldKey]Deck, len(g.Fields))
	for k, d := range g.Fields {
		out.Fields[k] = d.Clone()
	}
	out.River = make([]Deck, len(g.River))
	for i, d := range g.River {
		out.River[i] = d.Clone()
	}
	out.Prompts = make([]Prompt, len(g.Prompts))
	for i, p := range g.Prompts {
		p.PlayerIDs = slices.Clone(p.PlayerIDs)
		p.Options = slices.Clone(p.Options)
		out.Prompts[i] = p
	}
	out.Selects = make(map[string]Deck, len(g.Selects))
	for k, d := range g.Selects {
		out.Selects[k] = d.Clone()
	}
	out.Answers = maps.Clone(g.Answers)
	out.Deferred = maps.Clone(g.Deferred)
	out.FinishOrder = slices.Clone(g.FinishOrder)
	return &out
}

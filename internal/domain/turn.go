package domain

import "slices"

// ActivePlayerIDs lists, in seat order, the players still holding cards.
func (g *Game) ActivePlayerIDs() []string {
	active := make([]string, 0, len(g.Players))
	for _, id := range g.Players {
		if len(g.Fields[Hand(id)]) > 0 {
			active = append(active, id)
		}
	}
	return active
}

// IsActive reports whether the player still holds cards.
func (g *Game) IsActive(playerID string) bool {
	return len(g.Fields[Hand(playerID)]) > 0
}

// RelativePlayer walks delta steps around the active players starting from
// playerID. A player who has gone out is located at the gap just before the
// next active player in seat order, so +1 lands on that player and -1 on the
// active player before the gap.
func (g *Game) RelativePlayer(playerID string, delta int) (string, bool) {
	active := g.ActivePlayerIDs()
	n := len(active)
	if n == 0 {
		return "", false
	}
	if pos := slices.Index(active, playerID); pos >= 0 {
		return active[mod(pos+delta, n)], true
	}

	seat := slices.Index(g.Players, playerID)
	if seat < 0 {
		return "", false
	}
	after := -1
	for i := 1; i <= len(g.Players) && after < 0; i++ {
		after = slices.Index(active, g.Players[(seat+i)%len(g.Players)])
	}
	if delta > 0 {
		return active[mod(after+delta-1, n)], true
	}
	return active[mod(after+delta, n)], true
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// TurnResult describes what EndTurn did to the turn cycle.
type TurnResult struct {
	Next      string
	Flushed   Deck
	FlushedTo FieldKey
	Ended     bool
}

// EndTurn hands the turn on after actor served (or passed) and closes the
// chain once the turn comes back around to the last server. When at most one
// player still holds cards the match ends instead.
func (g *Game) EndTurn(actor string, served bool) TurnResult {
	if g.finishIfOver(actor) {
		return TurnResult{Ended: true}
	}

	step := 1
	if served {
		step = g.stepAfterServe()
	}
	next, _ := g.RelativePlayer(actor, step)
	g.Current = next

	res := TurnResult{Next: next}
	if next == g.chainAnchor() {
		res.Flushed, res.FlushedTo = g.Flush()
	}
	return res
}

// finishIfOver records players who have gone out, actor first. The match
// ends once actor has emptied their hand and one player or none still holds
// cards.
func (g *Game) finishIfOver(actor string) bool {
	for _, id := range append([]string{actor}, g.Players...) {
		if g.IsSeated(id) && !g.IsActive(id) && !slices.Contains(g.FinishOrder, id) {
			g.FinishOrder = append(g.FinishOrder, id)
		}
	}
	active := g.ActivePlayerIDs()
	if g.IsActive(actor) || len(active) > 1 {
		return false
	}
	g.FinishOrder = append(g.FinishOrder, active...)
	g.Phase = PhaseEnded
	g.Current = ""
	return true
}

func (g *Game) stepAfterServe() int {
	top, ok := g.Top()
	if !ok {
		return 1
	}
	rank, ok := top.Rank()
	if !ok || g.Effect.Disabled(rank) {
		return 1
	}
	switch rank {
	case RankFive:
		return len(top) + 1
	case RankEight, RankAce:
		return 0
	}
	return 1
}

// chainAnchor is the player at whom the chain closes: the last server, or the
// next active player after them once they have gone out.
func (g *Game) chainAnchor() string {
	if g.LastServedPlayerID == "" || g.IsActive(g.LastServedPlayerID) {
		return g.LastServedPlayerID
	}
	anchor, _ := g.RelativePlayer(g.LastServedPlayerID, 1)
	return anchor
}

// Flush closes the chain: the river goes to Excluded when a 2 with its rule
// enabled sits on top, to Trushes otherwise.
func (g *Game) Flush() (Deck, FieldKey) {
	dest := Trushes
	if top, ok := g.Top(); ok {
		if rank, ok := top.Rank(); ok && rank == RankTwo && !g.Effect.Disabled(RankTwo) {
			dest = Excluded
		}
	}
	return g.FlushTo(dest), dest
}

// FlushTo moves every play of the river to dest and starts a fresh chain.
func (g *Game) FlushTo(dest FieldKey) Deck {
	var moved Deck
	for _, play := range g.River {
		moved = append(moved, play...)
	}
	g.Fields[dest] = append(g.Fields[dest], moved...)
	g.River = []Deck{}
	g.Effect = g.Effect.NewChain()
	return moved
}

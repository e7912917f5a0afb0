package domain

// dealt seats the players with the given hands and gives the turn to the
// first one.
func dealt(players []string, hands ...[]string) *Game {
	g := NewGame(players)
	g.Phase = PhasePlaying
	for i, id := range players {
		g.Fields[Hand(id)] = MustParseCards(hands[i]...)
	}
	g.Current = players[0]
	return g
}

// onRiver puts a play on top of the river as if actor had served it.
func onRiver(g *Game, actor string, cards ...string) {
	play := MustParseCards(cards...)
	g.River = append(g.River, play)
	g.Effect.RiverSize = len(play)
	g.LastServedPlayerID = actor
}

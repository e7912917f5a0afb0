package domain

// View is what one player may see of the match.
type View struct {
	Phase       Phase          `json:"phase"`
	Players     []string       `json:"players"`
	Current     string         `json:"current"`
	Hand        Deck           `json:"hand"`
	HandCounts  map[string]int `json:"hand_counts"`
	Selection   Deck           `json:"selection"`
	Trushes     Deck           `json:"trushes"`
	Excluded    Deck           `json:"excluded"`
	Top         Deck           `json:"top"`
	Prompt      *Prompt        `json:"prompt,omitempty"`
	Effect      Effect         `json:"effect"`
	FinishOrder []string       `json:"finish_order"`
}

// View projects the aggregate for viewer. Other players' hands and selections
// are reduced to counts.
func (g *Game) View(viewer string) View {
	v := View{
		Phase:       g.Phase,
		Players:     append([]string(nil), g.Players...),
		Current:     g.Current,
		Hand:        g.Fields[Hand(viewer)].Clone(),
		HandCounts:  make(map[string]int, len(g.Players)),
		Selection:   g.Selects[viewer].Clone(),
		Trushes:     g.Fields[Trushes].Clone(),
		Excluded:    g.Fields[Excluded].Clone(),
		Effect:      g.Effect,
		FinishOrder: append([]string(nil), g.FinishOrder...),
	}
	for _, id := range g.Players {
		v.HandCounts[id] = len(g.Fields[Hand(id)])
	}
	if top, ok := g.Top(); ok {
		v.Top = top.Clone()
	}
	if p, ok := g.ActivePrompt(); ok {
		v.Prompt = &p
	}
	return v
}

package api

import (
	"foodhub/internal/menu"
	"foodhub/internal/stall"
	"foodhub/internal/state"
)

// BuildBoard converts doc into board rows in fixed stall order.
func BuildBoard(doc state.Document) Board {
	all := stall.All()
	board := Board{Stalls: make([]StallView, 0, len(all))}
	for _, s := range all {
		view := FromQueueState(s, doc.Get(s))
		board.TotalWaiting += view.WaitingCount
		board.Stalls = append(board.Stalls, view)
	}
	return board
}

// FromQueueState converts one stall's queue state.
func FromQueueState(s stall.Stall, q state.QueueState) StallView {
	waiting := make([]string, len(q.Queue))
	for i, tok := range q.Queue {
		waiting[i] = tok.String()
	}
	return StallView{
		Key:          s.Key(),
		Name:         s.Name(),
		Code:         s.Code(),
		NowServing:   NowServingLabel(q.Current),
		Current:      q.Current.String(),
		Waiting:      waiting,
		WaitingCount: len(waiting),
		Next:         q.Next,
	}
}

// NowServingLabel renders the current token, or NoneLabel when idle.
func NowServingLabel(tok state.Token) string {
	if tok.IsZero() {
		return NoneLabel
	}
	return tok.String()
}

// FromMenuCard converts a menu card.
func FromMenuCard(card menu.Card) MenuResponse {
	items := card.Items
	if items == nil {
		items = []menu.Item{}
	}
	return MenuResponse{
		Stall:   card.Stall.Key(),
		Name:    card.Stall.Name(),
		Tagline: card.Tagline,
		Items:   items,
	}
}

// Stalls lists every known stall in display order.
func Stalls() []StallInfo {
	all := stall.All()
	out := make([]StallInfo, len(all))
	for i, s := range all {
		out[i] = StallInfo{Key: s.Key(), Code: s.Code(), Name: s.Name()}
	}
	return out
}

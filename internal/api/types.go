package api

import "foodhub/internal/menu"

// NoneLabel is shown when a stall is not serving anyone.
const NoneLabel = "—"

// StallView describes one stall on the board.
type StallView struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	NowServing   string   `json:"nowServing"`
	Current      string   `json:"current,omitempty"`
	Waiting      []string `json:"waiting"`
	WaitingCount int      `json:"waitingCount"`
	Next         int      `json:"next"`
}

// Board is the full staff view.
type Board struct {
	Stalls       []StallView `json:"stalls"`
	TotalWaiting int         `json:"totalWaiting"`
}

// TokenResponse confirms an issued token.
type TokenResponse struct {
	Stall          string `json:"stall"`
	StallName      string `json:"stallName"`
	Token          string `json:"token"`
	DisplaySeconds int    `json:"displaySeconds"`
}

// StallResponse wraps a single stall after a staff action.
type StallResponse struct {
	Stall StallView `json:"stall"`
}

// MenuResponse is a stall's menu card.
type MenuResponse struct {
	Stall   string      `json:"stall"`
	Name    string      `json:"name"`
	Tagline string      `json:"tagline"`
	Items   []menu.Item `json:"items"`
}

// StallInfo lists a known stall.
type StallInfo struct {
	Key  string `json:"key"`
	Code string `json:"code"`
	Name string `json:"name"`
}

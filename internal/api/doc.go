// Package api defines wire-format types and converters for the HTTP API and
// CLI output. It translates the persisted token document into board views
// that the staff screen and `foodhub board` render without touching the
// state package directly.
//
// # Key Types
//
// Board: every stall in display order with its now-serving token and the
// tokens still waiting.
//
// StallView: one stall's row on the board.
//
// TokenResponse: the confirmation shown to a customer after issuing a token,
// including how long it should stay on screen.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. An empty
// now-serving slot is rendered as "—" in NowServing and omitted from Current.
package api

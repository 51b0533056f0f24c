package api

import (
	"context"
	"errors"

	"foodhub/internal/menu"
	"foodhub/internal/stall"
	"foodhub/internal/state"
)

// ErrUnknownStall is returned by Service when a stall key does not resolve.
var ErrUnknownStall = errors.New("unknown stall")

// TokenQueue abstracts the queue operations needed by the API.
type TokenQueue interface {
	IssueToken(ctx context.Context, s stall.Stall) (state.Token, bool, error)
	ServeNextState(ctx context.Context, s stall.Stall) (state.QueueState, error)
	ClearQueueState(ctx context.Context, s stall.Stall) (state.QueueState, error)
	Snapshot(ctx context.Context) (state.Document, error)
}

// Service exposes queue operations returning API DTOs.
type Service struct {
	queue          TokenQueue
	catalog        *menu.Catalog
	displaySeconds int
}

// NewService constructs a Service. catalog may be nil when menus are not served.
func NewService(queue TokenQueue, catalog *menu.Catalog, displaySeconds int) *Service {
	if queue == nil {
		return nil
	}
	return &Service{queue: queue, catalog: catalog, displaySeconds: displaySeconds}
}

// Board returns the current board.
func (s *Service) Board(ctx context.Context) (Board, error) {
	doc, err := s.queue.Snapshot(ctx)
	if err != nil {
		return Board{}, err
	}
	return BuildBoard(doc), nil
}

// Issue issues a token for the stall named by key.
func (s *Service) Issue(ctx context.Context, key string) (TokenResponse, error) {
	st, err := resolve(key)
	if err != nil {
		return TokenResponse{}, err
	}
	tok, ok, err := s.queue.IssueToken(ctx, st)
	if err != nil {
		return TokenResponse{}, err
	}
	if !ok {
		return TokenResponse{}, ErrUnknownStall
	}
	return TokenResponse{
		Stall:          st.Key(),
		StallName:      st.Name(),
		Token:          tok.String(),
		DisplaySeconds: s.displaySeconds,
	}, nil
}

// Serve serves the next token and returns the stall's row as left by that
// operation.
func (s *Service) Serve(ctx context.Context, key string) (StallView, error) {
	st, err := resolve(key)
	if err != nil {
		return StallView{}, err
	}
	q, err := s.queue.ServeNextState(ctx, st)
	if err != nil {
		return StallView{}, err
	}
	return FromQueueState(st, q), nil
}

// Clear empties the stall's queue and returns its row as left by that
// operation.
func (s *Service) Clear(ctx context.Context, key string) (StallView, error) {
	st, err := resolve(key)
	if err != nil {
		return StallView{}, err
	}
	q, err := s.queue.ClearQueueState(ctx, st)
	if err != nil {
		return StallView{}, err
	}
	return FromQueueState(st, q), nil
}

// Menu returns the stall's menu card.
func (s *Service) Menu(key string) (MenuResponse, error) {
	st, err := resolve(key)
	if err != nil {
		return MenuResponse{}, err
	}
	card, ok := s.catalog.For(st)
	if !ok {
		return MenuResponse{}, ErrUnknownStall
	}
	return FromMenuCard(card), nil
}

func resolve(key string) (stall.Stall, error) {
	st := stall.Parse(key)
	if !st.Valid() {
		return stall.Unknown, ErrUnknownStall
	}
	return st, nil
}

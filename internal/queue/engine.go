package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"foodhub/internal/logging"
	"foodhub/internal/metrics"
	"foodhub/internal/stall"
	"foodhub/internal/state"
)

const (
	opIssue = "issue"
	opServe = "serve"
	opClear = "clear"
)

// Engine applies queue operations to the persisted document.
type Engine struct {
	store    *state.Store
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New constructs an Engine. A nil logger or recorder disables that concern.
func New(store *state.Store, logger *slog.Logger, recorder metrics.Recorder) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Engine{
		store:    store,
		logger:   logging.NewComponentLogger(logger, "queue"),
		recorder: recorder,
	}
}

// IssueToken appends the stall's next token to its queue and returns it.
// The boolean is false, with no storage access, when s is not a known stall.
func (e *Engine) IssueToken(ctx context.Context, s stall.Stall) (state.Token, bool, error) {
	if !s.Valid() {
		e.unknown(opIssue, s.String())
		return state.NoToken, false, nil
	}

	var issued state.Token
	doc, err := e.mutate(ctx, opIssue, s, func(q *state.QueueState) error {
		issued = FormatToken(s.Code(), q.Next)
		q.Queue = append(q.Queue, issued)
		q.Next++
		return nil
	})
	if err != nil {
		return state.NoToken, false, err
	}

	logging.WithContext(ctx, e.logger).Info("token issued",
		logging.String(logging.FieldStall, s.Key()),
		logging.String(logging.FieldToken, issued.String()),
		logging.Int("waiting", doc[s].Waiting()),
	)
	return issued, true, nil
}

// ServeNext moves the head of the stall's queue into current and returns
// it. An empty queue clears current and returns NoToken. Unknown stalls are
// a no-op.
func (e *Engine) ServeNext(ctx context.Context, s stall.Stall) (state.Token, error) {
	q, err := e.ServeNextState(ctx, s)
	if err != nil {
		return state.NoToken, err
	}
	return q.Current, nil
}

// ServeNextState is ServeNext returning the stall's queue state as written
// by the same update. Unknown stalls yield the zero QueueState.
func (e *Engine) ServeNextState(ctx context.Context, s stall.Stall) (state.QueueState, error) {
	if !s.Valid() {
		e.unknown(opServe, s.String())
		return state.QueueState{}, nil
	}

	doc, err := e.mutate(ctx, opServe, s, func(q *state.QueueState) error {
		if len(q.Queue) == 0 {
			if q.Current.IsZero() {
				return state.ErrNoChange
			}
			q.Current = state.NoToken
			return nil
		}
		q.Current = q.Queue[0]
		q.Queue = q.Queue[1:]
		return nil
	})
	if err != nil {
		return state.QueueState{}, err
	}

	q := doc.Get(s)
	logger := logging.WithContext(ctx, e.logger)
	if q.Current.IsZero() {
		logger.Info("serve on empty queue", logging.String(logging.FieldStall, s.Key()))
	} else {
		logger.Info("now serving",
			logging.String(logging.FieldStall, s.Key()),
			logging.String(logging.FieldToken, q.Current.String()),
			logging.Int("waiting", q.Waiting()),
		)
	}
	return q, nil
}

// ClearQueue empties the stall's queue and clears current. The counter is
// left alone so numbering continues after a clear. Unknown stalls are a no-op.
func (e *Engine) ClearQueue(ctx context.Context, s stall.Stall) error {
	_, err := e.ClearQueueState(ctx, s)
	return err
}

// ClearQueueState is ClearQueue returning the stall's queue state as written
// by the same update. Unknown stalls yield the zero QueueState.
func (e *Engine) ClearQueueState(ctx context.Context, s stall.Stall) (state.QueueState, error) {
	if !s.Valid() {
		e.unknown(opClear, s.String())
		return state.QueueState{}, nil
	}

	doc, err := e.mutate(ctx, opClear, s, func(q *state.QueueState) error {
		if len(q.Queue) == 0 && q.Current.IsZero() {
			return state.ErrNoChange
		}
		q.Queue = []state.Token{}
		q.Current = state.NoToken
		return nil
	})
	if err != nil {
		return state.QueueState{}, err
	}

	q := doc.Get(s)
	logging.WithContext(ctx, e.logger).Info("queue cleared",
		logging.String(logging.FieldStall, s.Key()),
		logging.Int("next", q.Next),
	)
	return q, nil
}

// Snapshot returns a copy of the whole document for rendering.
func (e *Engine) Snapshot(ctx context.Context) (state.Document, error) {
	doc, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// IssueTokenFor is IssueToken keyed by a raw stall key.
func (e *Engine) IssueTokenFor(ctx context.Context, key string) (state.Token, bool, error) {
	s := stall.Parse(key)
	if !s.Valid() {
		e.unknown(opIssue, key)
		return state.NoToken, false, nil
	}
	return e.IssueToken(ctx, s)
}

// ServeNextFor is ServeNext keyed by a raw stall key.
func (e *Engine) ServeNextFor(ctx context.Context, key string) (state.Token, error) {
	s := stall.Parse(key)
	if !s.Valid() {
		e.unknown(opServe, key)
		return state.NoToken, nil
	}
	return e.ServeNext(ctx, s)
}

// ClearQueueFor is ClearQueue keyed by a raw stall key.
func (e *Engine) ClearQueueFor(ctx context.Context, key string) error {
	s := stall.Parse(key)
	if !s.Valid() {
		e.unknown(opClear, key)
		return nil
	}
	return e.ClearQueue(ctx, s)
}

// mutate applies fn to the stall's queue inside one store update. fn may
// return state.ErrNoChange to leave storage untouched.
func (e *Engine) mutate(ctx context.Context, op string, s stall.Stall, fn func(*state.QueueState) error) (state.Document, error) {
	started := time.Now()
	doc, err := e.store.Update(ctx, func(doc state.Document) error {
		q := doc.Get(s)
		if err := fn(&q); err != nil {
			return err
		}
		doc[s] = q
		return nil
	})
	e.recorder.ObserveOperationDuration(op, time.Since(started))
	if err != nil {
		e.recorder.IncOperation(op, s.Key(), metrics.ResultError)
		logging.WithContext(ctx, e.logger).Error("queue operation failed",
			logging.String("op", op),
			logging.String(logging.FieldStall, s.Key()),
			logging.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", op, s.Key(), err)
	}
	e.recorder.IncOperation(op, s.Key(), metrics.ResultSuccess)
	e.recorder.SetQueueDepth(s.Key(), doc[s].Waiting())
	return doc, nil
}

func (e *Engine) unknown(op, key string) {
	e.recorder.IncOperation(op, "unknown", metrics.ResultUnknownStall)
	e.logger.Debug("ignoring unknown stall", logging.String("op", op), logging.String(logging.FieldStall, key))
}

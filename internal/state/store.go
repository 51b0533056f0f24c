package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/logging"
)

// DefaultKey is the storage key the document lives under.
const DefaultKey = "mvsr_token_state"

const corruptSuffix = ".corrupt"

// Store loads and saves the Document through a Backend.
type Store struct {
	backend     Backend
	key         string
	logger      *slog.Logger
	lockTimeout time.Duration

	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLockTimeout bounds how long Update waits for a backend lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.lockTimeout = timeout
	}
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "state")
	return s
}

// Open builds the backend selected by cfg and wraps it in a Store.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	var (
		backend Backend
		err     error
	)
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = NewMemoryBackend()
	case config.BackendFile:
		backend, err = NewFileBackend(cfg.Paths.StateDir)
	case config.BackendSQLite:
		backend, err = OpenSQLite(cfg.SQLitePath())
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Storage.Backend, err)
	}
	return NewStore(backend,
		WithKey(cfg.Storage.Key),
		WithLogger(logger),
		WithLockTimeout(cfg.LockTimeout()),
	), nil
}

// Key returns the storage key.
func (s *Store) Key() string { return s.key }

// Load returns the persisted document. An absent or corrupt payload is
// replaced by the default document, which is persisted before returning.
func (s *Store) Load(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockBackend(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(unlock)

	return s.load(ctx)
}

// Save overwrites the persisted document with doc.
func (s *Store) Save(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockBackend(ctx)
	if err != nil {
		return err
	}
	defer s.release(unlock)

	return s.save(ctx, doc)
}

// Update runs fn against the current document and saves the result. The
// whole cycle is exclusive with respect to other Update, Load, and Save
// calls on this Store and, when the backend implements Locker, with other
// processes using the same storage. If fn returns ErrNoChange nothing is
// written and the unmodified document is returned without error. Any other
// error aborts the update.
func (s *Store) Update(ctx context.Context, fn func(Document) error) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockBackend(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(unlock)

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		if errors.Is(err, ErrNoChange) {
			return doc, nil
		}
		return nil, err
	}
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) load(ctx context.Context) (Document, error) {
	payload, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok || len(payload) == 0 {
		s.logger.Info("initializing token state", logging.String("key", s.key))
		return s.reset(ctx)
	}

	doc, repaired, err := decodeDocument(payload)
	if err != nil {
		s.logger.Warn("token state corrupt, resetting",
			logging.String("key", s.key),
			logging.String("backup_key", s.key+corruptSuffix),
			logging.Error(err),
		)
		if backupErr := s.backup(ctx, payload); backupErr != nil {
			return nil, fmt.Errorf("back up corrupt state: %w", backupErr)
		}
		return s.reset(ctx)
	}
	if repaired {
		s.logger.Debug("token state repaired in memory", logging.String("key", s.key))
	}
	return doc, nil
}

// backup keeps the rejected payload under <key>.corrupt. Backends that can
// copy in place do so, leaving the original bytes untouched on disk.
func (s *Store) backup(ctx context.Context, payload []byte) error {
	if copier, ok := s.backend.(Copier); ok {
		return copier.Copy(ctx, s.key, s.key+corruptSuffix)
	}
	return s.backend.Set(ctx, s.key+corruptSuffix, payload)
}

func (s *Store) reset(ctx context.Context) (Document, error) {
	doc := NewDocument()
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.key, payload); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *Store) lockBackend(ctx context.Context) (func() error, error) {
	ctx = ensureContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locker, ok := s.backend.(Locker)
	if !ok {
		return nil, nil
	}
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	return locker.Lock(ctx)
}

func (s *Store) release(unlock func() error) {
	if unlock == nil {
		return
	}
	if err := unlock(); err != nil {
		s.logger.Warn("release storage lock failed", logging.Error(err))
	}
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
)

// ErrNoSession is returned when no snapshot is stored for a session id
var ErrNoSession = errors.New("session not found")

// Store keeps one snapshot per session id
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a store over c. Snapshots expire after ttl.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// New starts a session with the unconstrained selection and returns its id
func (s *Store) New(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, id, model.Selection{}); err != nil {
		return "", err
	}
	return id, nil
}

// Put saves the selection for a session, replacing any previous snapshot
func (s *Store) Put(ctx context.Context, id string, sel model.Selection) error {
	data, err := json.Marshal(Save(sel))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.cache.Set(cache.SessionKey(id), data, s.ttl); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	logger.FromContext(ctx).V(1).Info("saved selection", logger.SessionKey, id)
	return nil
}

// Get restores the selection for a session. A missing session yields the
// unconstrained selection together with ErrNoSession.
func (s *Store) Get(ctx context.Context, id string) (model.Selection, error) {
	data, ok := s.cache.Get(cache.SessionKey(id))
	if !ok {
		return model.Selection{}, fmt.Errorf("%w: %s", ErrNoSession, id)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.FromContext(ctx).Error(err, "corrupt snapshot, using empty selection", logger.SessionKey, id)
		return model.Selection{}, nil
	}
	return Restore(snap), nil
}

// Load is Get with a missing session treated as a fresh one
func (s *Store) Load(ctx context.Context, id string) model.Selection {
	sel, _ := s.Get(ctx, id)
	return sel
}

// Delete removes a session's snapshot
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(cache.SessionKey(id)); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoSession, id)
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

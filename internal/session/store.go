// Package session holds the authenticated user's identity and bearer token,
// persisted under the userSession storage key and shared with other running
// clients through storage change notifications.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flicky/go-storefront-client/internal/event"
	"github.com/flicky/go-storefront-client/internal/model"
	"github.com/flicky/go-storefront-client/internal/storage"
)

type Store struct {
	storage storage.Store
	bus     *event.Bus
	log     *slog.Logger

	mu      sync.Mutex
	current *model.UserSession
}

func NewStore(st storage.Store, bus *event.Bus, log *slog.Logger) *Store {
	return &Store{storage: st, bus: bus, log: log}
}

// Restore loads the persisted session. An absent or malformed value means
// logged out; it is never an error.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.read(ctx)
}

// Reload re-reads the persisted session and announces the change. Called
// when another process rewrote the session key.
func (s *Store) Reload(ctx context.Context) {
	s.Restore(ctx)
	s.bus.Publish(event.TopicSessionChanged)
}

func (s *Store) Login(ctx context.Context, session model.UserSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeySession, string(data)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()

	s.bus.Publish(event.TopicSessionChanged)
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.bus.Publish(event.TopicSessionChanged)
	return nil
}

// Current returns a copy of the active session, or nil when logged out.
func (s *Store) Current() *model.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Authenticated()
}

// Token returns the bearer credential, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *Store) read(ctx context.Context) *model.UserSession {
	raw, ok, err := s.storage.Get(ctx, storage.KeySession)
	if err != nil {
		s.log.Warn("read persisted session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var session model.UserSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.log.Warn("discard malformed persisted session", "error", err)
		return nil
	}
	return &session
}

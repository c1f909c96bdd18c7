package agentcfg

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("agent config not found")
	ErrExists   = errors.New("agent config already exists")
)

// Store exposes widget-config persistence to HTTP handlers and the chat
// service.
type Store interface {
	List(ctx context.Context) ([]Config, error)
	Get(ctx context.Context, businessID string) (Config, error)
	Create(ctx context.Context, cfg Config) (Config, error)
	Update(ctx context.Context, businessID string, upd Update) (Config, error)
	Delete(ctx context.Context, businessID string) error
	Ping(ctx context.Context) error
}

// MemoryStore implements Store with an in-memory map, used in tests and when
// no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]Config
	created map[string]time.Time
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied configs.
func NewMemoryStore(items ...Config) *MemoryStore {
	s := &MemoryStore{
		items:   make(map[string]Config, len(items)),
		created: make(map[string]time.Time, len(items)),
	}
	for _, item := range items {
		s.items[item.BusinessID] = item
		s.created[item.BusinessID] = time.Now().UTC()
	}
	return s
}

// List returns active configs, newest first.
func (s *MemoryStore) List(_ context.Context) ([]Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Config, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.created[out[i].BusinessID].After(s.created[out[j].BusinessID])
	})
	return out, nil
}

// Get looks up a config by business identifier.
func (s *MemoryStore) Get(_ context.Context, businessID string) (Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.items[businessID]
	if !ok {
		return Config{}, ErrNotFound
	}
	return cfg, nil
}

// Create stores a new config, refusing duplicates.
func (s *MemoryStore) Create(_ context.Context, cfg Config) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[cfg.BusinessID]; ok {
		return Config{}, ErrExists
	}
	s.items[cfg.BusinessID] = cfg
	s.created[cfg.BusinessID] = time.Now().UTC()
	return cfg, nil
}

// Update overlays the supplied fields onto an existing config.
func (s *MemoryStore) Update(_ context.Context, businessID string, upd Update) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.items[businessID]
	if !ok {
		return Config{}, ErrNotFound
	}
	upd.Apply(&cfg)
	s.items[businessID] = cfg
	return cfg, nil
}

// Delete removes a config.
func (s *MemoryStore) Delete(_ context.Context, businessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[businessID]; !ok {
		return ErrNotFound
	}
	delete(s.items, businessID)
	delete(s.created, businessID)
	return nil
}

// Ping always succeeds; there is no backing connection.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

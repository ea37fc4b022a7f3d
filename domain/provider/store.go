package provider

import (
	"log/slog"
	"sync"

	"github.com/sho-platform/sho-core/pkg/logger"
)

// Store holds per-organization configuration overrides. Reads vastly
// outnumber writes, so a single RWMutex over the map is enough.
type Store struct {
	mu      sync.RWMutex
	configs map[string]Config
	log     *slog.Logger
}

func NewStore(log *slog.Logger) *Store {
	return &Store{
		configs: make(map[string]Config),
		log:     log.With(logger.Scope("provider.store")),
	}
}

// Get returns the override for an organization, if one is stored.
func (s *Store) Get(orgID string) (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[orgID]
	return cfg, ok
}

// Set stores or replaces the override for an organization.
func (s *Store) Set(orgID string, cfg Config) {
	s.mu.Lock()
	s.configs[orgID] = cfg
	s.mu.Unlock()
	s.log.Debug("provider config stored", "orgId", orgID, "kind", cfg.Kind)
}

// Clear removes an organization's override. Clearing an organization that
// has no override is a no-op.
func (s *Store) Clear(orgID string) {
	s.mu.Lock()
	delete(s.configs, orgID)
	s.mu.Unlock()
}

// ClearAll removes every stored override.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.configs = make(map[string]Config)
	s.mu.Unlock()
}

// Len reports the number of stored overrides.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.configs)
}

package config

import (
	"sync"

	"github.com/diogo/geminiwin95/internal/models"
)

// Store is a goroutine-safe view of the configuration that can be
// reloaded while a chat is open
type Store struct {
	mu       sync.RWMutex
	cfg      Config
	onReload []func(Config)
	onError  []func(error)
}

// NewStore creates a store holding cfg
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// LoadStore loads the configuration from disk into a new store
func LoadStore() (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewStore(cfg), nil
}

// Config returns a copy of the current configuration
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	cfg.SavedGems = append([]models.SavedGem(nil), s.cfg.SavedGems...)
	return cfg
}

// APIKey returns the key in effect
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ResolvedAPIKey()
}

// Model returns the text model in effect
func (s *Store) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ResolvedModel()
}

// Gems returns a copy of the saved gems
func (s *Store) Gems() []models.SavedGem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SavedGem(nil), s.cfg.SavedGems...)
}

// Set replaces the configuration and notifies reload listeners
func (s *Store) Set(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	listeners := append([]func(Config){}, s.onReload...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// Update applies fn to the configuration and saves it to disk
func (s *Store) Update(fn func(*Config) error) error {
	cfg := s.Config()
	if err := fn(&cfg); err != nil {
		return err
	}
	if err := SaveConfig(cfg); err != nil {
		return err
	}
	s.Set(cfg)
	return nil
}

// Reload reads the configuration from disk
func (s *Store) Reload() error {
	cfg, err := LoadConfig()
	if err != nil {
		s.mu.RLock()
		listeners := append([]func(error){}, s.onError...)
		s.mu.RUnlock()
		for _, fn := range listeners {
			fn(err)
		}
		return err
	}
	s.Set(cfg)
	return nil
}

// OnReload registers fn to run after every Set or Reload
func (s *Store) OnReload(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// OnReloadError registers fn to run when Reload fails; the previous
// configuration stays in effect
func (s *Store) OnReloadError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, fn)
}

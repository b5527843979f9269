package searches

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store keeps the user's recent free-text search terms. It replaces the
// old pattern of a shared slice mutated from multiple call sites: every
// update goes through Add, which dedupes by term and caps the list.
type Store struct {
	mu     sync.RWMutex
	terms  []string
	cap    int
	path   string
	logger *logrus.Logger
}

// NewStore creates a store capped at cap terms, persisted at path. An
// unreadable file starts the store empty; persistence failures are logged
// and never fail a search.
func NewStore(path string, cap int, logger *logrus.Logger) *Store {
	s := &Store{
		cap:    cap,
		path:   path,
		logger: logger,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf("Could not load recent searches: %v", err)
		}
		return
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		s.logger.Errorf("Failed to parse recent searches: %v", err)
		return
	}

	if len(terms) > s.cap {
		terms = terms[:s.cap]
	}
	s.terms = terms
}

func (s *Store) save() error {
	s.mu.RLock()
	data, err := json.Marshal(s.terms)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal recent searches: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recent searches: %v", err)
	}
	return nil
}

// Add records a search term at the front of the list. A term already
// present moves to the front instead of duplicating; the list never grows
// past the cap.
func (s *Store) Add(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	s.mu.Lock()
	filtered := make([]string, 0, len(s.terms)+1)
	filtered = append(filtered, term)
	for _, existing := range s.terms {
		if strings.EqualFold(existing, term) {
			continue
		}
		filtered = append(filtered, existing)
	}
	if len(filtered) > s.cap {
		filtered = filtered[:s.cap]
	}
	s.terms = filtered
	s.mu.Unlock()

	if err := s.save(); err != nil {
		s.logger.WithError(err).Warn("Failed to persist recent searches")
	}
}

// Terms returns the recent terms, most recent first.
func (s *Store) Terms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.terms...)
}

package poi

import (
	"sync"

	"rentradar/server/internal/models"
)

// Store holds the POIs currently displayed per property. Searching a term
// again for a property replaces that term's previous results; results for
// other terms on the same property are untouched, so categories accumulate
// side by side.
type Store struct {
	mu     sync.RWMutex
	byProp map[int64]map[string][]models.POI
}

func NewStore() *Store {
	return &Store{byProp: make(map[int64]map[string][]models.POI)}
}

// Replace installs pois as the result set for (propertyID, term),
// discarding whatever that term held before.
func (s *Store) Replace(propertyID int64, term string, pois []models.POI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms, ok := s.byProp[propertyID]
	if !ok {
		terms = make(map[string][]models.POI)
		s.byProp[propertyID] = terms
	}
	terms[term] = pois
}

// Get returns the current result set for (propertyID, term).
func (s *Store) Get(propertyID int64, term string) []models.POI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byProp[propertyID][term]
}

// Terms returns the terms that currently have results for the property.
func (s *Store) Terms(propertyID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := make([]string, 0, len(s.byProp[propertyID]))
	for term := range s.byProp[propertyID] {
		terms = append(terms, term)
	}
	return terms
}

// All returns every displayed POI for the property across all terms.
func (s *Store) All(propertyID int64) []models.POI {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.POI
	for _, pois := range s.byProp[propertyID] {
		all = append(all, pois...)
	}
	return all
}

// ClearTerm removes one term's results across every property.
func (s *Store) ClearTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, terms := range s.byProp {
		delete(terms, term)
	}
}

// Clear drops everything held for the property.
func (s *Store) Clear(propertyID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byProp, propertyID)
}

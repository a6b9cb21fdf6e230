package alert

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used when no database is configured and
// in tests. It implements the same conditional-update semantics as the
// SQLite store.
type MemoryStore struct {
	mu    sync.Mutex
	rules map[string]*Rule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[string]*Rule)}
}

func (s *MemoryStore) Create(rule *Rule) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rule
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.Symbol = strings.ToUpper(r.Symbol)
	r.Sent = false
	if _, exists := s.rules[r.ID]; exists {
		return "", fmt.Errorf("duplicate alert id %s", r.ID)
	}
	s.rules[r.ID] = &r
	rule.ID = r.ID
	return r.ID, nil
}

func (s *MemoryStore) ListPending() ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Rule
	for _, r := range s.rules {
		if !r.Sent {
			out = append(out, *r)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryStore) ListByOwner(owner string) ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Rule
	for _, r := range s.rules {
		if r.Owner == owner {
			out = append(out, *r)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryStore) MarkSentIfPending(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok || r.Sent {
		return false, nil
	}
	r.Sent = true
	return true, nil
}

func (s *MemoryStore) DeleteIfOwner(id, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok || r.Owner != owner {
		return false, nil
	}
	delete(s.rules, id)
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortByCreation(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}

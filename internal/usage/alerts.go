package usage

import (
	"sync"

	"budgetbook/internal/cache"
)

// AlertStore remembers which alerts were already reported. Implementations
// must be safe for concurrent use.
type AlertStore interface {
	Seen(key string) bool
	MarkSeen(key string)
}

// Tracker reports each (subject, state) alert once. The seen-set lives in the
// injected AlertStore so independent trackers never share state.
type Tracker struct {
	store AlertStore
}

func NewTracker(store AlertStore) *Tracker {
	if store == nil {
		store = NewMemoryAlertStore()
	}
	return &Tracker{store: store}
}

// Observe returns true the first time subject is seen in an alerting state.
// Moving from warning to over alerts again; ok and unset never alert.
func (t *Tracker) Observe(subject string, state State) bool {
	if !state.IsAlerting() {
		return false
	}
	key := subject + "#" + string(state)
	if t.store.Seen(key) {
		return false
	}
	t.store.MarkSeen(key)
	return true
}

// BudgetSubject identifies a month's budget category for alert tracking.
func BudgetSubject(month, category string) string {
	return "budget:" + month + "/" + category
}

// MemoryAlertStore keeps seen keys for the life of the process.
type MemoryAlertStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{seen: make(map[string]struct{})}
}

func (s *MemoryAlertStore) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key]
	return ok
}

func (s *MemoryAlertStore) MarkSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key] = struct{}{}
}

// CacheAlertStore forgets seen keys after the cache TTL or once evicted, so a
// long-running worker re-alerts eventually instead of growing without bound.
type CacheAlertStore struct {
	cache cache.Cache[struct{}]
}

func NewCacheAlertStore(c cache.Cache[struct{}]) *CacheAlertStore {
	return &CacheAlertStore{cache: c}
}

func (s *CacheAlertStore) Seen(key string) bool {
	_, ok := s.cache.Get(key)
	return ok
}

func (s *CacheAlertStore) MarkSeen(key string) {
	s.cache.Set(key, struct{}{})
}

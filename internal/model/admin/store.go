package admin

import (
	"sync"

	"github.com/elliotchance/pie/v2"
)

// Store exposes the admin panel data for HTTP handlers.
type Store interface {
	Dataset() Dataset
	SubscriptionsByStatus(status string) []Subscription
	FindPlan(id string) (Plan, bool)
	Settings() Settings
	UpdateSettings(Settings) Settings
}

// MemoryStore implements Store over a seeded Dataset. Nothing is persisted.
type MemoryStore struct {
	mu   sync.RWMutex
	data Dataset
}

// NewMemoryStore returns a MemoryStore preloaded with data.
func NewMemoryStore(data Dataset) *MemoryStore {
	return &MemoryStore{data: data}
}

// Dataset returns a copy of the whole data set.
func (s *MemoryStore) Dataset() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.data
	d.DashboardStats = append([]Stat(nil), s.data.DashboardStats...)
	d.UserStats = append([]Stat(nil), s.data.UserStats...)
	d.SubscriptionStats = append([]Stat(nil), s.data.SubscriptionStats...)
	d.RecentActivity = append([]Activity(nil), s.data.RecentActivity...)
	d.RecentSubscriptions = append([]Subscription(nil), s.data.RecentSubscriptions...)
	d.Plans = append([]Plan(nil), s.data.Plans...)
	return d
}

// SubscriptionsByStatus filters recent subscriptions; an empty status returns all.
func (s *MemoryStore) SubscriptionsByStatus(status string) []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status == "" {
		return append([]Subscription(nil), s.data.RecentSubscriptions...)
	}
	return pie.Filter(s.data.RecentSubscriptions, func(sub Subscription) bool {
		return sub.Status == status
	})
}

// FindPlan looks up a pricing plan by identifier.
func (s *MemoryStore) FindPlan(id string) (Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, plan := range s.data.Plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// Settings returns the current admin toggles.
func (s *MemoryStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

// UpdateSettings replaces the admin toggles and returns the stored value.
func (s *MemoryStore) UpdateSettings(next Settings) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings = next
	return s.data.Settings
}

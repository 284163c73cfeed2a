package account

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation, seeded with DefaultPlans.
type MemoryStore struct {
	plans map[string]Plan
	subs  map[string][]Subscription // userID -> history
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryStore creates an in-memory subscription store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		plans: make(map[string]Plan),
		subs:  make(map[string][]Subscription),
		now:   time.Now,
	}
	for _, p := range DefaultPlans {
		s.plans[p.ID] = p
	}
	return s
}

func (s *MemoryStore) Plans() ([]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].PriceCents < plans[j].PriceCents })
	return plans, nil
}

func (s *MemoryStore) GetPlan(id string) (Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, id)
	}
	return p, nil
}

func (s *MemoryStore) Subscribe(userID, planID string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[planID]
	if !ok {
		return Subscription{}, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}

	now := s.now()
	for _, sub := range s.subs[userID] {
		if sub.Active(now) {
			return Subscription{}, ErrAlreadySubscribed
		}
	}

	sub := Subscription{
		ID:        generateID(),
		UserID:    userID,
		PlanID:    planID,
		StartedAt: now,
		ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
	}
	s.subs[userID] = append(s.subs[userID], sub)
	return sub, nil
}

func (s *MemoryStore) Cancel(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	subs := s.subs[userID]
	for i := range subs {
		if subs[i].Active(now) {
			subs[i].Cancelled = true
			return nil
		}
	}
	return ErrNoActiveSubscription
}

func (s *MemoryStore) ActiveSubscription(userID string) (Subscription, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for _, sub := range s.subs[userID] {
		if sub.Active(now) {
			return sub, true, nil
		}
	}
	return Subscription{}, false, nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}

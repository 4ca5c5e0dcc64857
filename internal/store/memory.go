package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
	"github.com/Nikhil-O1O5/stripe-project/internal/domain/users"
)

// MemoryStore keeps everything in maps behind one mutex. Used by tests and
// handy for local runs without Postgres. Same uniqueness and error
// semantics as GormStore.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*users.User
	subscriptions map[uuid.UUID]*billing.Subscription
	purchases     []*billing.Purchase
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uuid.UUID]*users.User),
		subscriptions: make(map[uuid.UUID]*billing.Subscription),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ClerkID == u.ClerkID {
			log.Printf("User already exists for clerk_id=%s", u.ClerkID)
			*u = *existing
			return nil
		}
		if existing.StripeCustomerID == u.StripeCustomerID {
			return fmt.Errorf("duplicate stripe_customer_id=%s", u.StripeCustomerID)
		}
	}

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) GetUserByClerkID(_ context.Context, clerkID string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ClerkID == clerkID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) GetUserByStripeCustomerID(_ context.Context, customerID string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByCustomerIDLocked(customerID)
	if u == nil {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetSubscriptionByID(_ context.Context, id uuid.UUID) (*billing.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subscriptions[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, ErrSubscriptionNotFound
}

func (s *MemoryStore) GetSubscriptionByStripeID(_ context.Context, stripeSubscriptionID string) (*billing.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.subscriptionByStripeIDLocked(stripeSubscriptionID)
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *MemoryStore) UpsertSubscription(_ context.Context, params UpsertSubscriptionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub := s.subscriptionByStripeIDLocked(params.StripeSubscriptionID); sub != nil {
		sub.Status = params.Status
		sub.PlanInterval = params.PlanInterval
		sub.CurrentPeriodStart = params.CurrentPeriodStart
		sub.CurrentPeriodEnd = params.CurrentPeriodEnd
		sub.CancelAtPeriodEnd = params.CancelAtPeriodEnd
		sub.UpdatedAt = time.Now()
		return nil
	}

	user := s.userByCustomerIDLocked(params.StripeCustomerID)
	if user == nil {
		return fmt.Errorf("customer_id=%s: %w", params.StripeCustomerID, ErrUserNotFound)
	}

	sub := &billing.Subscription{
		ID:                   uuid.New(),
		StripeSubscriptionID: params.StripeSubscriptionID,
		Status:               params.Status,
		PlanInterval:         params.PlanInterval,
		CurrentPeriodStart:   params.CurrentPeriodStart,
		CurrentPeriodEnd:     params.CurrentPeriodEnd,
		CancelAtPeriodEnd:    params.CancelAtPeriodEnd,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	s.subscriptions[sub.ID] = sub

	id := sub.ID
	user.CurrentSubscriptionID = &id
	return nil
}

func (s *MemoryStore) CancelSubscription(_ context.Context, stripeSubscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.subscriptionByStripeIDLocked(stripeSubscriptionID)
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	var owner *users.User
	for _, u := range s.users {
		if u.CurrentSubscriptionID != nil && *u.CurrentSubscriptionID == sub.ID {
			owner = u
			break
		}
	}
	if owner == nil {
		return fmt.Errorf("subscription %s has no owner: %w", stripeSubscriptionID, ErrInvalidState)
	}

	owner.CurrentSubscriptionID = nil
	delete(s.subscriptions, sub.ID)
	return nil
}

func (s *MemoryStore) RecordPurchase(_ context.Context, p *billing.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return fmt.Errorf("user_id=%s: %w", p.UserID, ErrUserNotFound)
	}
	for _, existing := range s.purchases {
		if existing.StripeCheckoutID == p.StripeCheckoutID {
			log.Printf("Purchase already recorded for checkout_id=%s", p.StripeCheckoutID)
			return nil
		}
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	s.purchases = append(s.purchases, &cp)
	return nil
}

func (s *MemoryStore) FindPurchase(_ context.Context, userID uuid.UUID, courseID string) (*billing.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPurchaseNotFound
}

// SubscriptionCount reports rows in the subscription table; used by tests
// asserting idempotence.
func (s *MemoryStore) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions)
}

// PurchaseCount reports recorded purchase rows.
func (s *MemoryStore) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}

func (s *MemoryStore) userByCustomerIDLocked(customerID string) *users.User {
	for _, u := range s.users {
		if u.StripeCustomerID == customerID {
			return u
		}
	}
	return nil
}

func (s *MemoryStore) subscriptionByStripeIDLocked(stripeSubscriptionID string) *billing.Subscription {
	for _, sub := range s.subscriptions {
		if sub.StripeSubscriptionID == stripeSubscriptionID {
			return sub
		}
	}
	return nil
}

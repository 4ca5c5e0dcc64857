package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
	"github.com/Nikhil-O1O5/stripe-project/internal/domain/users"
)

// GormStore is the production Store backed by Postgres. Requires
// gorm.Config{TranslateError: true} so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u *users.User) error {
	var existing users.User
	err := s.db.WithContext(ctx).Where("clerk_id = ?", u.ClerkID).First(&existing).Error
	if err == nil {
		log.Printf("User already exists for clerk_id=%s", u.ClerkID)
		*u = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		// Lost a race against a concurrent delivery of the same event.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if ferr := s.db.WithContext(ctx).Where("clerk_id = ?", u.ClerkID).First(u).Error; ferr == nil {
				return nil
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var u users.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (s *GormStore) GetUserByClerkID(ctx context.Context, clerkID string) (*users.User, error) {
	var u users.User
	if err := s.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&u).Error; err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (s *GormStore) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*users.User, error) {
	var u users.User
	if err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&u).Error; err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (s *GormStore) GetSubscriptionByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	var sub billing.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, mapNotFound(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

func (s *GormStore) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*billing.Subscription, error) {
	var sub billing.Subscription
	if err := s.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return nil, mapNotFound(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

func (s *GormStore) UpsertSubscription(ctx context.Context, params UpsertSubscriptionParams) error {
	updates := map[string]interface{}{
		"status":               params.Status,
		"plan_interval":        params.PlanInterval,
		"current_period_start": params.CurrentPeriodStart,
		"current_period_end":   params.CurrentPeriodEnd,
		"cancel_at_period_end": params.CancelAtPeriodEnd,
	}

	// Full replace in a single UPDATE keyed by the provider id. This is
	// the whole idempotence story: redelivery and out-of-order snapshots
	// both land here, last write wins by arrival order.
	res := s.db.WithContext(ctx).
		Model(&billing.Subscription{}).
		Where("stripe_subscription_id = ?", params.StripeSubscriptionID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Create path: the subscription must attach to the user carrying the
	// provider customer id. Missing user means the account-created event
	// has not landed yet; surface it so the provider redelivers.
	var user users.User
	if err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", params.StripeCustomerID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("customer_id=%s: %w", params.StripeCustomerID, ErrUserNotFound)
		}
		return err
	}

	sub := billing.Subscription{
		ID:                   uuid.New(),
		StripeSubscriptionID: params.StripeSubscriptionID,
		Status:               params.Status,
		PlanInterval:         params.PlanInterval,
		CurrentPeriodStart:   params.CurrentPeriodStart,
		CurrentPeriodEnd:     params.CurrentPeriodEnd,
		CancelAtPeriodEnd:    params.CancelAtPeriodEnd,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		// A concurrent delivery created the row first; fall back to the
		// replace path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.db.WithContext(ctx).
				Model(&billing.Subscription{}).
				Where("stripe_subscription_id = ?", params.StripeSubscriptionID).
				Updates(updates).Error
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	// Second atomic step. A crash between the insert above and this
	// pointer update leaves an unlinked subscription row until the next
	// redelivery repairs it; accepted window.
	return s.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", user.ID).
		Update("current_subscription_id", sub.ID).Error
}

func (s *GormStore) CancelSubscription(ctx context.Context, stripeSubscriptionID string) error {
	var sub billing.Subscription
	if err := s.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return mapNotFound(err, ErrSubscriptionNotFound)
	}

	var owner users.User
	if err := s.db.WithContext(ctx).Where("current_subscription_id = ?", sub.ID).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("subscription %s has no owner: %w", stripeSubscriptionID, ErrInvalidState)
		}
		return err
	}

	if err := s.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", owner.ID).
		Update("current_subscription_id", nil).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&billing.Subscription{}, "id = ?", sub.ID).Error
}

func (s *GormStore) RecordPurchase(ctx context.Context, p *billing.Purchase) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", p.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("user_id=%s: %w", p.UserID, ErrUserNotFound)
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		// Same checkout delivered twice: already recorded, nothing to do.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Purchase already recorded for checkout_id=%s", p.StripeCheckoutID)
			return nil
		}
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	return nil
}

func (s *GormStore) FindPurchase(ctx context.Context, userID uuid.UUID, courseID string) (*billing.Purchase, error) {
	var p billing.Purchase
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at ASC").
		First(&p).Error
	if err != nil {
		return nil, mapNotFound(err, ErrPurchaseNotFound)
	}
	return &p, nil
}

func mapNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhil-O1O5/stripe-project/internal/domain/billing"
	"github.com/Nikhil-O1O5/stripe-project/internal/domain/users"
)

func seedUser(t *testing.T, s *MemoryStore) *users.User {
	t.Helper()
	u := &users.User{
		Name:             "Test User",
		Email:            "test@example.com",
		ClerkID:          "ext_1",
		StripeCustomerID: "cus_1",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func activeParams(subID string) UpsertSubscriptionParams {
	return UpsertSubscriptionParams{
		StripeSubscriptionID: subID,
		StripeCustomerID:     "cus_1",
		Status:               "active",
		PlanInterval:         billing.IntervalMonth,
		CurrentPeriodStart:   time.Unix(1700000000, 0),
		CurrentPeriodEnd:     time.Unix(1702592000, 0),
		CancelAtPeriodEnd:    false,
	}
}

func TestCreateUser_IdempotentByClerkID(t *testing.T) {
	s := NewMemoryStore()
	first := seedUser(t, s)

	dup := &users.User{
		Name:             "Someone Else",
		Email:            "other@example.com",
		ClerkID:          "ext_1",
		StripeCustomerID: "cus_other",
	}
	require.NoError(t, s.CreateUser(context.Background(), dup))

	// Redelivery returns the original row untouched.
	assert.Equal(t, first.ID, dup.ID)
	assert.Equal(t, "cus_1", dup.StripeCustomerID)
	assert.Equal(t, "test@example.com", dup.Email)
}

func TestUpsertSubscription_CreatesAndLinksUser(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)

	require.NoError(t, s.UpsertSubscription(context.Background(), activeParams("sub_1")))

	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentSubscriptionID)

	sub, err := s.GetSubscriptionByID(context.Background(), *got.CurrentSubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, billing.IntervalMonth, sub.PlanInterval)
}

func TestUpsertSubscription_UnknownCustomer(t *testing.T) {
	s := NewMemoryStore()

	params := activeParams("sub_1")
	params.StripeCustomerID = "cus_unknown"

	err := s.UpsertSubscription(context.Background(), params)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, s.SubscriptionCount())
}

func TestUpsertSubscription_Idempotent(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)

	params := activeParams("sub_1")
	require.NoError(t, s.UpsertSubscription(context.Background(), params))
	require.NoError(t, s.UpsertSubscription(context.Background(), params))

	assert.Equal(t, 1, s.SubscriptionCount())

	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	sub, err := s.GetSubscriptionByID(context.Background(), *got.CurrentSubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.True(t, sub.CurrentPeriodEnd.Equal(params.CurrentPeriodEnd))
}

func TestUpsertSubscription_LastWriteWinsByArrival(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s)

	newer := activeParams("sub_1")
	newer.Status = "past_due"
	newer.CurrentPeriodEnd = time.Unix(1705184000, 0)
	require.NoError(t, s.UpsertSubscription(context.Background(), newer))

	// An older snapshot redelivered late still wins: full replace by
	// arrival order, no event-time comparison.
	older := activeParams("sub_1")
	require.NoError(t, s.UpsertSubscription(context.Background(), older))

	sub, err := s.GetSubscriptionByStripeID(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.True(t, sub.CurrentPeriodEnd.Equal(older.CurrentPeriodEnd))
	assert.Equal(t, 1, s.SubscriptionCount())
}

func TestCancelSubscription(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)
	require.NoError(t, s.UpsertSubscription(context.Background(), activeParams("sub_1")))

	require.NoError(t, s.CancelSubscription(context.Background(), "sub_1"))

	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentSubscriptionID)
	assert.Equal(t, 0, s.SubscriptionCount())

	_, err = s.GetSubscriptionByStripeID(context.Background(), "sub_1")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestCancelSubscription_Unknown(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s)

	err := s.CancelSubscription(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestCancelSubscription_Orphan(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s)

	// A subscription row nobody points at is an integrity violation.
	orphan := &billing.Subscription{
		ID:                   uuid.New(),
		StripeSubscriptionID: "sub_orphan",
		Status:               "active",
	}
	s.mu.Lock()
	s.subscriptions[orphan.ID] = orphan
	s.mu.Unlock()

	err := s.CancelSubscription(context.Background(), "sub_orphan")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpsertAfterCancel_IsFreshCreation(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)

	require.NoError(t, s.UpsertSubscription(context.Background(), activeParams("sub_1")))
	require.NoError(t, s.CancelSubscription(context.Background(), "sub_1"))

	// Out-of-order creation arriving after the deletion starts over.
	require.NoError(t, s.UpsertSubscription(context.Background(), activeParams("sub_1")))

	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentSubscriptionID)

	sub, err := s.GetSubscriptionByID(context.Background(), *got.CurrentSubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
	assert.Equal(t, 1, s.SubscriptionCount())
}

func TestRecordPurchase(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)

	p := &billing.Purchase{
		UserID:           u.ID,
		CourseID:         "course_42",
		Amount:           4900,
		StripeCheckoutID: "ch_1",
	}
	require.NoError(t, s.RecordPurchase(context.Background(), p))

	got, err := s.FindPurchase(context.Background(), u.ID, "course_42")
	require.NoError(t, err)
	assert.Equal(t, int64(4900), got.Amount)

	_, err = s.FindPurchase(context.Background(), u.ID, "course_99")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestRecordPurchase_DuplicateCheckoutIsNoOp(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)

	p := &billing.Purchase{UserID: u.ID, CourseID: "course_42", Amount: 4900, StripeCheckoutID: "ch_1"}
	require.NoError(t, s.RecordPurchase(context.Background(), p))

	redelivered := &billing.Purchase{UserID: u.ID, CourseID: "course_42", Amount: 4900, StripeCheckoutID: "ch_1"}
	require.NoError(t, s.RecordPurchase(context.Background(), redelivered))

	assert.Equal(t, 1, s.PurchaseCount())
}

func TestRecordPurchase_UnknownUser(t *testing.T) {
	s := NewMemoryStore()

	err := s.RecordPurchase(context.Background(), &billing.Purchase{
		UserID:           uuid.New(),
		CourseID:         "course_42",
		StripeCheckoutID: "ch_1",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReferentialIntegrity_AfterUpsertCancelSequence(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s)

	for _, step := range []struct {
		subID  string
		cancel bool
	}{
		{subID: "sub_1"},
		{subID: "sub_1"},
		{subID: "sub_1", cancel: true},
		{subID: "sub_2"},
		{subID: "sub_2", cancel: true},
		{subID: "sub_3"},
	} {
		var err error
		if step.cancel {
			err = s.CancelSubscription(context.Background(), step.subID)
		} else {
			err = s.UpsertSubscription(context.Background(), activeParams(step.subID))
		}
		require.NoError(t, err)

		got, err := s.GetUserByID(context.Background(), u.ID)
		require.NoError(t, err)
		if got.CurrentSubscriptionID == nil {
			continue
		}

		// The pointer target must exist and resolve back to this user.
		sub, err := s.GetSubscriptionByID(context.Background(), *got.CurrentSubscriptionID)
		require.NoError(t, err)
		assert.Equal(t, step.subID, sub.StripeSubscriptionID)
	}
}

//go:build unit

package commands_test

import (
	"context"
	"testing"

	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdentityCommands struct{ mock.Mock }

func (m *mockIdentityCommands) Resolve(ctx context.Context, in commands.ResolveInput) (uuid.UUID, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockIdentityCommands) BackfillStorefrontLink(ctx context.Context, email string, wpUserID int64) error {
	args := m.Called(ctx, email, wpUserID)
	return args.Error(0)
}

type mockRegistrationCommands struct{ mock.Mock }

func (m *mockRegistrationCommands) RegisterCourse(ctx context.Context, identity commands.IdentityRecord, seasonTag string, line commands.OrderLine, orderID int64, pay commands.PaymentContext) (commands.RegistrationOutcome, error) {
	args := m.Called(ctx, identity, seasonTag, line, orderID, pay)
	return args.Get(0).(commands.RegistrationOutcome), args.Error(1)
}

type mockSubscriptionCommands struct{ mock.Mock }

func (m *mockSubscriptionCommands) EnsureForOrder(ctx context.Context, order commands.Order, identityID uuid.UUID) (commands.SubscriptionResult, error) {
	args := m.Called(ctx, order, identityID)
	return args.Get(0).(commands.SubscriptionResult), args.Error(1)
}

func (m *mockSubscriptionCommands) HandlePaymentSucceeded(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSubscriptionCommands) HandlePaymentFailed(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSubscriptionCommands) HandleSubscriptionDeleted(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func orderChange(newStatus string) commands.StatusChange {
	wpUserID := int64(88)
	return commands.StatusChange{
		OrderID:   1001,
		OldStatus: "pending",
		NewStatus: newStatus,
		Order: commands.Order{
			Email:      "claire@example.fr",
			FirstName:  "Claire",
			LastName:   "Moreau",
			WPUserID:   &wpUserID,
			TotalCents: 10000,
			SeasonTag:  "2025-2026",
			Lines: []commands.OrderLine{
				{Descriptor: "Pilates | Lundi | 17:30 - 18:30 | 1h", Formula: "Trimestre"},
				{Descriptor: "Yoga | Mardi | 19:00 - 20:00 | 1h", Formula: "Annuel"},
			},
		},
	}
}

func TestOrderCommands_ProcessStatusChange(t *testing.T) {
	ctx := context.Background()
	triggers := []string{"processing", "completed"}
	const defaultTag = "2024-2025"

	newService := func() (*mockIdentityCommands, *mockIdentityRepo, *mockRegistrationCommands, *mockSubscriptionCommands, commands.OrderCommands) {
		identities := new(mockIdentityCommands)
		identityReads := new(mockIdentityRepo)
		registrations := new(mockRegistrationCommands)
		subscriptions := new(mockSubscriptionCommands)
		svc := commands.NewOrderCommands(identities, identityReads, registrations, subscriptions, triggers, defaultTag)
		return identities, identityReads, registrations, subscriptions, svc
	}

	t.Run("non-qualifying status is acknowledged without processing", func(t *testing.T) {
		identities, _, _, _, svc := newService()

		result, err := svc.ProcessStatusChange(ctx, orderChange("cancelled"))

		require.NoError(t, err)
		assert.False(t, result.Processed)
		identities.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("status matching is case-insensitive", func(t *testing.T) {
		identities, identityReads, registrations, subscriptions, svc := newService()
		identityID := uuid.New()
		record := &commands.IdentityRecord{ID: identityID, Email: "claire@example.fr"}

		identities.On("Resolve", ctx, mock.Anything).Return(identityID, nil)
		identities.On("BackfillStorefrontLink", ctx, "claire@example.fr", int64(88)).Return(nil)
		identityReads.On("FindByEmail", ctx, "claire@example.fr").Return(record, nil)
		registrations.On("RegisterCourse", ctx, *record, "2025-2026", mock.Anything, int64(1001), mock.Anything).
			Return(commands.OutcomeBooked, nil)
		subscriptions.On("EnsureForOrder", ctx, mock.Anything, identityID).
			Return(commands.SubscriptionResult{ID: uuid.New()}, nil)

		result, err := svc.ProcessStatusChange(ctx, orderChange("Processing"))

		require.NoError(t, err)
		assert.True(t, result.Processed)
	})

	t.Run("processes every line and records per-line outcomes", func(t *testing.T) {
		identities, identityReads, registrations, subscriptions, svc := newService()
		identityID := uuid.New()
		subID := uuid.New()
		record := &commands.IdentityRecord{ID: identityID, Email: "claire@example.fr"}
		change := orderChange("completed")
		pay := commands.PaymentContext{
			PlanName:       "Mensuel",
			SubscriptionID: subID.String(),
			AmountCents:    10000,
		}

		identities.On("Resolve", ctx, mock.Anything).Return(identityID, nil)
		identities.On("BackfillStorefrontLink", ctx, "claire@example.fr", int64(88)).Return(nil)
		identityReads.On("FindByEmail", ctx, "claire@example.fr").Return(record, nil)
		subscriptions.On("EnsureForOrder", ctx, mock.Anything, identityID).
			Return(commands.SubscriptionResult{ID: subID, PlanName: "Mensuel"}, nil)
		registrations.On("RegisterCourse", ctx, *record, "2025-2026", change.Order.Lines[0], int64(1001), pay).
			Return(commands.OutcomeBooked, nil)
		registrations.On("RegisterCourse", ctx, *record, "2025-2026", change.Order.Lines[1], int64(1001), pay).
			Return(commands.OutcomeSkipped, commands.ErrInvalidCourseLine)

		result, err := svc.ProcessStatusChange(ctx, change)

		require.NoError(t, err)
		assert.True(t, result.Processed)
		assert.Equal(t, subID, result.SubscriptionID)
		require.Len(t, result.Lines, 2)
		assert.Equal(t, commands.OutcomeBooked, result.Lines[0].Outcome)
		assert.Equal(t, commands.OutcomeSkipped, result.Lines[1].Outcome)
		assert.NotEmpty(t, result.Lines[1].Error)
		registrations.AssertExpectations(t)
	})

	t.Run("empty season tag falls back to the configured default", func(t *testing.T) {
		identities, identityReads, registrations, subscriptions, svc := newService()
		identityID := uuid.New()
		record := &commands.IdentityRecord{ID: identityID, Email: "claire@example.fr"}
		change := orderChange("completed")
		change.Order.SeasonTag = ""

		identities.On("Resolve", ctx, mock.Anything).Return(identityID, nil)
		identities.On("BackfillStorefrontLink", ctx, "claire@example.fr", int64(88)).Return(nil)
		identityReads.On("FindByEmail", ctx, "claire@example.fr").Return(record, nil)
		subscriptions.On("EnsureForOrder", ctx, mock.MatchedBy(func(o commands.Order) bool {
			return o.SeasonTag == defaultTag
		}), identityID).Return(commands.SubscriptionResult{ID: uuid.New()}, nil)
		registrations.On("RegisterCourse", ctx, *record, defaultTag, mock.Anything, int64(1001), mock.Anything).
			Return(commands.OutcomeBooked, nil)

		result, err := svc.ProcessStatusChange(ctx, change)

		require.NoError(t, err)
		assert.True(t, result.Processed)
		registrations.AssertExpectations(t)
		subscriptions.AssertExpectations(t)
	})

	t.Run("subscription failure keeps the booking results", func(t *testing.T) {
		identities, identityReads, registrations, subscriptions, svc := newService()
		identityID := uuid.New()
		record := &commands.IdentityRecord{ID: identityID, Email: "claire@example.fr"}

		identities.On("Resolve", ctx, mock.Anything).Return(identityID, nil)
		identities.On("BackfillStorefrontLink", ctx, "claire@example.fr", int64(88)).Return(nil)
		identityReads.On("FindByEmail", ctx, "claire@example.fr").Return(record, nil)
		subscriptions.On("EnsureForOrder", ctx, mock.Anything, identityID).
			Return(commands.SubscriptionResult{}, commands.ErrSeasonNotFound)
		registrations.On("RegisterCourse", ctx, *record, "2025-2026", mock.Anything, int64(1001),
			commands.PaymentContext{AmountCents: 10000}).
			Return(commands.OutcomeBooked, nil)

		result, err := svc.ProcessStatusChange(ctx, orderChange("completed"))

		require.NoError(t, err)
		assert.True(t, result.Processed)
		assert.Equal(t, uuid.Nil, result.SubscriptionID)
		assert.Len(t, result.Lines, 2)
	})

	t.Run("identity resolution failure aborts", func(t *testing.T) {
		identities, _, registrations, _, svc := newService()

		identities.On("Resolve", ctx, mock.Anything).Return(uuid.Nil, commands.ErrIdentityCreateFailed)

		_, err := svc.ProcessStatusChange(ctx, orderChange("completed"))

		assert.ErrorIs(t, err, commands.ErrIdentityCreateFailed)
		registrations.AssertNotCalled(t, "RegisterCourse",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backfill failure is non-fatal", func(t *testing.T) {
		identities, identityReads, registrations, subscriptions, svc := newService()
		identityID := uuid.New()
		record := &commands.IdentityRecord{ID: identityID, Email: "claire@example.fr"}

		identities.On("Resolve", ctx, mock.Anything).Return(identityID, nil)
		identities.On("BackfillStorefrontLink", ctx, "claire@example.fr", int64(88)).Return(dbFailure())
		identityReads.On("FindByEmail", ctx, "claire@example.fr").Return(record, nil)
		subscriptions.On("EnsureForOrder", ctx, mock.Anything, identityID).
			Return(commands.SubscriptionResult{ID: uuid.New()}, nil)
		registrations.On("RegisterCourse", ctx, *record, "2025-2026", mock.Anything, int64(1001), mock.Anything).
			Return(commands.OutcomeBooked, nil)

		result, err := svc.ProcessStatusChange(ctx, orderChange("completed"))

		require.NoError(t, err)
		assert.True(t, result.Processed)
	})
}

//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"class-sync/internal/infra"
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func notFound() error {
	return infra.WrapRepoErr("not found", errors.New("no rows"), infra.KindNotFound)
}

func dbFailure() error {
	return infra.WrapRepoErr("db down", errors.New("connection refused"))
}

func TestIdentityCommands_Resolve(t *testing.T) {
	ctx := context.Background()
	input := commands.ResolveInput{
		Email:     "  Claire.Moreau@Example.FR ",
		FirstName: "Claire",
		LastName:  "Moreau",
		Phone:     "+33612345678",
	}
	normalized := "claire.moreau@example.fr"

	t.Run("returns fully linked identity without creating anything", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		existingID := uuid.New()
		ameliaID := int64(321)

		identities.On("FindByEmail", ctx, normalized).
			Return(&commands.IdentityRecord{ID: existingID, Email: normalized, AmeliaCustomerID: &ameliaID}, nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, existingID, id)
		identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		accounts.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		customers.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("backfills booking-system customer onto an existing identity missing it", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		existingID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).
			Return(&commands.IdentityRecord{ID: existingID, Email: normalized}, nil)
		customers.On("FindByEmail", ctx, normalized).
			Return(&commands.AmeliaCustomer{ID: 321, Email: normalized}, nil)
		identities.On("LinkAmeliaCustomer", ctx, existingID, int64(321)).Return(nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, existingID, id)
		identities.AssertExpectations(t)
		identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("reconciliation failure leaves the existing identity usable", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		existingID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).
			Return(&commands.IdentityRecord{ID: existingID, Email: normalized}, nil)
		customers.On("FindByEmail", ctx, normalized).Return(nil, dbFailure())

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, existingID, id)
		identities.AssertNotCalled(t, "LinkAmeliaCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("links storefront account and booking customer together", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		newID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		accounts.On("FindByEmail", ctx, normalized).
			Return(&commands.StorefrontAccount{ID: 88, Email: normalized, FirstName: "C.", LastName: "M."}, nil)
		customers.On("FindByEmail", ctx, normalized).
			Return(&commands.AmeliaCustomer{ID: 321, Email: normalized}, nil)
		identities.On("Create", ctx, mock.MatchedBy(func(in commands.NewIdentity) bool {
			return in.WPUserID != nil && *in.WPUserID == 88 &&
				in.AmeliaCustomerID != nil && *in.AmeliaCustomerID == 321 &&
				in.Email == normalized && in.FirstName == "Claire" && in.LastName == "Moreau"
		})).Return(newID, nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, newID, id)
	})

	t.Run("storefront identity is created without a link when booking create fails", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		newID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		accounts.On("FindByEmail", ctx, normalized).
			Return(&commands.StorefrontAccount{ID: 88, Email: normalized}, nil)
		customers.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		customers.On("Create", ctx, mock.Anything).Return(int64(0), dbFailure())
		identities.On("Create", ctx, mock.MatchedBy(func(in commands.NewIdentity) bool {
			return in.WPUserID != nil && *in.WPUserID == 88 && in.AmeliaCustomerID == nil
		})).Return(newID, nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, newID, id)
	})

	t.Run("reuses existing booking-system customer", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		newID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		accounts.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		customers.On("FindByEmail", ctx, normalized).
			Return(&commands.AmeliaCustomer{ID: 321, Email: normalized}, nil)
		identities.On("Create", ctx, mock.MatchedBy(func(in commands.NewIdentity) bool {
			return in.AmeliaCustomerID != nil && *in.AmeliaCustomerID == 321
		})).Return(newID, nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, newID, id)
		customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates booking-system customer as visible customer type", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		newID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		accounts.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		customers.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		customers.On("Create", ctx, mock.MatchedBy(func(c commands.AmeliaCustomer) bool {
			return c.Status == "visible" && c.Type == "customer" && c.Email == normalized
		})).Return(int64(500), nil)
		identities.On("Create", ctx, mock.MatchedBy(func(in commands.NewIdentity) bool {
			return in.AmeliaCustomerID != nil && *in.AmeliaCustomerID == 500
		})).Return(newID, nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, newID, id)
	})

	t.Run("still creates identity when booking-system create fails", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)
		newID := uuid.New()

		identities.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		accounts.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		customers.On("FindByEmail", ctx, normalized).Return(nil, notFound())
		customers.On("Create", ctx, mock.Anything).Return(int64(0), dbFailure())
		identities.On("Create", ctx, mock.MatchedBy(func(in commands.NewIdentity) bool {
			return in.AmeliaCustomerID == nil
		})).Return(newID, nil)

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		id, err := svc.Resolve(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, newID, id)
	})

	t.Run("lookup failure surfaces as lookup error", func(t *testing.T) {
		identities := new(mockIdentityRepo)
		accounts := new(mockStorefrontRepo)
		customers := new(mockAmeliaCustomerRepo)

		identities.On("FindByEmail", ctx, normalized).Return(nil, dbFailure())

		svc := commands.NewIdentityCommands(identities, accounts, customers)
		_, err := svc.Resolve(ctx, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, commands.ErrIdentityLookupFailed)
	})
}

func TestIdentityCommands_BackfillStorefrontLink(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email before linking", func(t *testing.T) {
		identities := new(mockIdentityRepo)

		identities.On("LinkStorefrontUser", ctx, "claire@example.fr", int64(88)).
			Return(int64(1), nil)

		svc := commands.NewIdentityCommands(identities, new(mockStorefrontRepo), new(mockAmeliaCustomerRepo))
		err := svc.BackfillStorefrontLink(ctx, " Claire@Example.FR ", 88)

		require.NoError(t, err)
		identities.AssertExpectations(t)
	})
}

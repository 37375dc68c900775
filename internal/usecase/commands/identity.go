package commands

import (
	"context"
	"log/slog"
	"strings"

	"class-sync/internal/infra"
	"class-sync/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrIdentityLookupFailed = errs.New("identity lookup failed")
	ErrIdentityCreateFailed = errs.New("identity create failed")
)

type ResolveInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

type IdentityCommands interface {
	// Resolve finds or creates the internal identity for an email and links
	// it to the storefront account and booking-system customer when they can
	// be discovered. Re-running with unchanged inputs is a no-op.
	Resolve(ctx context.Context, in ResolveInput) (uuid.UUID, error)
	// BackfillStorefrontLink propagates a discovered storefront user id to
	// every identity sharing that email.
	BackfillStorefrontLink(ctx context.Context, email string, wpUserID int64) error
}

type identityCommandsImpl struct {
	identities IdentityRepository
	accounts   StorefrontAccountRepository
	customers  AmeliaCustomerRepository
}

func NewIdentityCommands(
	identities IdentityRepository,
	accounts StorefrontAccountRepository,
	customers AmeliaCustomerRepository,
) IdentityCommands {
	return &identityCommandsImpl{
		identities: identities,
		accounts:   accounts,
		customers:  customers,
	}
}

func (c *identityCommandsImpl) Resolve(ctx context.Context, in ResolveInput) (uuid.UUID, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := c.identities.FindByEmail(ctx, email)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return uuid.Nil, errs.Mark(err, ErrIdentityLookupFailed)
	}
	if existing != nil {
		if existing.AmeliaCustomerID == nil {
			c.reconcileAmeliaLink(ctx, existing, in)
		}
		return existing.ID, nil
	}

	account, err := c.accounts.FindByEmail(ctx, email)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return uuid.Nil, errs.Mark(err, ErrIdentityLookupFailed)
	}
	if account != nil {
		first, last := in.FirstName, in.LastName
		if first == "" {
			first = account.FirstName
		}
		if last == "" {
			last = account.LastName
		}
		ameliaID, err := c.resolveAmeliaCustomer(ctx, email, ResolveInput{
			FirstName: first,
			LastName:  last,
			Phone:     in.Phone,
		})
		if err != nil {
			return uuid.Nil, err
		}
		id, err := c.identities.Create(ctx, NewIdentity{
			WPUserID:         &account.ID,
			AmeliaCustomerID: ameliaID,
			Email:            email,
			FirstName:        first,
			LastName:         last,
			Phone:            in.Phone,
		})
		if err != nil {
			return uuid.Nil, errs.Mark(err, ErrIdentityCreateFailed)
		}
		return id, nil
	}

	ameliaID, err := c.resolveAmeliaCustomer(ctx, email, in)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := c.identities.Create(ctx, NewIdentity{
		AmeliaCustomerID: ameliaID,
		Email:            email,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Phone:            in.Phone,
	})
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrIdentityCreateFailed)
	}
	return id, nil
}

func (c *identityCommandsImpl) resolveAmeliaCustomer(ctx context.Context, email string, in ResolveInput) (*int64, error) {
	customer, err := c.customers.FindByEmail(ctx, email)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrIdentityLookupFailed)
	}
	if customer != nil {
		return &customer.ID, nil
	}

	created, err := c.customers.Create(ctx, AmeliaCustomer{
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Status:    "visible",
		Type:      "customer",
	})
	if err != nil {
		// Best-effort: the identity row is still created without the link
		// and reconciled on a later resolve.
		slog.Warn("failed to create booking-system customer", "email", email, "error", err)
		return nil, nil
	}
	return &created, nil
}

// reconcileAmeliaLink lazily attaches a booking-system customer to an
// identity created before one was discoverable. Best-effort: resolution
// failures leave the identity as it was.
func (c *identityCommandsImpl) reconcileAmeliaLink(ctx context.Context, identity *IdentityRecord, in ResolveInput) {
	if in.FirstName == "" {
		in.FirstName = identity.FirstName
	}
	if in.LastName == "" {
		in.LastName = identity.LastName
	}
	if in.Phone == "" {
		in.Phone = identity.Phone
	}

	ameliaID, err := c.resolveAmeliaCustomer(ctx, identity.Email, in)
	if err != nil {
		slog.Warn("booking-system customer reconciliation failed", "email", identity.Email, "error", err)
		return
	}
	if ameliaID == nil {
		return
	}

	if err := c.identities.LinkAmeliaCustomer(ctx, identity.ID, *ameliaID); err != nil {
		slog.Warn("failed to persist booking-system customer link",
			"identity_id", identity.ID, "amelia_customer_id", *ameliaID, "error", err)
		return
	}
	slog.Info("backfilled booking-system customer link",
		"identity_id", identity.ID, "amelia_customer_id", *ameliaID)
}

func (c *identityCommandsImpl) BackfillStorefrontLink(ctx context.Context, email string, wpUserID int64) error {
	email = strings.ToLower(strings.TrimSpace(email))

	updated, err := c.identities.LinkStorefrontUser(ctx, email, wpUserID)
	if err != nil {
		return errs.Mark(err, ErrIdentityLookupFailed)
	}
	if updated > 0 {
		slog.Info("backfilled storefront link", "email", email, "wp_user_id", wpUserID, "identities", updated)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"strings"

	"class-sync/internal/infra"
	"class-sync/internal/infra/db"
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

type IdentityRepository struct {
	db db.DBTX
}

func NewIdentityRepository(dbtx db.DBTX) *IdentityRepository {
	return &IdentityRepository{db: dbtx}
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*commands.IdentityRecord, error) {
	const query = `
		SELECT id, wp_user_id, amelia_customer_id, email, first_name, last_name, phone, note, status
		FROM customers
		WHERE lower(email) = lower($1)`

	var rec commands.IdentityRecord
	err := r.db.QueryRow(ctx, query, email).Scan(
		&rec.ID, &rec.WPUserID, &rec.AmeliaCustomerID, &rec.Email,
		&rec.FirstName, &rec.LastName, &rec.Phone, &rec.Note, &rec.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("identity not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find identity by email", err)
	}
	return &rec, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity commands.NewIdentity) (uuid.UUID, error) {
	const query = `
		INSERT INTO customers (id, wp_user_id, amelia_customer_id, email, first_name, last_name, phone, note, status)
		VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8, 'active')
		RETURNING id`

	id := uuid.New()
	err := r.db.QueryRow(ctx, query,
		id, identity.WPUserID, identity.AmeliaCustomerID, identity.Email,
		identity.FirstName, identity.LastName, identity.Phone, identity.Note,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return uuid.Nil, infra.WrapRepoErr("identity email already exists", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create identity", err)
	}
	return id, nil
}

func (r *IdentityRepository) LinkStorefrontUser(ctx context.Context, email string, wpUserID int64) (int64, error) {
	const query = `
		UPDATE customers
		SET wp_user_id = $2, updated_at = now()
		WHERE lower(email) = lower($1) AND wp_user_id IS NULL`

	tag, err := r.db.Exec(ctx, query, email, wpUserID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to backfill storefront link", err)
	}
	return tag.RowsAffected(), nil
}

func (r *IdentityRepository) LinkAmeliaCustomer(ctx context.Context, id uuid.UUID, ameliaCustomerID int64) error {
	const query = `
		UPDATE customers
		SET amelia_customer_id = $2, updated_at = now()
		WHERE id = $1 AND amelia_customer_id IS NULL`

	if _, err := r.db.Exec(ctx, query, id, ameliaCustomerID); err != nil {
		return infra.WrapRepoErr("failed to backfill booking-system customer link", err)
	}
	return nil
}

// StorefrontAccountRepository reads the e-commerce platform's user table.
type StorefrontAccountRepository struct {
	db db.DBTX
}

func NewStorefrontAccountRepository(dbtx db.DBTX) *StorefrontAccountRepository {
	return &StorefrontAccountRepository{db: dbtx}
}

func (r *StorefrontAccountRepository) FindByEmail(ctx context.Context, email string) (*commands.StorefrontAccount, error) {
	const query = `
		SELECT id, user_email, display_name
		FROM wp_users
		WHERE lower(user_email) = lower($1)`

	var (
		acct        commands.StorefrontAccount
		displayName string
	)
	err := r.db.QueryRow(ctx, query, email).Scan(&acct.ID, &acct.Email, &displayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("storefront account not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find storefront account", err)
	}

	acct.FirstName, acct.LastName = splitDisplayName(displayName)
	return &acct, nil
}

func splitDisplayName(name string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// AmeliaCustomerRepository reads/writes the booking system's customer relation.
type AmeliaCustomerRepository struct {
	db db.DBTX
}

func NewAmeliaCustomerRepository(dbtx db.DBTX) *AmeliaCustomerRepository {
	return &AmeliaCustomerRepository{db: dbtx}
}

func (r *AmeliaCustomerRepository) FindByEmail(ctx context.Context, email string) (*commands.AmeliaCustomer, error) {
	const query = `
		SELECT id, email, first_name, last_name, COALESCE(phone, ''), status, type
		FROM amelia_users
		WHERE lower(email) = lower($1) AND type = 'customer'`

	var cust commands.AmeliaCustomer
	err := r.db.QueryRow(ctx, query, email).Scan(
		&cust.ID, &cust.Email, &cust.FirstName, &cust.LastName, &cust.Phone, &cust.Status, &cust.Type,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking-system customer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking-system customer", err)
	}
	return &cust, nil
}

func (r *AmeliaCustomerRepository) Create(ctx context.Context, customer commands.AmeliaCustomer) (int64, error) {
	const query = `
		INSERT INTO amelia_users (type, status, first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4, lower($5), $6)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		customer.Type, customer.Status, customer.FirstName, customer.LastName, customer.Email, customer.Phone,
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to create booking-system customer", err)
	}
	return id, nil
}

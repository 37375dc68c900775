package commands

import (
	"context"
	"time"

	"class-sync/internal/domain/billing"
	"class-sync/internal/domain/course"

	"github.com/google/uuid"
)

// Write-side snapshots prevent dependency on Read-side query types (CQRS separation)

// IdentityRecord is the internal customer ledger row joining the three
// identity spaces: storefront account, internal ledger, booking-system customer.
type IdentityRecord struct {
	ID               uuid.UUID
	WPUserID         *int64
	AmeliaCustomerID *int64
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	Note             string
	Status           string
}

type NewIdentity struct {
	WPUserID         *int64
	AmeliaCustomerID *int64
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	Note             string
}

type StorefrontAccount struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}

type AmeliaCustomer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Status    string
	Type      string
}

type EventRecord struct {
	ID   int64
	Name string
}

type PeriodRecord struct {
	ID          int64
	EventID     int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	Capacity    int32
	Status      string
}

type NewPeriod struct {
	EventID     int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	Capacity    int32
	Status      string
}

type BookingRecord struct {
	ID            int64
	CustomerID    int64
	EventPeriodID int64
	Status        string
	Formula       string
	OrderID       int64
}

type NewBooking struct {
	CustomerID    int64
	EventPeriodID int64
	Status        string
	Formula       string
	OrderID       int64
}

type PaymentPlanRecord struct {
	ID           uuid.UUID
	Name         string
	Frequency    billing.Frequency
	Installments int32
	IsDefault    bool
	Active       bool
}

type SeasonRecord struct {
	ID        uuid.UUID
	Name      string
	Tag       string
	StartDate time.Time
	EndDate   *time.Time
	Status    string
}

type SubscriptionRecord struct {
	ID                     uuid.UUID
	CustomerID             uuid.UUID
	OrderID                int64
	PaymentPlanID          uuid.UUID
	SeasonID               uuid.UUID
	StripeSubscriptionID   *string
	Status                 billing.SubscriptionStatus
	StartDate              time.Time
	NextPaymentDate        time.Time
	EndDate                *time.Time
	TotalAmountCents       int64
	InstallmentAmountCents int64
	InstallmentsPaid       int32
	InstallmentsTotal      int32
}

type NewSubscription struct {
	CustomerID             uuid.UUID
	OrderID                int64
	PaymentPlanID          uuid.UUID
	SeasonID               uuid.UUID
	Status                 billing.SubscriptionStatus
	StartDate              time.Time
	NextPaymentDate        time.Time
	EndDate                *time.Time
	TotalAmountCents       int64
	InstallmentAmountCents int64
	InstallmentsPaid       int32
	InstallmentsTotal      int32
}

type NewInvoice struct {
	CustomerID     uuid.UUID
	SubscriptionID uuid.UUID
	OrderID        int64
	InvoiceNumber  string
	InvoiceDate    time.Time
	DueDate        time.Time
	AmountCents    int64
	Status         string
}

// Order is the explicit per-request selection context derived from the
// storefront's status-change notification; it is passed by parameter through
// the pipeline instead of living in ambient session state.
type Order struct {
	ID            int64
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	WPUserID      *int64
	PaymentMethod string
	TotalCents    int64
	SeasonTag     string
	PaymentPlanID *uuid.UUID
	Lines         []OrderLine
}

type OrderLine struct {
	Descriptor string
	Formula    string
}

// --- repository ports ---

type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*IdentityRecord, error)
	Create(ctx context.Context, identity NewIdentity) (uuid.UUID, error)
	// LinkStorefrontUser backfills wp_user_id onto every identity with the
	// given email that does not have one yet. Returns rows updated.
	LinkStorefrontUser(ctx context.Context, email string, wpUserID int64) (int64, error)
	// LinkAmeliaCustomer backfills the booking-system customer id onto an
	// identity that does not have one yet.
	LinkAmeliaCustomer(ctx context.Context, id uuid.UUID, ameliaCustomerID int64) error
}

type StorefrontAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*StorefrontAccount, error)
}

type AmeliaCustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*AmeliaCustomer, error)
	Create(ctx context.Context, customer AmeliaCustomer) (int64, error)
}

type EventRepository interface {
	ListBySeasonTag(ctx context.Context, tag string) ([]EventRecord, error)
	// CreateWithTag inserts the event row and its season tag in one
	// transaction; both succeed or neither does.
	CreateWithTag(ctx context.Context, name, tag string) (int64, error)
	FindPeriodByTimeOfDay(ctx context.Context, eventID int64, start, end course.ClockTime) (*PeriodRecord, error)
	CreatePeriod(ctx context.Context, period NewPeriod) (int64, error)
}

type BookingRepository interface {
	// FindActive returns a booking for the pair in approved or pending state.
	FindActive(ctx context.Context, ameliaCustomerID, eventPeriodID int64) (*BookingRecord, error)
	Create(ctx context.Context, booking NewBooking) (int64, error)
}

type PaymentPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentPlanRecord, error)
	FindDefault(ctx context.Context) (*PaymentPlanRecord, error)
}

type SeasonRepository interface {
	FindByTag(ctx context.Context, tag string) (*SeasonRecord, error)
	FindCurrent(ctx context.Context, now time.Time) (*SeasonRecord, error)
}

type SubscriptionRepository interface {
	FindByOrderID(ctx context.Context, orderID int64) (*SubscriptionRecord, error)
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*SubscriptionRecord, error)
	Create(ctx context.Context, sub NewSubscription) (uuid.UUID, error)
	UpdatePlan(ctx context.Context, id, paymentPlanID uuid.UUID) error
	// SetStripeSubscriptionID reports rows affected so callers can detect the
	// known update-affected-zero-rows case and retry with a direct write.
	SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, stripeSubscriptionID string) (int64, error)
	ForceSetStripeSubscriptionID(ctx context.Context, id uuid.UUID, stripeSubscriptionID string) error
	UpdateProgress(ctx context.Context, id uuid.UUID, installmentsPaid int32, nextPaymentDate time.Time, status billing.SubscriptionStatus, endDate *time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status billing.SubscriptionStatus, endDate *time.Time) error
	ListDue(ctx context.Context, today time.Time) ([]SubscriptionRecord, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice NewInvoice) (uuid.UUID, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

// --- gateway ports ---

// BookingRegistration is the payload for the booking system's remote API.
type BookingRegistration struct {
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	EventID       int64
	EventPeriodID *int64
	Formula       string
	PlanName      string
	SubscriptionID string
	AmountCents   int64
}

type BookingGateway interface {
	Register(ctx context.Context, reg BookingRegistration) error
}

type ProvisionParams struct {
	CustomerEmail string
	CustomerName  string
	ProductName   string
	AmountCents   int64
	Frequency     billing.Frequency
	StartDate     time.Time
	CancelAt      *time.Time
}

type PaymentGateway interface {
	Enabled() bool
	// Provision creates product, price and subscription remotely and returns
	// the remote subscription id.
	Provision(ctx context.Context, params ProvisionParams) (string, error)
	SubscriptionActive(ctx context.Context, stripeSubscriptionID string) (bool, error)
	RequestInvoice(ctx context.Context, stripeSubscriptionID string) error
}

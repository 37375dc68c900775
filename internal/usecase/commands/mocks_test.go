//go:build unit

package commands_test

import (
	"context"
	"time"

	"class-sync/internal/domain/billing"
	"class-sync/internal/domain/course"
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockIdentityRepo struct{ mock.Mock }

func (m *mockIdentityRepo) FindByEmail(ctx context.Context, email string) (*commands.IdentityRecord, error) {
	args := m.Called(ctx, email)
	rec, _ := args.Get(0).(*commands.IdentityRecord)
	return rec, args.Error(1)
}

func (m *mockIdentityRepo) Create(ctx context.Context, identity commands.NewIdentity) (uuid.UUID, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockIdentityRepo) LinkStorefrontUser(ctx context.Context, email string, wpUserID int64) (int64, error) {
	args := m.Called(ctx, email, wpUserID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockIdentityRepo) LinkAmeliaCustomer(ctx context.Context, id uuid.UUID, ameliaCustomerID int64) error {
	args := m.Called(ctx, id, ameliaCustomerID)
	return args.Error(0)
}

type mockStorefrontRepo struct{ mock.Mock }

func (m *mockStorefrontRepo) FindByEmail(ctx context.Context, email string) (*commands.StorefrontAccount, error) {
	args := m.Called(ctx, email)
	acct, _ := args.Get(0).(*commands.StorefrontAccount)
	return acct, args.Error(1)
}

type mockAmeliaCustomerRepo struct{ mock.Mock }

func (m *mockAmeliaCustomerRepo) FindByEmail(ctx context.Context, email string) (*commands.AmeliaCustomer, error) {
	args := m.Called(ctx, email)
	cust, _ := args.Get(0).(*commands.AmeliaCustomer)
	return cust, args.Error(1)
}

func (m *mockAmeliaCustomerRepo) Create(ctx context.Context, customer commands.AmeliaCustomer) (int64, error) {
	args := m.Called(ctx, customer)
	return args.Get(0).(int64), args.Error(1)
}

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) ListBySeasonTag(ctx context.Context, tag string) ([]commands.EventRecord, error) {
	args := m.Called(ctx, tag)
	events, _ := args.Get(0).([]commands.EventRecord)
	return events, args.Error(1)
}

func (m *mockEventRepo) CreateWithTag(ctx context.Context, name, tag string) (int64, error) {
	args := m.Called(ctx, name, tag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEventRepo) FindPeriodByTimeOfDay(ctx context.Context, eventID int64, start, end course.ClockTime) (*commands.PeriodRecord, error) {
	args := m.Called(ctx, eventID, start, end)
	p, _ := args.Get(0).(*commands.PeriodRecord)
	return p, args.Error(1)
}

func (m *mockEventRepo) CreatePeriod(ctx context.Context, period commands.NewPeriod) (int64, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) FindActive(ctx context.Context, ameliaCustomerID, eventPeriodID int64) (*commands.BookingRecord, error) {
	args := m.Called(ctx, ameliaCustomerID, eventPeriodID)
	b, _ := args.Get(0).(*commands.BookingRecord)
	return b, args.Error(1)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking commands.NewBooking) (int64, error) {
	args := m.Called(ctx, booking)
	return args.Get(0).(int64), args.Error(1)
}

type mockPlanRepo struct{ mock.Mock }

func (m *mockPlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*commands.PaymentPlanRecord, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*commands.PaymentPlanRecord)
	return p, args.Error(1)
}

func (m *mockPlanRepo) FindDefault(ctx context.Context) (*commands.PaymentPlanRecord, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*commands.PaymentPlanRecord)
	return p, args.Error(1)
}

type mockSeasonRepo struct{ mock.Mock }

func (m *mockSeasonRepo) FindByTag(ctx context.Context, tag string) (*commands.SeasonRecord, error) {
	args := m.Called(ctx, tag)
	s, _ := args.Get(0).(*commands.SeasonRecord)
	return s, args.Error(1)
}

func (m *mockSeasonRepo) FindCurrent(ctx context.Context, now time.Time) (*commands.SeasonRecord, error) {
	args := m.Called(ctx, now)
	s, _ := args.Get(0).(*commands.SeasonRecord)
	return s, args.Error(1)
}

type mockSubscriptionRepo struct{ mock.Mock }

func (m *mockSubscriptionRepo) FindByOrderID(ctx context.Context, orderID int64) (*commands.SubscriptionRecord, error) {
	args := m.Called(ctx, orderID)
	s, _ := args.Get(0).(*commands.SubscriptionRecord)
	return s, args.Error(1)
}

func (m *mockSubscriptionRepo) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*commands.SubscriptionRecord, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	s, _ := args.Get(0).(*commands.SubscriptionRecord)
	return s, args.Error(1)
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub commands.NewSubscription) (uuid.UUID, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockSubscriptionRepo) UpdatePlan(ctx context.Context, id, paymentPlanID uuid.UUID) error {
	args := m.Called(ctx, id, paymentPlanID)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, stripeSubscriptionID string) (int64, error) {
	args := m.Called(ctx, id, stripeSubscriptionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriptionRepo) ForceSetStripeSubscriptionID(ctx context.Context, id uuid.UUID, stripeSubscriptionID string) error {
	args := m.Called(ctx, id, stripeSubscriptionID)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) UpdateProgress(ctx context.Context, id uuid.UUID, installmentsPaid int32, nextPaymentDate time.Time, status billing.SubscriptionStatus, endDate *time.Time) error {
	args := m.Called(ctx, id, installmentsPaid, nextPaymentDate, status, endDate)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.SubscriptionStatus, endDate *time.Time) error {
	args := m.Called(ctx, id, status, endDate)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) ListDue(ctx context.Context, today time.Time) ([]commands.SubscriptionRecord, error) {
	args := m.Called(ctx, today)
	subs, _ := args.Get(0).([]commands.SubscriptionRecord)
	return subs, args.Error(1)
}

type mockInvoiceRepo struct{ mock.Mock }

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice commands.NewInvoice) (uuid.UUID, error) {
	args := m.Called(ctx, invoice)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	args := m.Called(ctx, kind, topic, payload, runAt)
	return args.Error(0)
}

type mockBookingGateway struct{ mock.Mock }

func (m *mockBookingGateway) Register(ctx context.Context, reg commands.BookingRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

type mockPaymentGateway struct{ mock.Mock }

func (m *mockPaymentGateway) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockPaymentGateway) Provision(ctx context.Context, params commands.ProvisionParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentGateway) SubscriptionActive(ctx context.Context, stripeSubscriptionID string) (bool, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentGateway) RequestInvoice(ctx context.Context, stripeSubscriptionID string) error {
	args := m.Called(ctx, stripeSubscriptionID)
	return args.Error(0)
}

package commands

import (
	"context"
	"log/slog"

	"class-sync/internal/domain/course"
	"class-sync/internal/domain/matching"
	"class-sync/internal/infra"
	"class-sync/internal/pkg/clock"
	"class-sync/internal/pkg/errs"
)

var (
	ErrInvalidCourseLine   = errs.New("invalid course line")
	ErrMissingTimeRange    = errs.New("course line has no time range")
	ErrNoBookingCustomer   = errs.New("identity has no booking-system customer")
	ErrEventLookupFailed   = errs.New("event lookup failed")
	ErrEventCreateFailed   = errs.New("event create failed")
	ErrPeriodCreateFailed  = errs.New("period create failed")
	ErrBookingCreateFailed = errs.New("booking create failed")
)

const defaultPeriodCapacity = 30

type RegistrationOutcome string

const (
	OutcomeBooked        RegistrationOutcome = "booked"
	OutcomeAlreadyBooked RegistrationOutcome = "already_booked"
	OutcomeSkipped       RegistrationOutcome = "skipped"
	OutcomeFailed        RegistrationOutcome = "failed"
)

// PaymentContext carries the order-level payment details echoed to the
// remote booking API alongside each course line.
type PaymentContext struct {
	PlanName       string
	SubscriptionID string
	AmountCents    int64
}

type RegistrationCommands interface {
	// RegisterCourse matches one purchased course line against the booking
	// system and registers the customer for it, idempotently.
	RegisterCourse(ctx context.Context, identity IdentityRecord, seasonTag string, line OrderLine, orderID int64, pay PaymentContext) (RegistrationOutcome, error)
}

type registrationCommandsImpl struct {
	events   EventRepository
	bookings BookingRepository
	gateway  BookingGateway
	clock    clock.Clock
}

func NewRegistrationCommands(
	events EventRepository,
	bookings BookingRepository,
	gateway BookingGateway,
	clk clock.Clock,
) RegistrationCommands {
	return &registrationCommandsImpl{
		events:   events,
		bookings: bookings,
		gateway:  gateway,
		clock:    clk,
	}
}

func (c *registrationCommandsImpl) RegisterCourse(
	ctx context.Context,
	identity IdentityRecord,
	seasonTag string,
	line OrderLine,
	orderID int64,
	pay PaymentContext,
) (RegistrationOutcome, error) {
	descriptor, err := course.ParseSchedule(line.Descriptor)
	if err != nil {
		return OutcomeSkipped, errs.Mark(err, ErrInvalidCourseLine)
	}

	if identity.AmeliaCustomerID == nil {
		return OutcomeFailed, ErrNoBookingCustomer
	}

	eventID, err := c.findOrCreateEvent(ctx, descriptor.Name, seasonTag)
	if err != nil {
		return OutcomeFailed, err
	}

	periodID, err := c.findOrCreatePeriod(ctx, eventID, descriptor)
	if err != nil {
		return OutcomeSkipped, err
	}

	outcome, err := c.registerLocally(ctx, *identity.AmeliaCustomerID, periodID, line, orderID)
	if err != nil {
		return OutcomeFailed, err
	}

	// Fire-and-forget relative to the local booking: a remote failure is
	// logged for this course line only.
	c.registerRemotely(ctx, identity, eventID, periodID, line, pay)

	return outcome, nil
}

// findOrCreateEvent applies the tiered name match over the season's events
// and creates the event (with its season tag, transactionally) on a miss.
func (c *registrationCommandsImpl) findOrCreateEvent(ctx context.Context, shortName, seasonTag string) (int64, error) {
	events, err := c.events.ListBySeasonTag(ctx, seasonTag)
	if err != nil {
		return 0, errs.Mark(err, ErrEventLookupFailed)
	}

	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}

	if match, ok := matching.BestMatch(shortName, names); ok {
		for _, e := range events {
			if e.Name == match.Name {
				slog.Debug("matched event", "course", shortName, "event", e.Name, "tier", match.Tier.String())
				return e.ID, nil
			}
		}
	}

	id, err := c.events.CreateWithTag(ctx, shortName, seasonTag)
	if err != nil {
		return 0, errs.Mark(err, ErrEventCreateFailed)
	}
	slog.Info("created event", "name", shortName, "tag", seasonTag, "event_id", id)
	return id, nil
}

// findOrCreatePeriod reuses the event's period with the same time-of-day
// regardless of date, so the weekly slot is not duplicated as its next
// occurrence rolls forward.
func (c *registrationCommandsImpl) findOrCreatePeriod(ctx context.Context, eventID int64, d *course.Descriptor) (int64, error) {
	if d.Start == nil || d.End == nil {
		return 0, ErrMissingTimeRange
	}

	existing, err := c.events.FindPeriodByTimeOfDay(ctx, eventID, *d.Start, *d.End)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return 0, errs.Mark(err, ErrEventLookupFailed)
	}
	if existing != nil {
		return existing.ID, nil
	}

	date := course.NextOccurrence(c.clock.Now(), d.Weekday)
	id, err := c.events.CreatePeriod(ctx, NewPeriod{
		EventID:     eventID,
		PeriodStart: d.Start.At(date),
		PeriodEnd:   d.End.At(date),
		Capacity:    defaultPeriodCapacity,
		Status:      "active",
	})
	if err != nil {
		return 0, errs.Mark(err, ErrPeriodCreateFailed)
	}
	return id, nil
}

// registerLocally inserts an approved booking unless one is already active
// for the customer and period; bookings from a paid order skip any
// pending-review step.
func (c *registrationCommandsImpl) registerLocally(
	ctx context.Context,
	ameliaCustomerID, periodID int64,
	line OrderLine,
	orderID int64,
) (RegistrationOutcome, error) {
	existing, err := c.bookings.FindActive(ctx, ameliaCustomerID, periodID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return OutcomeFailed, errs.Mark(err, ErrBookingCreateFailed)
	}
	if existing != nil {
		slog.Info("booking already active", "customer_id", ameliaCustomerID, "period_id", periodID, "booking_id", existing.ID)
		return OutcomeAlreadyBooked, nil
	}

	_, err = c.bookings.Create(ctx, NewBooking{
		CustomerID:    ameliaCustomerID,
		EventPeriodID: periodID,
		Status:        "approved",
		Formula:       line.Formula,
		OrderID:       orderID,
	})
	if err != nil {
		return OutcomeFailed, errs.Mark(err, ErrBookingCreateFailed)
	}
	return OutcomeBooked, nil
}

func (c *registrationCommandsImpl) registerRemotely(
	ctx context.Context,
	identity IdentityRecord,
	eventID, periodID int64,
	line OrderLine,
	pay PaymentContext,
) {
	err := c.gateway.Register(ctx, BookingRegistration{
		Email:          identity.Email,
		FirstName:      identity.FirstName,
		LastName:       identity.LastName,
		Phone:          identity.Phone,
		EventID:        eventID,
		EventPeriodID:  &periodID,
		Formula:        line.Formula,
		PlanName:       pay.PlanName,
		SubscriptionID: pay.SubscriptionID,
		AmountCents:    pay.AmountCents,
	})
	if err != nil {
		slog.Warn("remote booking registration failed",
			"email", identity.Email, "event_id", eventID, "period_id", periodID, "error", err)
	}
}

package billing

import "time"

type SubscriptionStatus string

const (
	StatusActive        SubscriptionStatus = "active"
	StatusPaused        SubscriptionStatus = "paused"
	StatusPaymentFailed SubscriptionStatus = "payment_failed"
	StatusCompleted     SubscriptionStatus = "completed"
	StatusCancelled     SubscriptionStatus = "cancelled"
)

// Terminal statuses accept no further payment signals.
func (s SubscriptionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Schedule is the computed payment timeline for a new subscription.
type Schedule struct {
	StartDate        time.Time
	NextPaymentDate  time.Time
	InstallmentsPaid int32
	Status           SubscriptionStatus
	EndDate          *time.Time
}

// ComputeSchedule derives start/next/end dates and the pre-paid installment
// count for an order placed at "now" against a season.
//
// A subscription for a season already underway starts immediately, not
// retroactively, and the first real payment is assumed to cover the missed
// installments (catch-up heuristic, see MissedInstallments).
func ComputeSchedule(now, seasonStart time.Time, seasonEnd *time.Time, f Frequency, installmentsTotal int32) Schedule {
	start := now
	if now.Before(seasonStart) {
		start = seasonStart
	}

	var paid int32
	if seasonStart.Before(start) {
		missed := MissedInstallments(seasonStart, start, f)
		paid = missed + 1
		if installmentsTotal > 0 && paid > installmentsTotal {
			paid = installmentsTotal
		}
	}

	s := Schedule{
		StartDate:        start,
		NextPaymentDate:  f.Next(start),
		InstallmentsPaid: paid,
		Status:           StatusActive,
	}

	if installmentsTotal > 0 && paid >= installmentsTotal {
		today := truncateToDay(now)
		s.Status = StatusCompleted
		s.EndDate = &today
		return s
	}

	if seasonEnd != nil && seasonEnd.After(start) {
		end := *seasonEnd
		s.EndDate = &end
	}
	return s
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

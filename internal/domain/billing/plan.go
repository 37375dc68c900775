package billing

import (
	"errors"
	"math"
	"time"
)

var ErrUnknownFrequency = errors.New("unknown payment frequency")

type Frequency string

const (
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return Frequency(s), nil
	}
	return "", ErrUnknownFrequency
}

// IntervalDays is the fixed days-per-interval table used by the catch-up
// estimate. It is a deliberate approximation (30 for monthly, 365 for
// annual), not calendar arithmetic.
func (f Frequency) IntervalDays() float64 {
	switch f {
	case FrequencyHourly:
		return 0.042
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 90
	case FrequencyAnnual:
		return 365
	default:
		return 30
	}
}

// Next advances a payment anchor by one plan interval. Calendar-based
// frequencies use AddDate so month/year boundaries land on the same day of
// month; the sub-weekly ones are fixed durations.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyHourly:
		return t.Add(time.Hour)
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyAnnual:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// InstallmentAmountCents splits a total into equal installments, rounded
// half-up on the cent. The installments may sum to one cent less than the
// total; that discrepancy is accepted, not corrected.
func InstallmentAmountCents(totalCents int64, installments int32) int64 {
	if installments <= 0 {
		return totalCents
	}
	return int64(math.Round(float64(totalCents) / float64(installments)))
}

// MissedInstallments estimates how many installments would already be owed
// for a season that started in the past, using the fixed interval table.
func MissedInstallments(seasonStart, now time.Time, f Frequency) int32 {
	elapsed := now.Sub(seasonStart).Hours() / 24
	if elapsed <= 0 {
		return 0
	}
	return int32(elapsed / f.IntervalDays())
}

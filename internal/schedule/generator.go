// Package schedule implements the contract payment scheduling engine:
// schedule generation, paid/open partitioning, rescheduling, renewal and
// the fee/commission arithmetic. Everything in this package is pure;
// the current date is always a parameter, never read from a clock.
package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentware/lease-engine/internal/domain"
	customError "github.com/rentware/lease-engine/pkg/errors"
)

// ValidateDuration checks a candidate duration against a frequency's
// months-per-period. Zero or negative durations are rejected before the
// divisibility check.
func ValidateDuration(months int, frequency domain.Frequency) error {
	if months <= 0 {
		return customError.WrapInvalidDuration(months)
	}
	if months%frequency.MonthsPerPeriod() != 0 {
		return customError.WrapIncompatibleDuration(months, frequency.PeriodUnit())
	}
	return nil
}

// GenerateParams describes one schedule generation run. FirstSequence is
// the sequence number assigned to the first generated period; callers
// continue numbering from the contract's highest existing sequence so
// numbers are never reused after a reschedule deletes open payments.
type GenerateParams struct {
	ContractID     string
	StartDate      time.Time
	DurationMonths int
	Frequency      domain.Frequency
	Rate           decimal.Decimal
	FirstSequence  int
}

// Generate builds the ordered, gapless sequence of payments covering
// [start, start + duration months - 1 day].
//
// Period i (0-indexed) spans [start + i*m months, start + (i+1)*m months - 1 day]
// where m is the frequency's months-per-period. Every boundary is derived
// from the original start date, so adjacent periods are contiguous by
// construction even across month-end normalization.
func Generate(p GenerateParams) ([]*domain.Payment, error) {
	if !p.Rate.IsPositive() {
		return nil, customError.WrapInvalidRate(p.Rate.String())
	}
	if err := ValidateDuration(p.DurationMonths, p.Frequency); err != nil {
		return nil, err
	}

	m := p.Frequency.MonthsPerPeriod()
	k := p.DurationMonths / m
	amount := p.Rate.Mul(decimal.NewFromInt(int64(m)))
	start := DateOnly(p.StartDate)

	firstSeq := p.FirstSequence
	if firstSeq < 1 {
		firstSeq = 1
	}

	payments := make([]*domain.Payment, 0, k)
	for i := 0; i < k; i++ {
		periodStart := start.AddDate(0, i*m, 0)
		periodEnd := start.AddDate(0, (i+1)*m, 0).AddDate(0, 0, -1)

		payments = append(payments, &domain.Payment{
			ID:             uuid.New(),
			ContractID:     p.ContractID,
			SequenceNumber: firstSeq + i,
			PeriodStart:    periodStart,
			PeriodEnd:      periodEnd,
			PeriodMonths:   m,
			Amount:         amount,
		})
	}

	return payments, nil
}

// DateOnly truncates a timestamp to a UTC calendar date. All period
// arithmetic in the engine operates on dates at this granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b, negative
// when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentware/lease-engine/internal/domain"
	"github.com/rentware/lease-engine/pkg/money"
)

// LateFee is the surcharge computed for an open payment past its grace
// period.
type LateFee struct {
	DaysLate int
	Fee      decimal.Decimal
	TotalDue decimal.Decimal
}

// ComputeLateFee calculates the late-fee surcharge for a payment.
//
// daysLate counts from one grace period past the period end. The fee is
// charged in whole 30-day blocks, rounded up, matching the whole-month
// granularity used everywhere else in the engine:
//
//	fee = amount * lateFeeRate/100 * ceil(daysLate/30)
//
// Settled payments and payments still inside the grace period carry no
// fee.
func ComputeLateFee(payment *domain.Payment, now time.Time, gracePeriodDays int, lateFeeRate decimal.Decimal) LateFee {
	result := LateFee{Fee: decimal.Zero, TotalDue: payment.Amount}

	if payment.IsPaid() {
		return result
	}

	deadline := DateOnly(payment.PeriodEnd).AddDate(0, 0, gracePeriodDays)
	daysLate := DaysBetween(deadline, now)
	if daysLate <= 0 {
		return result
	}

	blocks := (daysLate + 29) / 30
	fee := money.PercentOf(payment.Amount, lateFeeRate).Mul(decimal.NewFromInt(int64(blocks)))

	result.DaysLate = daysLate
	result.Fee = fee
	result.TotalDue = payment.Amount.Add(fee)
	return result
}

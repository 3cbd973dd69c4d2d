package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/rentware/lease-engine/pkg/money"
)

// OwnerStatement is the owner-side settlement for a billing period:
// gross rent collected, minus commission, minus deductions.
type OwnerStatement struct {
	GrossCollected   decimal.Decimal
	CommissionAmount decimal.Decimal
	Maintenance      decimal.Decimal
	OtherDeductions  decimal.Decimal
	NetAmount        decimal.Decimal

	// NegativeNet flags that deductions exceeded the gross for the
	// period. This is a warning, not an error: a major repair can
	// legitimately cost more than that period's rent.
	NegativeNet bool
}

// ComputeCommission works out the owner's net proceeds.
//
//	commission = gross * commissionRate/100
//	net        = gross - commission - maintenance - otherDeductions
//
// The net amount is reported as-is when negative, never clamped.
func ComputeCommission(gross, commissionRate, maintenance, otherDeductions decimal.Decimal) OwnerStatement {
	commission := money.PercentOf(gross, commissionRate)
	net := gross.Sub(commission).Sub(maintenance).Sub(otherDeductions)

	return OwnerStatement{
		GrossCollected:   gross,
		CommissionAmount: commission,
		Maintenance:      maintenance,
		OtherDeductions:  otherDeductions,
		NetAmount:        net,
		NegativeNet:      net.IsNegative(),
	}
}

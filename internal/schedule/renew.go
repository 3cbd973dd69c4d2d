package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/rentware/lease-engine/internal/domain"
	customError "github.com/rentware/lease-engine/pkg/errors"
)

// RenewParams extends a contract past its current end date.
type RenewParams struct {
	NewRate         decimal.Decimal
	ExtensionMonths int
	NewFrequency    domain.Frequency
}

// Renew appends a new tail of payments after the contract's current end
// date. Nothing in the existing schedule, paid or unpaid, is touched;
// the delta carries no deletions. The contract's rate and frequency
// follow the new tail's terms going forward while historical payments
// keep their original amounts.
//
// Checking the extension span against sibling contracts on the same unit
// is the caller's responsibility; this function only sees one contract.
func Renew(contract *domain.Contract, payments []*domain.Payment, p RenewParams) (*domain.ScheduleDelta, error) {
	if !contract.IsActive() {
		return nil, customError.WrapContractState(contract.ContractID, contract.Status)
	}

	if !p.NewRate.IsPositive() {
		return nil, customError.WrapInvalidRate(p.NewRate.String())
	}
	if err := ValidateDuration(p.ExtensionMonths, p.NewFrequency); err != nil {
		return nil, err
	}

	maxSeq := 0
	for _, payment := range payments {
		if payment.SequenceNumber > maxSeq {
			maxSeq = payment.SequenceNumber
		}
	}

	anchor := DateOnly(contract.EndDate).AddDate(0, 0, 1)
	created, err := Generate(GenerateParams{
		ContractID:     contract.ContractID,
		StartDate:      anchor,
		DurationMonths: p.ExtensionMonths,
		Frequency:      p.NewFrequency,
		Rate:           p.NewRate,
		FirstSequence:  maxSeq + 1,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleDelta{
		CreatedPayments:   created,
		NewDurationMonths: contract.DurationMonths + p.ExtensionMonths,
		NewEndDate:        created[len(created)-1].PeriodEnd,
	}, nil
}

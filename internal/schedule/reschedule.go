package schedule

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentware/lease-engine/internal/domain"
	customError "github.com/rentware/lease-engine/pkg/errors"
)

// RescheduleParams re-parameterizes the unsettled tail of a contract.
type RescheduleParams struct {
	NewRate          decimal.Decimal
	AdditionalMonths int
	NewFrequency     domain.Frequency
}

// Reschedule replaces a contract's open payments with a freshly generated
// tail, leaving settled payments untouched. The new tail is anchored one
// day after the paid-through boundary, so the resulting full schedule
// (paid union created) stays contiguous. With zero paid payments the
// reschedule degenerates to a full regeneration from the contract's
// start date.
//
// The returned delta must be applied atomically: delete the open
// payments, insert the created ones, and update the contract's duration,
// end date, rate and frequency in one transaction.
func Reschedule(contract *domain.Contract, payments []*domain.Payment, p RescheduleParams) (*domain.ScheduleDelta, error) {
	if !contract.IsActive() {
		return nil, customError.WrapContractState(contract.ContractID, contract.Status)
	}

	part, err := PartitionPayments(contract.ContractID, payments)
	if err != nil {
		return nil, err
	}

	if !p.NewRate.IsPositive() {
		return nil, customError.WrapInvalidRate(p.NewRate.String())
	}
	if err := ValidateDuration(p.AdditionalMonths, p.NewFrequency); err != nil {
		return nil, err
	}

	anchor := DateOnly(contract.StartDate)
	if part.PaidThrough != nil {
		anchor = part.PaidThrough.AddDate(0, 0, 1)
	}

	created, err := Generate(GenerateParams{
		ContractID:     contract.ContractID,
		StartDate:      anchor,
		DurationMonths: p.AdditionalMonths,
		Frequency:      p.NewFrequency,
		Rate:           p.NewRate,
		FirstSequence:  part.MaxSequence + 1,
	})
	if err != nil {
		return nil, err
	}

	deleted := make([]uuid.UUID, 0, len(part.Open))
	for _, open := range part.Open {
		deleted = append(deleted, open.ID)
	}

	return &domain.ScheduleDelta{
		DeletedPaymentIDs: deleted,
		CreatedPayments:   created,
		NewDurationMonths: part.PaidMonths + p.AdditionalMonths,
		NewEndDate:        created[len(created)-1].PeriodEnd,
	}, nil
}

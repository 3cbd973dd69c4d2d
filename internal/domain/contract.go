package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ContractStatusDraft      = "draft"
	ContractStatusActive     = "active"
	ContractStatusExpired    = "expired"
	ContractStatusTerminated = "terminated"
	ContractStatusRenewed    = "renewed"
)

const (
	// PartyKindTenant marks a lease whose payments are collected from a tenant.
	PartyKindTenant = "tenant"
	// PartyKindOwner marks a management agreement whose payments are supplied
	// to the property owner net of commission and deductions.
	PartyKindOwner = "owner"
)

// Contract represents a lease (tenant side) or a management agreement
// (owner side). Both flavors share the same scheduling math; the owner
// side additionally carries a commission rate.
type Contract struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ContractID     string          `json:"contract_id" db:"contract_id"`
	PartyKind      string          `json:"party_kind" db:"party_kind"`
	PartyID        string          `json:"party_id" db:"party_id"`
	UnitID         string          `json:"unit_id" db:"unit_id"`
	Rate           decimal.Decimal `json:"rate" db:"rate"`
	DurationMonths int             `json:"duration_months" db:"duration_months"`
	Frequency      Frequency       `json:"payment_frequency" db:"payment_frequency"`
	StartDate      time.Time       `json:"start_date" db:"start_date"`
	EndDate        time.Time       `json:"end_date" db:"end_date"`
	Status         string          `json:"status" db:"status"`
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether scheduling operations may mutate the contract.
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// IsTerminal reports whether the contract's schedule is frozen.
func (c *Contract) IsTerminal() bool {
	switch c.Status {
	case ContractStatusExpired, ContractStatusTerminated, ContractStatusRenewed:
		return true
	}
	return false
}

// EndDateFor derives the inclusive contract end date from a start date and
// a total duration. The whole schedule machinery relies on this exact
// definition: start + duration months - 1 day.
func EndDateFor(start time.Time, durationMonths int) time.Time {
	return start.AddDate(0, durationMonths, 0).AddDate(0, 0, -1)
}

// DTOs for requests and responses

type CreateContractRequest struct {
	ContractID     string          `json:"contract_id" validate:"required"`
	PartyKind      string          `json:"party_kind" validate:"required,oneof=tenant owner"`
	PartyID        string          `json:"party_id" validate:"required"`
	UnitID         string          `json:"unit_id" validate:"required"`
	Rate           decimal.Decimal `json:"rate" validate:"required,decimal_gt=0"`
	DurationMonths int             `json:"duration_months" validate:"required,gt=0"`
	Frequency      string          `json:"payment_frequency" validate:"required,oneof=monthly quarterly semi_annually annually"`
	StartDate      string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	CommissionRate decimal.Decimal `json:"commission_rate" validate:"decimal_gte=0,decimal_lte=100"`
}

type CreateContractResponse struct {
	Contract *Contract `json:"contract"`
}

type ActivateContractResponse struct {
	Contract *Contract  `json:"contract"`
	Schedule []*Payment `json:"schedule"`
}

type RescheduleRequest struct {
	NewRate          decimal.Decimal `json:"new_rate" validate:"required,decimal_gt=0"`
	AdditionalMonths int             `json:"additional_months" validate:"required,gt=0"`
	NewFrequency     string          `json:"new_frequency" validate:"required,oneof=monthly quarterly semi_annually annually"`
	CommissionRate   decimal.Decimal `json:"commission_rate" validate:"decimal_gte=0,decimal_lte=100"`
}

type RenewRequest struct {
	NewRate         decimal.Decimal `json:"new_rate" validate:"required,decimal_gt=0"`
	ExtensionMonths int             `json:"extension_months" validate:"required,gt=0"`
	NewFrequency    string          `json:"new_frequency" validate:"required,oneof=monthly quarterly semi_annually annually"`
}

type ScheduleResponse struct {
	ContractID string     `json:"contract_id"`
	Schedule   []*Payment `json:"schedule"`
}

type RescheduleResponse struct {
	Contract *Contract      `json:"contract"`
	Delta    *ScheduleDelta `json:"delta"`
}

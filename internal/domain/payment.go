package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Derived payment statuses. Status is never stored; it is computed from
// paid_at, period_end, the grace period and the postponement marker.
type PaymentStatus string

const (
	PaymentStatusUpcoming  PaymentStatus = "upcoming"
	PaymentStatusDue       PaymentStatus = "due"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusPostponed PaymentStatus = "postponed"
	PaymentStatusPaid      PaymentStatus = "paid"
)

// Payment is one billing period belonging to exactly one contract.
// Within a contract, payments are strictly ordered by PeriodStart with no
// gaps and no overlaps. Amount is immutable once created; settlement only
// sets PaidAt, postponement only sets PostponedUntil.
type Payment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ContractID     string          `json:"contract_id" db:"contract_id"`
	SequenceNumber int             `json:"sequence_number" db:"sequence_number"`
	PeriodStart    time.Time       `json:"period_start" db:"period_start"`
	PeriodEnd      time.Time       `json:"period_end" db:"period_end"`
	PeriodMonths   int             `json:"period_months" db:"period_months"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	PaidAt         *time.Time      `json:"paid_at" db:"paid_at"`
	PostponedUntil *time.Time      `json:"postponed_until" db:"postponed_until"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// IsPaid reports whether the payment has been settled.
func (p *Payment) IsPaid() bool {
	return p.PaidAt != nil
}

// Status derives the payment's current status for a given observation
// date and grace period.
func (p *Payment) Status(now time.Time, gracePeriodDays int) PaymentStatus {
	if p.IsPaid() {
		return PaymentStatusPaid
	}
	if p.PostponedUntil != nil && now.Before(*p.PostponedUntil) {
		return PaymentStatusPostponed
	}
	if now.Before(p.PeriodEnd) {
		return PaymentStatusUpcoming
	}
	deadline := p.PeriodEnd.AddDate(0, 0, gracePeriodDays)
	if now.After(deadline) {
		return PaymentStatusOverdue
	}
	return PaymentStatusDue
}

// ScheduleDelta is the result of a reschedule or renewal. It is a value
// object: the repository applies it in a single transaction, it is never
// persisted itself.
type ScheduleDelta struct {
	DeletedPaymentIDs []uuid.UUID `json:"deleted_payment_ids"`
	CreatedPayments   []*Payment  `json:"created_payments"`
	NewDurationMonths int         `json:"new_duration_months"`
	NewEndDate        time.Time   `json:"new_end_date"`
}

type SettlePaymentRequest struct {
	PaidAt string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type PostponePaymentRequest struct {
	PostponedUntil string `json:"postponed_until" validate:"required,datetime=2006-01-02"`
}

type LateFeeResponse struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	DaysLate  int             `json:"days_late"`
	Fee       decimal.Decimal `json:"fee"`
	TotalDue  decimal.Decimal `json:"total_due"`
}

type OwnerStatementResponse struct {
	ContractID       string          `json:"contract_id"`
	GrossCollected   decimal.Decimal `json:"gross_collected"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Deductions       decimal.Decimal `json:"deductions"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	NegativeNet      bool            `json:"negative_net"`
}

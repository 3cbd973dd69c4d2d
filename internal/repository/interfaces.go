package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rentware/lease-engine/internal/domain"
)

// ContractRepository defines the interface for contract data operations
type ContractRepository interface {
	// Create persists a new contract
	Create(ctx context.Context, contract *domain.Contract) error

	// GetByContractID retrieves a contract by its human-facing ID
	GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error)

	// Update updates a contract's mutable fields
	Update(ctx context.Context, contract *domain.Contract) error

	// FindOverlapping returns contracts on the same unit whose span
	// intersects [spanStart, spanEnd], excluding the given contract
	FindOverlapping(ctx context.Context, unitID string, spanStart, spanEnd time.Time, excludeContractID string) ([]*domain.Contract, error)

	// ExpireEndedBefore moves active contracts whose end date passed
	// into the expired status, returning how many were updated
	ExpireEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// CreateBatch inserts a generated schedule in one transaction
	CreateBatch(ctx context.Context, payments []*domain.Payment) error

	// GetByContractID retrieves all payments for a contract ordered by
	// period start
	GetByContractID(ctx context.Context, contractID string) ([]*domain.Payment, error)

	// GetByID retrieves a single payment
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetSettledByUnit returns settled payments across all contracts of
	// the given party kind on a unit whose period starts inside
	// [from, to], regardless of each contract's current status
	GetSettledByUnit(ctx context.Context, unitID, partyKind string, from, to time.Time) ([]*domain.Payment, error)

	// Settle marks a payment paid; amount and dates stay untouched
	Settle(ctx context.Context, id uuid.UUID, paidAt time.Time) error

	// Postpone records a postponement marker on an open payment
	Postpone(ctx context.Context, id uuid.UUID, until time.Time) error

	// ApplyDelta applies a reschedule/renewal delta and the contract
	// update in a single transaction: delete the open tail, insert the
	// created payments, persist the contract's new duration, end date,
	// rate and frequency. Any failure rolls the whole delta back.
	ApplyDelta(ctx context.Context, contract *domain.Contract, delta *domain.ScheduleDelta) error
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rentware/lease-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const insertPaymentQuery = `
	INSERT INTO payments (id, contract_id, sequence_number, period_start, period_end, period_months, amount, paid_at, postponed_until, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []*domain.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertPayments(ctx, tx, payments); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByContractID(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	query := `
		SELECT id, contract_id, sequence_number, period_start, period_end, period_months, amount, paid_at, postponed_until, created_at
		FROM payments
		WHERE contract_id = $1
		ORDER BY period_start
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, contractID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, contract_id, sequence_number, period_start, period_end, period_months, amount, paid_at, postponed_until, created_at
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetSettledByUnit(ctx context.Context, unitID, partyKind string, from, to time.Time) ([]*domain.Payment, error) {
	// No contract status filter: settled rent on a lease that has since
	// expired or terminated still counts.
	query := `
		SELECT p.id, p.contract_id, p.sequence_number, p.period_start, p.period_end, p.period_months, p.amount, p.paid_at, p.postponed_until, p.created_at
		FROM payments p
		JOIN contracts c ON c.contract_id = p.contract_id
		WHERE c.unit_id = $1
		  AND c.party_kind = $2
		  AND p.paid_at IS NOT NULL
		  AND p.period_start >= $3
		  AND p.period_start <= $4
		ORDER BY p.period_start
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, unitID, partyKind, from, to)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) Settle(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	query := `
		UPDATE payments
		SET paid_at = $2
		WHERE id = $1 AND paid_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, id, paidAt)
	return err
}

func (r *paymentRepository) Postpone(ctx context.Context, id uuid.UUID, until time.Time) error {
	query := `
		UPDATE payments
		SET postponed_until = $2
		WHERE id = $1 AND paid_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, id, until)
	return err
}

// ApplyDelta commits a reschedule/renewal as one unit. A reader holding a
// consistent snapshot never observes the schedule with neither the old
// open payments nor the new ones.
func (r *paymentRepository) ApplyDelta(ctx context.Context, contract *domain.Contract, delta *domain.ScheduleDelta) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if len(delta.DeletedPaymentIDs) > 0 {
		ids := make([]string, 0, len(delta.DeletedPaymentIDs))
		for _, id := range delta.DeletedPaymentIDs {
			ids = append(ids, id.String())
		}

		deleteQuery := `DELETE FROM payments WHERE id = ANY($1) AND paid_at IS NULL`
		if _, err := tx.ExecContext(ctx, deleteQuery, pq.Array(ids)); err != nil {
			return err
		}
	}

	if err := insertPayments(ctx, tx, delta.CreatedPayments); err != nil {
		return err
	}

	updateQuery := `
		UPDATE contracts
		SET rate = $2, duration_months = $3, payment_frequency = $4, end_date = $5, commission_rate = $6, updated_at = $7
		WHERE contract_id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery,
		contract.ContractID,
		contract.Rate,
		contract.DurationMonths,
		contract.Frequency,
		contract.EndDate,
		contract.CommissionRate,
		contract.UpdatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPayments(ctx context.Context, tx *sqlx.Tx, payments []*domain.Payment) error {
	for _, payment := range payments {
		_, err := tx.ExecContext(ctx, insertPaymentQuery,
			payment.ID,
			payment.ContractID,
			payment.SequenceNumber,
			payment.PeriodStart,
			payment.PeriodEnd,
			payment.PeriodMonths,
			payment.Amount,
			payment.PaidAt,
			payment.PostponedUntil,
			payment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

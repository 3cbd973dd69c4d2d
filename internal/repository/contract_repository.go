package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rentware/lease-engine/internal/domain"
)

type contractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	query := `
		INSERT INTO contracts (id, contract_id, party_kind, party_id, unit_id, rate, duration_months, payment_frequency, start_date, end_date, status, commission_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		contract.ID,
		contract.ContractID,
		contract.PartyKind,
		contract.PartyID,
		contract.UnitID,
		contract.Rate,
		contract.DurationMonths,
		contract.Frequency,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
		contract.CommissionRate,
		contract.CreatedAt,
		contract.UpdatedAt,
	)

	return err
}

func (r *contractRepository) GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error) {
	query := `
		SELECT id, contract_id, party_kind, party_id, unit_id, rate, duration_months, payment_frequency, start_date, end_date, status, commission_rate, created_at, updated_at
		FROM contracts
		WHERE contract_id = $1
	`

	var contract domain.Contract
	err := r.db.GetContext(ctx, &contract, query, contractID)
	if err != nil {
		return nil, err
	}

	return &contract, nil
}

func (r *contractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	query := `
		UPDATE contracts
		SET rate = $2, duration_months = $3, payment_frequency = $4, end_date = $5, status = $6, commission_rate = $7, updated_at = $8
		WHERE contract_id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		contract.ContractID,
		contract.Rate,
		contract.DurationMonths,
		contract.Frequency,
		contract.EndDate,
		contract.Status,
		contract.CommissionRate,
		contract.UpdatedAt,
	)

	return err
}

func (r *contractRepository) FindOverlapping(ctx context.Context, unitID string, spanStart, spanEnd time.Time, excludeContractID string) ([]*domain.Contract, error) {
	query := `
		SELECT id, contract_id, party_kind, party_id, unit_id, rate, duration_months, payment_frequency, start_date, end_date, status, commission_rate, created_at, updated_at
		FROM contracts
		WHERE unit_id = $1
		  AND contract_id != $2
		  AND status IN ('draft', 'active')
		  AND start_date <= $4
		  AND end_date >= $3
		ORDER BY start_date
	`

	var contracts []*domain.Contract
	err := r.db.SelectContext(ctx, &contracts, query, unitID, excludeContractID, spanStart, spanEnd)
	if err != nil {
		return nil, err
	}

	return contracts, nil
}

func (r *contractRepository) ExpireEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE contracts
		SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND end_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

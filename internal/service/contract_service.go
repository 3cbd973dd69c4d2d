package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rentware/lease-engine/internal/config"
	"github.com/rentware/lease-engine/internal/domain"
	"github.com/rentware/lease-engine/internal/repository"
	"github.com/rentware/lease-engine/internal/schedule"
	customError "github.com/rentware/lease-engine/pkg/errors"
)

// ContractService orchestrates the scheduling engine over persisted
// contracts and payments. All date-dependent computation goes through
// the injected clock so tests can pin "today".
type ContractService struct {
	contractRepo repository.ContractRepository
	paymentRepo  repository.PaymentRepository
	redis        *redis.Client
	config       *config.Config
	logger       *zap.Logger
	now          func() time.Time
}

func NewContractService(
	contractRepo repository.ContractRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		redis:        redisClient,
		config:       cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock replaces the service's clock. Intended for tests.
func (s *ContractService) WithClock(now func() time.Time) *ContractService {
	s.now = now
	return s
}

// CreateContract registers a new contract in draft status. The span is
// validated against sibling contracts on the same unit immediately so a
// conflicting draft is rejected before it ever produces a schedule.
func (s *ContractService) CreateContract(ctx context.Context, request *domain.CreateContractRequest) (*domain.Contract, error) {
	existing, err := s.contractRepo.GetByContractID(ctx, request.ContractID)
	if err == nil && existing != nil {
		return nil, customError.WrapContractAlreadyExists(request.ContractID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPersistenceError(err)
	}

	frequency, err := domain.ParseFrequency(request.Frequency)
	if err != nil {
		return nil, customError.NewBusinessError(customError.ErrCodeIncompatibleDuration, "payment_frequency", err.Error(), err)
	}
	if !request.Rate.IsPositive() {
		return nil, customError.WrapInvalidRate(request.Rate.String())
	}
	if err := schedule.ValidateDuration(request.DurationMonths, frequency); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", request.StartDate)
	if err != nil {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidDuration, "start_date", "start_date must be YYYY-MM-DD", err)
	}
	startDate = schedule.DateOnly(startDate)
	endDate := domain.EndDateFor(startDate, request.DurationMonths)

	if err := s.checkOverlap(ctx, request.UnitID, request.ContractID, request.PartyKind, startDate, endDate); err != nil {
		return nil, err
	}

	now := s.now()
	contract := &domain.Contract{
		ID:             uuid.New(),
		ContractID:     request.ContractID,
		PartyKind:      request.PartyKind,
		PartyID:        request.PartyID,
		UnitID:         request.UnitID,
		Rate:           request.Rate,
		DurationMonths: request.DurationMonths,
		Frequency:      frequency,
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         domain.ContractStatusDraft,
		CommissionRate: request.CommissionRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	s.logger.Info("contract created",
		zap.String("contract_id", contract.ContractID),
		zap.String("party_kind", contract.PartyKind),
		zap.Int("duration_months", contract.DurationMonths),
		zap.String("frequency", contract.Frequency.String()),
	)

	return contract, nil
}

// ActivateContract transitions a draft contract to active and generates
// its initial payment schedule.
func (s *ContractService) ActivateContract(ctx context.Context, contractID string) (*domain.Contract, []*domain.Payment, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	if contract.Status != domain.ContractStatusDraft {
		return nil, nil, customError.WrapContractState(contractID, contract.Status)
	}

	payments, err := schedule.Generate(schedule.GenerateParams{
		ContractID:     contract.ContractID,
		StartDate:      contract.StartDate,
		DurationMonths: contract.DurationMonths,
		Frequency:      contract.Frequency,
		Rate:           contract.Rate,
		FirstSequence:  1,
	})
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	for _, payment := range payments {
		payment.CreatedAt = now
	}

	if err := s.paymentRepo.CreateBatch(ctx, payments); err != nil {
		return nil, nil, customError.WrapPersistenceError(err)
	}

	contract.Status = domain.ContractStatusActive
	contract.UpdatedAt = now
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, nil, customError.WrapPersistenceError(err)
	}
	s.invalidateScheduleCache(ctx, contractID)

	s.logger.Info("contract activated",
		zap.String("contract_id", contractID),
		zap.Int("periods", len(payments)),
	)

	return contract, payments, nil
}

// Reschedule replaces the unsettled tail of an active contract's schedule
// with new terms, preserving settled history. The delta is applied in one
// transaction; a failure leaves the old schedule fully intact.
func (s *ContractService) Reschedule(ctx context.Context, contractID string, request *domain.RescheduleRequest) (*domain.Contract, *domain.ScheduleDelta, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}

	frequency, err := domain.ParseFrequency(request.NewFrequency)
	if err != nil {
		return nil, nil, customError.NewBusinessError(customError.ErrCodeIncompatibleDuration, "new_frequency", err.Error(), err)
	}

	payments, err := s.paymentRepo.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, nil, customError.WrapPersistenceError(err)
	}
	if len(payments) == 0 {
		return nil, nil, customError.WrapContractState(contractID, "active without a schedule")
	}

	delta, err := schedule.Reschedule(contract, payments, schedule.RescheduleParams{
		NewRate:          request.NewRate,
		AdditionalMonths: request.AdditionalMonths,
		NewFrequency:     frequency,
	})
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	for _, payment := range delta.CreatedPayments {
		payment.CreatedAt = now
	}

	contract.Rate = request.NewRate
	contract.Frequency = frequency
	contract.DurationMonths = delta.NewDurationMonths
	contract.EndDate = delta.NewEndDate
	contract.UpdatedAt = now
	if contract.PartyKind == domain.PartyKindOwner && !request.CommissionRate.IsZero() {
		contract.CommissionRate = request.CommissionRate
	}

	if err := s.paymentRepo.ApplyDelta(ctx, contract, delta); err != nil {
		return nil, nil, customError.WrapPersistenceError(err)
	}
	s.invalidateScheduleCache(ctx, contractID)

	s.logger.Info("contract rescheduled",
		zap.String("contract_id", contractID),
		zap.Int("deleted_payments", len(delta.DeletedPaymentIDs)),
		zap.Int("created_payments", len(delta.CreatedPayments)),
		zap.Int("new_duration_months", delta.NewDurationMonths),
	)

	return contract, delta, nil
}

// Renew appends a tail of payments after the contract's current end date.
// The existing schedule is untouched; the extension span must not collide
// with another contract already scheduled for the same unit.
func (s *ContractService) Renew(ctx context.Context, contractID string, request *domain.RenewRequest) (*domain.Contract, *domain.ScheduleDelta, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}

	frequency, err := domain.ParseFrequency(request.NewFrequency)
	if err != nil {
		return nil, nil, customError.NewBusinessError(customError.ErrCodeIncompatibleDuration, "new_frequency", err.Error(), err)
	}

	payments, err := s.paymentRepo.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, nil, customError.WrapPersistenceError(err)
	}

	delta, err := schedule.Renew(contract, payments, schedule.RenewParams{
		NewRate:         request.NewRate,
		ExtensionMonths: request.ExtensionMonths,
		NewFrequency:    frequency,
	})
	if err != nil {
		return nil, nil, err
	}

	extensionStart := schedule.DateOnly(contract.EndDate).AddDate(0, 0, 1)
	if err := s.checkOverlap(ctx, contract.UnitID, contract.ContractID, contract.PartyKind, extensionStart, delta.NewEndDate); err != nil {
		return nil, nil, err
	}

	now := s.now()
	for _, payment := range delta.CreatedPayments {
		payment.CreatedAt = now
	}

	contract.Rate = request.NewRate
	contract.Frequency = frequency
	contract.DurationMonths = delta.NewDurationMonths
	contract.EndDate = delta.NewEndDate
	contract.UpdatedAt = now

	if err := s.paymentRepo.ApplyDelta(ctx, contract, delta); err != nil {
		return nil, nil, customError.WrapPersistenceError(err)
	}
	s.invalidateScheduleCache(ctx, contractID)

	s.logger.Info("contract renewed",
		zap.String("contract_id", contractID),
		zap.Int("extension_months", request.ExtensionMonths),
		zap.Time("new_end_date", delta.NewEndDate),
	)

	return contract, delta, nil
}

// SettlePayment marks an open payment paid. Amount and period dates stay
// untouched. Only active contracts accept settlements.
func (s *ContractService) SettlePayment(ctx context.Context, contractID string, paymentID uuid.UUID, paidAt *time.Time) (*domain.Payment, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, customError.WrapContractState(contractID, contract.Status)
	}

	payment, err := s.getPayment(ctx, contractID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, customError.WrapPaymentAlreadySettled(paymentID.String())
	}

	settledAt := s.now()
	if paidAt != nil {
		settledAt = *paidAt
	}

	if err := s.paymentRepo.Settle(ctx, paymentID, settledAt); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	s.invalidateScheduleCache(ctx, contractID)

	payment.PaidAt = &settledAt

	s.logger.Info("payment settled",
		zap.String("contract_id", contractID),
		zap.String("payment_id", paymentID.String()),
		zap.Int("sequence_number", payment.SequenceNumber),
	)

	return payment, nil
}

// PostponePayment records a delay marker on an open payment without
// changing its amount or period dates. Only active contracts accept
// postponements.
func (s *ContractService) PostponePayment(ctx context.Context, contractID string, paymentID uuid.UUID, until time.Time) (*domain.Payment, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, customError.WrapContractState(contractID, contract.Status)
	}

	payment, err := s.getPayment(ctx, contractID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, customError.WrapPaymentAlreadySettled(paymentID.String())
	}

	until = schedule.DateOnly(until)
	if err := s.paymentRepo.Postpone(ctx, paymentID, until); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	s.invalidateScheduleCache(ctx, contractID)

	payment.PostponedUntil = &until
	return payment, nil
}

// GetSchedule returns the contract's full payment schedule, served from
// the redis cache when possible.
func (s *ContractService) GetSchedule(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	cacheKey := scheduleCacheKey(contractID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var payments []*domain.Payment
			if err := json.Unmarshal([]byte(cached), &payments); err == nil {
				return payments, nil
			}
		}
	}

	if _, err := s.getContract(ctx, contractID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(payments); err == nil {
			if err := s.redis.Set(ctx, cacheKey, encoded, s.config.GetScheduleCacheTTL()).Err(); err != nil {
				s.logger.Warn("schedule cache write failed", zap.String("contract_id", contractID), zap.Error(err))
			}
		}
	}

	return payments, nil
}

// LateFee computes the current late-fee surcharge for a payment.
func (s *ContractService) LateFee(ctx context.Context, contractID string, paymentID uuid.UUID) (*domain.LateFeeResponse, error) {
	payment, err := s.getPayment(ctx, contractID, paymentID)
	if err != nil {
		return nil, err
	}

	fee := schedule.ComputeLateFee(payment, s.now(), s.config.Business.GracePeriodDays, s.config.GetLateFeeRate())

	return &domain.LateFeeResponse{
		PaymentID: payment.ID,
		DaysLate:  fee.DaysLate,
		Fee:       fee.Fee,
		TotalDue:  fee.TotalDue,
	}, nil
}

// OwnerStatement computes the owner's net proceeds for a billing window:
// the rent settled on tenant contracts for the same unit during the
// window, minus commission and deductions.
func (s *ContractService) OwnerStatement(ctx context.Context, contractID string, windowStart, windowEnd time.Time, maintenance, otherDeductions decimal.Decimal) (*domain.OwnerStatementResponse, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.PartyKind != domain.PartyKindOwner {
		return nil, customError.WrapContractState(contractID, "not an owner-side contract")
	}

	windowStart = schedule.DateOnly(windowStart)
	windowEnd = schedule.DateOnly(windowEnd)

	// Gross keys on the settled payments themselves, not on the tenant
	// contract's current status: rent collected under a lease that has
	// since expired still belongs on the statement.
	settled, err := s.paymentRepo.GetSettledByUnit(ctx, contract.UnitID, domain.PartyKindTenant, windowStart, windowEnd)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	gross := decimal.Zero
	for _, p := range settled {
		gross = gross.Add(p.Amount)
	}

	statement := schedule.ComputeCommission(gross, contract.CommissionRate, maintenance, otherDeductions)
	if statement.NegativeNet {
		s.logger.Warn("owner statement net is negative",
			zap.String("contract_id", contractID),
			zap.String("net_amount", statement.NetAmount.String()),
		)
	}

	return &domain.OwnerStatementResponse{
		ContractID:       contractID,
		GrossCollected:   statement.GrossCollected,
		CommissionAmount: statement.CommissionAmount,
		Deductions:       statement.Maintenance.Add(statement.OtherDeductions),
		NetAmount:        statement.NetAmount,
		NegativeNet:      statement.NegativeNet,
	}, nil
}

// ExpireDueContracts moves active contracts past their end date to
// expired. Called by the scheduler daemon.
func (s *ContractService) ExpireDueContracts(ctx context.Context) (int64, error) {
	count, err := s.contractRepo.ExpireEndedBefore(ctx, schedule.DateOnly(s.now()))
	if err != nil {
		return 0, customError.WrapPersistenceError(err)
	}
	if count > 0 {
		s.logger.Info("expired contracts past end date", zap.Int64("count", count))
	}
	return count, nil
}

func (s *ContractService) getContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByContractID(ctx, contractID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapContractNotFound(contractID)
		}
		return nil, customError.WrapPersistenceError(err)
	}
	return contract, nil
}

func (s *ContractService) getPayment(ctx context.Context, contractID string, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, customError.WrapPersistenceError(err)
	}
	if payment.ContractID != contractID {
		return nil, customError.WrapPaymentNotFound(paymentID.String())
	}
	return payment, nil
}

func (s *ContractService) checkOverlap(ctx context.Context, unitID, contractID, partyKind string, spanStart, spanEnd time.Time) error {
	others, err := s.contractRepo.FindOverlapping(ctx, unitID, spanStart, spanEnd, contractID)
	if err != nil {
		return customError.WrapPersistenceError(err)
	}
	// Tenant and owner contracts coexist on one unit; only contracts of
	// the same flavor compete for the span.
	for _, other := range others {
		if other.PartyKind == partyKind {
			return customError.WrapOverlap(unitID, other.ContractID)
		}
	}
	return nil
}

func (s *ContractService) invalidateScheduleCache(ctx context.Context, contractID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, scheduleCacheKey(contractID)).Err(); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("contract_id", contractID), zap.Error(err))
	}
}

func scheduleCacheKey(contractID string) string {
	return fmt.Sprintf("schedule:%s", contractID)
}

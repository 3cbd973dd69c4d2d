package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentware/lease-engine/internal/config"
	"github.com/rentware/lease-engine/internal/domain"
	"github.com/rentware/lease-engine/internal/schedule"
	"github.com/rentware/lease-engine/pkg/errors"
	"github.com/rentware/lease-engine/tests/mocks"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			GracePeriodDays:  5,
			LateFeeRate:      "2",
			ScheduleCacheTTL: "15m",
		},
	}
}

func newTestService(contractRepo *mocks.MockContractRepository, paymentRepo *mocks.MockPaymentRepository, now time.Time) *ContractService {
	svc := NewContractService(contractRepo, paymentRepo, nil, testConfig(), zap.NewNop())
	return svc.WithClock(func() time.Time { return now })
}

func activeQuarterlyContract() *domain.Contract {
	start := date(2025, time.January, 1)
	return &domain.Contract{
		ID:             uuid.New(),
		ContractID:     "CT-100",
		PartyKind:      domain.PartyKindTenant,
		PartyID:        "TN-1",
		UnitID:         "UNIT-7",
		Rate:           decimal.NewFromInt(1000),
		DurationMonths: 12,
		Frequency:      domain.FrequencyQuarterly,
		StartDate:      start,
		EndDate:        domain.EndDateFor(start, 12),
		Status:         domain.ContractStatusActive,
	}
}

func quarterlySchedule(t *testing.T, contractID string) []*domain.Payment {
	t.Helper()
	payments, err := schedule.Generate(schedule.GenerateParams{
		ContractID:     contractID,
		StartDate:      date(2025, time.January, 1),
		DurationMonths: 12,
		Frequency:      domain.FrequencyQuarterly,
		Rate:           decimal.NewFromInt(1000),
		FirstSequence:  1,
	})
	require.NoError(t, err)
	return payments
}

func TestCreateContract_Success(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.January, 1))

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(nil, sql.ErrNoRows)
	contractRepo.On("FindOverlapping", mock.Anything, "UNIT-7", mock.Anything, mock.Anything, "CT-100").
		Return([]*domain.Contract{}, nil)
	contractRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Contract) bool {
		return c.ContractID == "CT-100" && c.Status == domain.ContractStatusDraft
	})).Return(nil)

	contract, err := svc.CreateContract(context.Background(), &domain.CreateContractRequest{
		ContractID:     "CT-100",
		PartyKind:      domain.PartyKindTenant,
		PartyID:        "TN-1",
		UnitID:         "UNIT-7",
		Rate:           decimal.NewFromInt(1000),
		DurationMonths: 12,
		Frequency:      "quarterly",
		StartDate:      "2025-01-01",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusDraft, contract.Status)
	assert.Equal(t, date(2025, time.December, 31), contract.EndDate)
	assert.Equal(t, domain.FrequencyQuarterly, contract.Frequency)

	contractRepo.AssertExpectations(t)
}

func TestCreateContract_RejectsIncompatibleDuration(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.January, 1))

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(nil, sql.ErrNoRows)

	_, err := svc.CreateContract(context.Background(), &domain.CreateContractRequest{
		ContractID:     "CT-100",
		PartyKind:      domain.PartyKindTenant,
		PartyID:        "TN-1",
		UnitID:         "UNIT-7",
		Rate:           decimal.NewFromInt(1000),
		DurationMonths: 7,
		Frequency:      "quarterly",
		StartDate:      "2025-01-01",
	})

	assert.ErrorIs(t, err, errors.ErrIncompatibleDuration)
	contractRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateContract_RejectsSameKindOverlap(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.January, 1))

	sibling := activeQuarterlyContract()
	sibling.ContractID = "CT-OLD"

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(nil, sql.ErrNoRows)
	contractRepo.On("FindOverlapping", mock.Anything, "UNIT-7", mock.Anything, mock.Anything, "CT-100").
		Return([]*domain.Contract{sibling}, nil)

	_, err := svc.CreateContract(context.Background(), &domain.CreateContractRequest{
		ContractID:     "CT-100",
		PartyKind:      domain.PartyKindTenant,
		PartyID:        "TN-2",
		UnitID:         "UNIT-7",
		Rate:           decimal.NewFromInt(1000),
		DurationMonths: 12,
		Frequency:      "quarterly",
		StartDate:      "2025-06-01",
	})

	assert.ErrorIs(t, err, errors.ErrOverlap)
	contractRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateContract_OwnerContractMayCoexistWithTenant(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.January, 1))

	tenantSibling := activeQuarterlyContract()
	tenantSibling.ContractID = "CT-TENANT"

	contractRepo.On("GetByContractID", mock.Anything, "CT-OWNER").Return(nil, sql.ErrNoRows)
	contractRepo.On("FindOverlapping", mock.Anything, "UNIT-7", mock.Anything, mock.Anything, "CT-OWNER").
		Return([]*domain.Contract{tenantSibling}, nil)
	contractRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	contract, err := svc.CreateContract(context.Background(), &domain.CreateContractRequest{
		ContractID:     "CT-OWNER",
		PartyKind:      domain.PartyKindOwner,
		PartyID:        "OW-1",
		UnitID:         "UNIT-7",
		Rate:           decimal.NewFromInt(1000),
		DurationMonths: 12,
		Frequency:      "quarterly",
		StartDate:      "2025-01-01",
		CommissionRate: decimal.NewFromInt(5),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PartyKindOwner, contract.PartyKind)
}

func TestActivateContract_GeneratesInitialSchedule(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.January, 1))

	contract := activeQuarterlyContract()
	contract.Status = domain.ContractStatusDraft

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)
	paymentRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(payments []*domain.Payment) bool {
		return len(payments) == 4 && payments[0].SequenceNumber == 1
	})).Return(nil)
	contractRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Contract) bool {
		return c.Status == domain.ContractStatusActive && c.UpdatedAt.Equal(date(2025, time.January, 1))
	})).Return(nil)

	activated, payments, err := svc.ActivateContract(context.Background(), "CT-100")

	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, activated.Status)
	require.Len(t, payments, 4)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(3000)))

	contractRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestActivateContract_RejectsNonDraft(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.January, 1))

	contract := activeQuarterlyContract()
	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)

	_, _, err := svc.ActivateContract(context.Background(), "CT-100")

	assert.ErrorIs(t, err, errors.ErrContractState)
	paymentRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestReschedule_AppliesDeltaAndUpdatesContract(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	now := date(2025, time.June, 15)
	svc := newTestService(contractRepo, paymentRepo, now)

	contract := activeQuarterlyContract()
	payments := quarterlySchedule(t, contract.ContractID)
	paidAt := date(2025, time.February, 3)
	payments[0].PaidAt = &paidAt
	paidAt2 := date(2025, time.May, 2)
	payments[1].PaidAt = &paidAt2

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)
	paymentRepo.On("GetByContractID", mock.Anything, "CT-100").Return(payments, nil)
	paymentRepo.On("ApplyDelta", mock.Anything,
		mock.MatchedBy(func(c *domain.Contract) bool {
			return c.DurationMonths == 12 &&
				c.Frequency == domain.FrequencyMonthly &&
				c.Rate.Equal(decimal.NewFromInt(1500)) &&
				c.EndDate.Equal(date(2025, time.December, 31)) &&
				c.UpdatedAt.Equal(now)
		}),
		mock.MatchedBy(func(d *domain.ScheduleDelta) bool {
			return len(d.DeletedPaymentIDs) == 2 && len(d.CreatedPayments) == 6
		}),
	).Return(nil)

	updated, delta, err := svc.Reschedule(context.Background(), "CT-100", &domain.RescheduleRequest{
		NewRate:          decimal.NewFromInt(1500),
		AdditionalMonths: 6,
		NewFrequency:     "monthly",
	})

	require.NoError(t, err)
	assert.Equal(t, 12, updated.DurationMonths)
	assert.Equal(t, date(2025, time.July, 1), delta.CreatedPayments[0].PeriodStart)
	for _, p := range delta.CreatedPayments {
		assert.Equal(t, now, p.CreatedAt)
	}

	paymentRepo.AssertExpectations(t)
}

func TestReschedule_StorageFailureSurfacesAsPersistenceError(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.June, 15))

	contract := activeQuarterlyContract()
	payments := quarterlySchedule(t, contract.ContractID)

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)
	paymentRepo.On("GetByContractID", mock.Anything, "CT-100").Return(payments, nil)
	paymentRepo.On("ApplyDelta", mock.Anything, mock.Anything, mock.Anything).Return(sql.ErrTxDone)

	_, _, err := svc.Reschedule(context.Background(), "CT-100", &domain.RescheduleRequest{
		NewRate:          decimal.NewFromInt(1500),
		AdditionalMonths: 6,
		NewFrequency:     "monthly",
	})

	require.Error(t, err)
	var businessErr *errors.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, errors.ErrCodePersistence, businessErr.Code)
}

func TestReschedule_RejectsContractWithoutSchedule(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.June, 15))

	contract := activeQuarterlyContract()
	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)
	paymentRepo.On("GetByContractID", mock.Anything, "CT-100").Return([]*domain.Payment{}, nil)

	_, _, err := svc.Reschedule(context.Background(), "CT-100", &domain.RescheduleRequest{
		NewRate:          decimal.NewFromInt(1500),
		AdditionalMonths: 6,
		NewFrequency:     "monthly",
	})

	assert.ErrorIs(t, err, errors.ErrContractState)
}

func TestRenew_RejectsOverlappingExtension(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.November, 1))

	contract := activeQuarterlyContract()
	payments := quarterlySchedule(t, contract.ContractID)

	next := activeQuarterlyContract()
	next.ContractID = "CT-NEXT"
	next.StartDate = date(2026, time.January, 1)
	next.EndDate = domain.EndDateFor(next.StartDate, 12)

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)
	paymentRepo.On("GetByContractID", mock.Anything, "CT-100").Return(payments, nil)
	contractRepo.On("FindOverlapping", mock.Anything, "UNIT-7", date(2026, time.January, 1), date(2026, time.December, 31), "CT-100").
		Return([]*domain.Contract{next}, nil)

	_, _, err := svc.Renew(context.Background(), "CT-100", &domain.RenewRequest{
		NewRate:         decimal.NewFromInt(1200),
		ExtensionMonths: 12,
		NewFrequency:    "quarterly",
	})

	assert.ErrorIs(t, err, errors.ErrOverlap)
	paymentRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestRenew_AppendsTail(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	now := date(2025, time.November, 1)
	svc := newTestService(contractRepo, paymentRepo, now)

	contract := activeQuarterlyContract()
	payments := quarterlySchedule(t, contract.ContractID)

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(contract, nil)
	paymentRepo.On("GetByContractID", mock.Anything, "CT-100").Return(payments, nil)
	contractRepo.On("FindOverlapping", mock.Anything, "UNIT-7", mock.Anything, mock.Anything, "CT-100").
		Return([]*domain.Contract{}, nil)
	paymentRepo.On("ApplyDelta", mock.Anything, mock.Anything, mock.MatchedBy(func(d *domain.ScheduleDelta) bool {
		return len(d.DeletedPaymentIDs) == 0 &&
			len(d.CreatedPayments) == 4 &&
			d.CreatedPayments[0].PeriodStart.Equal(date(2026, time.January, 1))
	})).Return(nil)

	updated, delta, err := svc.Renew(context.Background(), "CT-100", &domain.RenewRequest{
		NewRate:         decimal.NewFromInt(1200),
		ExtensionMonths: 12,
		NewFrequency:    "quarterly",
	})

	require.NoError(t, err)
	assert.Equal(t, 24, updated.DurationMonths)
	assert.Equal(t, date(2026, time.December, 31), updated.EndDate)
	assert.Equal(t, now, updated.UpdatedAt)
	assert.Equal(t, 5, delta.CreatedPayments[0].SequenceNumber)

	paymentRepo.AssertExpectations(t)
}

func TestSettlePayment_UsesInjectedClock(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	now := date(2025, time.April, 10)
	svc := newTestService(contractRepo, paymentRepo, now)

	payment := quarterlySchedule(t, "CT-100")[0]

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(activeQuarterlyContract(), nil)
	paymentRepo.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
	paymentRepo.On("Settle", mock.Anything, payment.ID, now).Return(nil)

	settled, err := svc.SettlePayment(context.Background(), "CT-100", payment.ID, nil)

	require.NoError(t, err)
	require.NotNil(t, settled.PaidAt)
	assert.Equal(t, now, *settled.PaidAt)

	paymentRepo.AssertExpectations(t)
}

func TestSettlePayment_RejectsAlreadySettled(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.April, 10))

	payment := quarterlySchedule(t, "CT-100")[0]
	paidAt := date(2025, time.February, 1)
	payment.PaidAt = &paidAt

	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(activeQuarterlyContract(), nil)
	paymentRepo.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)

	_, err := svc.SettlePayment(context.Background(), "CT-100", payment.ID, nil)

	assert.ErrorIs(t, err, errors.ErrPaymentAlreadySettled)
	paymentRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlePayment_RejectsForeignPayment(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.April, 10))

	payment := quarterlySchedule(t, "CT-OTHER")[0]
	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(activeQuarterlyContract(), nil)
	paymentRepo.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)

	_, err := svc.SettlePayment(context.Background(), "CT-100", payment.ID, nil)

	assert.ErrorIs(t, err, errors.ErrPaymentNotFound)
}

func TestSettlePayment_RejectsInactiveContract(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.April, 10))

	terminated := activeQuarterlyContract()
	terminated.ContractID = "CT-TERM"
	terminated.Status = domain.ContractStatusTerminated

	payment := quarterlySchedule(t, "CT-TERM")[0]
	contractRepo.On("GetByContractID", mock.Anything, "CT-TERM").Return(terminated, nil)

	_, err := svc.SettlePayment(context.Background(), "CT-TERM", payment.ID, nil)

	assert.ErrorIs(t, err, errors.ErrContractState)
	paymentRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostponePayment_RejectsInactiveContract(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.April, 10))

	expired := activeQuarterlyContract()
	expired.Status = domain.ContractStatusExpired

	payment := quarterlySchedule(t, "CT-100")[0]
	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(expired, nil)

	_, err := svc.PostponePayment(context.Background(), "CT-100", payment.ID, date(2025, time.May, 1))

	assert.ErrorIs(t, err, errors.ErrContractState)
	paymentRepo.AssertNotCalled(t, "Postpone", mock.Anything, mock.Anything, mock.Anything)
}

func TestLateFee_UsesConfiguredGraceAndRate(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	// First quarter ends 2025-03-31; grace 5 days; 31 days past deadline.
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.May, 6))

	payment := quarterlySchedule(t, "CT-100")[0]
	paymentRepo.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)

	fee, err := svc.LateFee(context.Background(), "CT-100", payment.ID)

	require.NoError(t, err)
	assert.Equal(t, 31, fee.DaysLate)
	// 3000 * 2% * 2 blocks
	assert.True(t, fee.Fee.Equal(decimal.NewFromInt(120)))
	assert.True(t, fee.TotalDue.Equal(decimal.NewFromInt(3120)))
}

func TestOwnerStatement_ComputesNetFromSettledRent(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.July, 1))

	owner := activeQuarterlyContract()
	owner.ContractID = "CT-OWNER"
	owner.PartyKind = domain.PartyKindOwner
	owner.CommissionRate = decimal.NewFromInt(5)

	payments := quarterlySchedule(t, "CT-TENANT")
	paidAt := date(2025, time.February, 1)
	payments[0].PaidAt = &paidAt
	paidAt2 := date(2025, time.May, 1)
	payments[1].PaidAt = &paidAt2

	contractRepo.On("GetByContractID", mock.Anything, "CT-OWNER").Return(owner, nil)
	paymentRepo.On("GetSettledByUnit", mock.Anything, "UNIT-7", domain.PartyKindTenant, date(2025, time.January, 1), date(2025, time.June, 30)).
		Return(payments[:2], nil)

	statement, err := svc.OwnerStatement(
		context.Background(),
		"CT-OWNER",
		date(2025, time.January, 1),
		date(2025, time.June, 30),
		decimal.NewFromInt(500),
		decimal.Zero,
	)

	require.NoError(t, err)
	// Two settled quarters at 3000 each.
	assert.True(t, statement.GrossCollected.Equal(decimal.NewFromInt(6000)))
	assert.True(t, statement.CommissionAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, statement.NetAmount.Equal(decimal.NewFromInt(5200)))
	assert.False(t, statement.NegativeNet)
}

func TestOwnerStatement_ReportsNegativeNet(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.July, 1))

	owner := activeQuarterlyContract()
	owner.ContractID = "CT-OWNER"
	owner.PartyKind = domain.PartyKindOwner
	owner.CommissionRate = decimal.NewFromInt(5)

	contractRepo.On("GetByContractID", mock.Anything, "CT-OWNER").Return(owner, nil)
	paymentRepo.On("GetSettledByUnit", mock.Anything, "UNIT-7", domain.PartyKindTenant, mock.Anything, mock.Anything).
		Return([]*domain.Payment{}, nil)

	statement, err := svc.OwnerStatement(
		context.Background(),
		"CT-OWNER",
		date(2025, time.January, 1),
		date(2025, time.March, 31),
		decimal.NewFromInt(1500),
		decimal.Zero,
	)

	require.NoError(t, err)
	assert.True(t, statement.NetAmount.Equal(decimal.NewFromInt(-1500)))
	assert.True(t, statement.NegativeNet)
}

func TestOwnerStatement_IncludesRentFromExpiredLease(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	// Statement run after the tenant lease ended and the expiry sweep
	// flipped it to expired.
	svc := newTestService(contractRepo, paymentRepo, date(2026, time.January, 15))

	owner := activeQuarterlyContract()
	owner.ContractID = "CT-OWNER"
	owner.PartyKind = domain.PartyKindOwner
	owner.CommissionRate = decimal.NewFromInt(5)

	payments := quarterlySchedule(t, "CT-TENANT")
	paidAt := date(2025, time.November, 3)
	payments[3].PaidAt = &paidAt

	contractRepo.On("GetByContractID", mock.Anything, "CT-OWNER").Return(owner, nil)
	paymentRepo.On("GetSettledByUnit", mock.Anything, "UNIT-7", domain.PartyKindTenant, date(2025, time.October, 1), date(2025, time.December, 31)).
		Return([]*domain.Payment{payments[3]}, nil)

	statement, err := svc.OwnerStatement(
		context.Background(),
		"CT-OWNER",
		date(2025, time.October, 1),
		date(2025, time.December, 31),
		decimal.Zero,
		decimal.Zero,
	)

	require.NoError(t, err)
	// Final quarter's 3000 stays on the statement even though the lease
	// it was collected under is no longer active.
	assert.True(t, statement.GrossCollected.Equal(decimal.NewFromInt(3000)))
	assert.True(t, statement.NetAmount.Equal(decimal.NewFromInt(2850)))
	contractRepo.AssertNotCalled(t, "FindOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOwnerStatement_RejectsTenantContract(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc := newTestService(contractRepo, paymentRepo, date(2025, time.July, 1))

	tenant := activeQuarterlyContract()
	contractRepo.On("GetByContractID", mock.Anything, "CT-100").Return(tenant, nil)

	_, err := svc.OwnerStatement(
		context.Background(),
		"CT-100",
		date(2025, time.January, 1),
		date(2025, time.March, 31),
		decimal.Zero,
		decimal.Zero,
	)

	assert.ErrorIs(t, err, errors.ErrContractState)
}

func TestExpireDueContracts(t *testing.T) {
	contractRepo := &mocks.MockContractRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	now := date(2025, time.August, 1)
	svc := newTestService(contractRepo, paymentRepo, now)

	contractRepo.On("ExpireEndedBefore", mock.Anything, now).Return(int64(3), nil)

	count, err := svc.ExpireDueContracts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	contractRepo.AssertExpectations(t)
}

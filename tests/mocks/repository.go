package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/rentware/lease-engine/internal/domain"
)

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) FindOverlapping(ctx context.Context, unitID string, spanStart, spanEnd time.Time, excludeContractID string) ([]*domain.Contract, error) {
	args := m.Called(ctx, unitID, spanStart, spanEnd, excludeContractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contract), args.Error(1)
}

func (m *MockContractRepository) ExpireEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateBatch(ctx context.Context, payments []*domain.Payment) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByContractID(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetSettledByUnit(ctx context.Context, unitID, partyKind string, from, to time.Time) ([]*domain.Payment, error) {
	args := m.Called(ctx, unitID, partyKind, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Settle(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	args := m.Called(ctx, id, paidAt)
	return args.Error(0)
}

func (m *MockPaymentRepository) Postpone(ctx context.Context, id uuid.UUID, until time.Time) error {
	args := m.Called(ctx, id, until)
	return args.Error(0)
}

func (m *MockPaymentRepository) ApplyDelta(ctx context.Context, contract *domain.Contract, delta *domain.ScheduleDelta) error {
	args := m.Called(ctx, contract, delta)
	return args.Error(0)
}

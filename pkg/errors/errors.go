package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractAlreadyExists = errors.New("contract already exists")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvalidDuration       = errors.New("duration must be greater than zero")
	ErrIncompatibleDuration  = errors.New("duration does not divide evenly into the payment frequency")
	ErrInvalidRate           = errors.New("rate must be greater than zero")
	ErrInconsistentSchedule  = errors.New("payment schedule has an unpaid gap before a paid period")
	ErrOverlap               = errors.New("schedule overlaps another contract on the same unit")
	ErrContractState         = errors.New("operation not allowed in the contract's current state")
	ErrPaymentAlreadySettled = errors.New("payment is already settled")
)

// BusinessError represents a business logic error with enough structure
// for the caller to render a field-level validation message.
type BusinessError struct {
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, field, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeContractNotFound      = "CONTRACT_NOT_FOUND"
	ErrCodeContractAlreadyExists = "CONTRACT_ALREADY_EXISTS"
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidDuration       = "INVALID_DURATION"
	ErrCodeIncompatibleDuration  = "INCOMPATIBLE_DURATION"
	ErrCodeInvalidRate           = "INVALID_RATE"
	ErrCodeInconsistentSchedule  = "INCONSISTENT_SCHEDULE"
	ErrCodeOverlap               = "OVERLAP"
	ErrCodeContractState         = "CONTRACT_STATE"
	ErrCodePaymentAlreadySettled = "PAYMENT_ALREADY_SETTLED"
	ErrCodePersistence           = "PERSISTENCE_ERROR"
	ErrCodeCache                 = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapContractNotFound(contractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractNotFound,
		"contract_id",
		fmt.Sprintf("Contract with ID %s not found", contractID),
		ErrContractNotFound,
	)
}

func WrapContractAlreadyExists(contractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractAlreadyExists,
		"contract_id",
		fmt.Sprintf("Contract with ID %s already exists", contractID),
		ErrContractAlreadyExists,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		"payment_id",
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapInvalidDuration(months int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDuration,
		"duration_months",
		fmt.Sprintf("Duration of %d months is not positive", months),
		ErrInvalidDuration,
	)
}

// WrapIncompatibleDuration names the period unit so the caller can render
// messages like "7 months do not divide evenly into quarters".
func WrapIncompatibleDuration(months int, periodUnit string) *BusinessError {
	return NewBusinessError(
		ErrCodeIncompatibleDuration,
		"duration_months",
		fmt.Sprintf("%d months do not divide evenly into %s", months, periodUnit),
		ErrIncompatibleDuration,
	)
}

func WrapInvalidRate(rate string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRate,
		"rate",
		fmt.Sprintf("Rate %s must be greater than zero", rate),
		ErrInvalidRate,
	)
}

func WrapInconsistentSchedule(contractID string, detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeInconsistentSchedule,
		"",
		fmt.Sprintf("Schedule for contract %s is inconsistent: %s", contractID, detail),
		ErrInconsistentSchedule,
	)
}

func WrapOverlap(unitID string, otherContractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverlap,
		"start_date",
		fmt.Sprintf("Span on unit %s overlaps contract %s", unitID, otherContractID),
		ErrOverlap,
	)
}

func WrapContractState(contractID string, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractState,
		"status",
		fmt.Sprintf("Contract %s is %s, operation requires an active contract", contractID, status),
		ErrContractState,
	)
}

func WrapPaymentAlreadySettled(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentAlreadySettled,
		"payment_id",
		fmt.Sprintf("Payment %s has already been settled", paymentID),
		ErrPaymentAlreadySettled,
	)
}

func WrapPersistenceError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"",
		"storage operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCache,
		"",
		"cache operation failed",
		err,
	)
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rentware/lease-engine/internal/domain"
	"github.com/rentware/lease-engine/internal/service"
	"github.com/rentware/lease-engine/pkg/response"
)

type ContractHandler struct {
	service   *service.ContractService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewContractHandler(svc *service.ContractService, logger *zap.Logger) *ContractHandler {
	v := validator.New()
	registerDecimalValidations(v)

	return &ContractHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// registerDecimalValidations wires decimal.Decimal comparisons into the
// validator so request tags like decimal_gt=0 work.
func registerDecimalValidations(v *validator.Validate) {
	compare := func(fl validator.FieldLevel) (int, bool) {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return 0, false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return 0, false
		}
		return value.Cmp(bound), true
	}

	_ = v.RegisterValidation("decimal_gt", func(fl validator.FieldLevel) bool {
		cmp, ok := compare(fl)
		return ok && cmp > 0
	})
	_ = v.RegisterValidation("decimal_gte", func(fl validator.FieldLevel) bool {
		cmp, ok := compare(fl)
		return ok && cmp >= 0
	})
	_ = v.RegisterValidation("decimal_lte", func(fl validator.FieldLevel) bool {
		cmp, ok := compare(fl)
		return ok && cmp <= 0
	})
}

// CreateContract handles POST /api/v1/contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateContractRequest
	if !h.decode(w, r, &request) {
		return
	}

	contract, err := h.service.CreateContract(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, &domain.CreateContractResponse{Contract: contract})
}

// ActivateContract handles POST /api/v1/contracts/{contractId}/activate
func (h *ContractHandler) ActivateContract(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["contractId"]

	contract, payments, err := h.service.ActivateContract(r.Context(), contractID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, &domain.ActivateContractResponse{Contract: contract, Schedule: payments})
}

// Reschedule handles POST /api/v1/contracts/{contractId}/reschedule
func (h *ContractHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["contractId"]

	var request domain.RescheduleRequest
	if !h.decode(w, r, &request) {
		return
	}

	contract, delta, err := h.service.Reschedule(r.Context(), contractID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, &domain.RescheduleResponse{Contract: contract, Delta: delta})
}

// Renew handles POST /api/v1/contracts/{contractId}/renew
func (h *ContractHandler) Renew(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["contractId"]

	var request domain.RenewRequest
	if !h.decode(w, r, &request) {
		return
	}

	contract, delta, err := h.service.Renew(r.Context(), contractID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, &domain.RescheduleResponse{Contract: contract, Delta: delta})
}

// GetSchedule handles GET /api/v1/contracts/{contractId}/schedule
func (h *ContractHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["contractId"]

	payments, err := h.service.GetSchedule(r.Context(), contractID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, &domain.ScheduleResponse{ContractID: contractID, Schedule: payments})
}

// SettlePayment handles POST /api/v1/contracts/{contractId}/payments/{paymentId}/settle
func (h *ContractHandler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	contractID, paymentID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var request domain.SettlePaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	var paidAt *time.Time
	if request.PaidAt != "" {
		parsed, err := time.Parse("2006-01-02", request.PaidAt)
		if err != nil {
			response.BadRequest(w, "paid_at must be YYYY-MM-DD", err)
			return
		}
		paidAt = &parsed
	}

	payment, err := h.service.SettlePayment(r.Context(), contractID, paymentID, paidAt)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, payment)
}

// PostponePayment handles POST /api/v1/contracts/{contractId}/payments/{paymentId}/postpone
func (h *ContractHandler) PostponePayment(w http.ResponseWriter, r *http.Request) {
	contractID, paymentID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var request domain.PostponePaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	until, err := time.Parse("2006-01-02", request.PostponedUntil)
	if err != nil {
		response.BadRequest(w, "postponed_until must be YYYY-MM-DD", err)
		return
	}

	payment, err := h.service.PostponePayment(r.Context(), contractID, paymentID, until)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, payment)
}

// LateFee handles GET /api/v1/contracts/{contractId}/payments/{paymentId}/late-fee
func (h *ContractHandler) LateFee(w http.ResponseWriter, r *http.Request) {
	contractID, paymentID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	fee, err := h.service.LateFee(r.Context(), contractID, paymentID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, fee)
}

// OwnerStatement handles GET /api/v1/contracts/{contractId}/statement
// Query params: from, to (YYYY-MM-DD), maintenance, other_deductions.
func (h *ContractHandler) OwnerStatement(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["contractId"]

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		response.BadRequest(w, "from must be YYYY-MM-DD", err)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		response.BadRequest(w, "to must be YYYY-MM-DD", err)
		return
	}

	maintenance, err := queryDecimal(r, "maintenance")
	if err != nil {
		response.BadRequest(w, "maintenance must be a decimal", err)
		return
	}
	other, err := queryDecimal(r, "other_deductions")
	if err != nil {
		response.BadRequest(w, "other_deductions must be a decimal", err)
		return
	}

	statement, err := h.service.OwnerStatement(r.Context(), contractID, from, to, maintenance, other)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, statement)
}

func (h *ContractHandler) decode(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		h.logger.Debug("request decode failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.BadRequest(w, "invalid request body", err)
		return false
	}

	if err := h.validator.Struct(request); err != nil {
		h.logger.Debug("request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.BadRequest(w, "validation failed", err)
		return false
	}

	return true
}

func (h *ContractHandler) pathIDs(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	vars := mux.Vars(r)
	contractID := vars["contractId"]

	paymentID, err := uuid.Parse(vars["paymentId"])
	if err != nil {
		response.BadRequest(w, "invalid payment id", err)
		return "", uuid.Nil, false
	}

	return contractID, paymentID, true
}

func queryDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/service"
)

type WithdrawalsHandler struct {
	svs WithdrawalServicer
}

func NewWithdrawalsHandler(svs WithdrawalServicer) *WithdrawalsHandler {
	return &WithdrawalsHandler{
		svs: svs,
	}
}

type WithdrawParams struct {
	Amount      decimal.Decimal `binding:"required"                json:"sum"`
	BankAccount string          `binding:"required,min=4,max=50"   json:"bankAccount"`
	BankName    string          `binding:"required,min=2,max=120"  json:"bankName"`
	Notes       string          `binding:"max=500"                 json:"notes"`
}

type WithdrawalResponse struct {
	ID          int64                       `json:"ID"`
	Amount      float64                     `json:"sum"`
	Status      domain.WithdrawalStatusType `json:"status"`
	BankAccount string                      `json:"bankAccount"`
	BankName    string                      `json:"bankName"`
	Notes       string                      `json:"notes,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
	ProcessedAt *time.Time                  `json:"processedAt,omitempty"`
}

func newWithdrawalResponse(req *domain.WithdrawalRequest) WithdrawalResponse {
	return WithdrawalResponse{
		ID:          req.ID,
		Amount:      req.Amount.InexactFloat64(),
		Status:      req.Status,
		BankAccount: req.BankAccount,
		BankName:    req.BankName,
		Notes:       req.Notes,
		CreatedAt:   req.CreatedAt,
		ProcessedAt: req.ProcessedAt,
	}
}

// Request POST RouteGroup + WithdrawalsRoute. Флорист подает заявку на вывод средств.
// Средства при этом не резервируются, списание произойдет при одобрении.
func (h *WithdrawalsHandler) Request(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params WithdrawParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.Request(reqCtx, service.RequestWithdrawalArgs{
		UserID:      currentUserID,
		Amount:      params.Amount,
		BankAccount: params.BankAccount,
		BankName:    params.BankName,
		Notes:       params.Notes,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newWithdrawalResponse(req))
}

// Index GET RouteGroup + WithdrawalsRoute. Заявки текущего пользователя.
func (h *WithdrawalsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	requests, err := h.svs.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if len(requests) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]WithdrawalResponse, len(requests))
	for i := range requests {
		response[i] = newWithdrawalResponse(&requests[i])
	}
	c.JSON(http.StatusOK, response)
}

// Pending GET RouteGroup + AdminWithdrawalsRoute. Очередь заявок на решение администратора.
func (h *WithdrawalsHandler) Pending(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	requests, err := h.svs.GetPending(reqCtx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if len(requests) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]WithdrawalResponse, len(requests))
	for i := range requests {
		response[i] = newWithdrawalResponse(&requests[i])
	}
	c.JSON(http.StatusOK, response)
}

type ReviewWithdrawalParams struct {
	Status domain.WithdrawalStatusType `binding:"required,oneof=approved rejected processed" json:"status"`
	Notes  string                      `binding:"max=500"                                    json:"notes"`
}

// Review POST RouteGroup + AdminWithdrawReviewRoute. Решение администратора по заявке.
// Принимается ровно один раз: повторный вызов по той же заявке вернет 400.
func (h *WithdrawalsHandler) Review(c *gin.Context) {
	requestID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	var params ReviewWithdrawalParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.Review(reqCtx, service.ReviewWithdrawalArgs{
		RequestID: requestID,
		NewStatus: params.Status,
		ActorRole: getUserRoleFromContext(c),
		Notes:     params.Notes,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newWithdrawalResponse(req))
}

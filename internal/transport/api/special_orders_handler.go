package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/service"
)

type SpecialOrdersHandler struct {
	svs SpecialOrderServicer
}

func NewSpecialOrdersHandler(svs SpecialOrderServicer) *SpecialOrdersHandler {
	return &SpecialOrdersHandler{
		svs: svs,
	}
}

type CreateSpecialOrderParams struct {
	ProductName     string          `binding:"required,min=2,max=200" json:"productName"`
	Description     string          `binding:"required,max=2000"      json:"description"`
	Category        string          `binding:"max=100"                json:"category"`
	Budget          decimal.Decimal `binding:"required"               json:"budget"`
	Quantity        int64           `binding:"required,gt=0"          json:"quantity"`
	DeliveryDate    *time.Time      `json:"deliveryDate,omitempty"`
	ShippingAddress string          `binding:"required,max=500"       json:"shippingAddress"`
	AdditionalNotes string          `binding:"max=1000"               json:"additionalNotes"`
}

type SpecialOrderResponse struct {
	ID              int64                         `json:"ID"`
	ProductName     string                        `json:"productName"`
	Description     string                        `json:"description"`
	Category        string                        `json:"category,omitempty"`
	Budget          float64                       `json:"budget"`
	Quantity        int64                         `json:"quantity"`
	DeliveryDate    *time.Time                    `json:"deliveryDate,omitempty"`
	ShippingAddress string                        `json:"shippingAddress"`
	AdditionalNotes string                        `json:"additionalNotes,omitempty"`
	Status          domain.SpecialOrderStatusType `json:"status"`
	AssignedShopID  *int64                        `json:"assignedShopID,omitempty"`
	CreatedAt       time.Time                     `json:"createdAt"`
	UpdatedAt       time.Time                     `json:"updatedAt"`
}

func newSpecialOrderResponse(req *domain.SpecialOrderRequest) SpecialOrderResponse {
	return SpecialOrderResponse{
		ID:              req.ID,
		ProductName:     req.ProductName,
		Description:     req.Description,
		Category:        req.Category,
		Budget:          req.Budget.InexactFloat64(),
		Quantity:        req.Quantity,
		DeliveryDate:    req.DeliveryDate,
		ShippingAddress: req.ShippingAddress,
		AdditionalNotes: req.AdditionalNotes,
		Status:          req.Status,
		AssignedShopID:  req.AssignedShopID,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}

// Create POST RouteGroup + SpecialOrdersRoute. Покупатель публикует внекаталожный запрос.
func (h *SpecialOrdersHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CreateSpecialOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.Create(reqCtx, repoargs.SpecialOrderCreate{
		UserID:          currentUserID,
		ProductName:     params.ProductName,
		Description:     params.Description,
		Category:        params.Category,
		Budget:          params.Budget,
		Quantity:        params.Quantity,
		DeliveryDate:    params.DeliveryDate,
		ShippingAddress: params.ShippingAddress,
		AdditionalNotes: params.AdditionalNotes,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSpecialOrderResponse(req))
}

// Index GET RouteGroup + SpecialOrdersRoute. Видимость по роли: покупатель — свои,
// флорист — свободные плюс назначенные его магазину, админ — все.
func (h *SpecialOrdersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	requests, err := h.svs.ListFor(reqCtx, getUserIDFromContext(c), getUserRoleFromContext(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if len(requests) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]SpecialOrderResponse, len(requests))
	for i := range requests {
		response[i] = newSpecialOrderResponse(&requests[i])
	}
	c.JSON(http.StatusOK, response)
}

// Claim POST RouteGroup + SpecialOrderClaimRoute. Флорист берет свободный запрос в
// работу. Запрос, уже взятый другим магазином, даст 400.
func (h *SpecialOrdersHandler) Claim(c *gin.Context) {
	requestID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.Claim(reqCtx, requestID, getUserIDFromContext(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSpecialOrderResponse(req))
}

type UpdateSpecialOrderStatusParams struct {
	Status domain.SpecialOrderStatusType `binding:"required,oneof=processing completed cancelled" json:"status"`
}

// UpdateStatus PATCH RouteGroup + SpecialOrderStatusRoute. Завершение запроса
// выплачивает бюджет флористу, ровно один раз.
func (h *SpecialOrdersHandler) UpdateStatus(c *gin.Context) {
	requestID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	var params UpdateSpecialOrderStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.UpdateStatus(reqCtx, service.UpdateSpecialOrderStatusArgs{
		RequestID: requestID,
		NewStatus: params.Status,
		ActorID:   getUserIDFromContext(c),
		ActorRole: getUserRoleFromContext(c),
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSpecialOrderResponse(req))
}

type UpdateSpecialOrderParams struct {
	ProductName     *string          `binding:"omitempty,min=2,max=200" json:"productName,omitempty"`
	Description     *string          `binding:"omitempty,max=2000"      json:"description,omitempty"`
	Category        *string          `binding:"omitempty,max=100"       json:"category,omitempty"`
	Budget          *decimal.Decimal `json:"budget,omitempty"`
	Quantity        *int64           `binding:"omitempty,gt=0"          json:"quantity,omitempty"`
	DeliveryDate    *time.Time       `json:"deliveryDate,omitempty"`
	ShippingAddress *string          `binding:"omitempty,max=500"       json:"shippingAddress,omitempty"`
	AdditionalNotes *string          `binding:"omitempty,max=1000"      json:"additionalNotes,omitempty"`
}

// Update PATCH RouteGroup + SpecialOrderRoute. Правка собственного запроса покупателем,
// пока запрос не взят в работу. Непереданные поля не меняются.
func (h *SpecialOrdersHandler) Update(c *gin.Context) {
	requestID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	var params UpdateSpecialOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.Update(reqCtx, service.UpdateSpecialOrderArgs{
		RequestID:  requestID,
		CustomerID: getUserIDFromContext(c),
		Fields: repoargs.SpecialOrderUpdate{
			ProductName:     params.ProductName,
			Description:     params.Description,
			Category:        params.Category,
			Budget:          params.Budget,
			Quantity:        params.Quantity,
			DeliveryDate:    params.DeliveryDate,
			ShippingAddress: params.ShippingAddress,
			AdditionalNotes: params.AdditionalNotes,
		},
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSpecialOrderResponse(req))
}

// Cancel POST RouteGroup + SpecialOrderCancelRoute. Отмена запроса покупателем
// (своего) или администратором, только пока запрос в pending.
func (h *SpecialOrdersHandler) Cancel(c *gin.Context) {
	requestID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	req, err := h.svs.Cancel(reqCtx, requestID, getUserIDFromContext(c), getUserRoleFromContext(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSpecialOrderResponse(req))
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderItemParams struct {
	ProductID int64 `binding:"required,gt=0" json:"productID"`
	Quantity  int64 `binding:"required,gt=0" json:"quantity"`
}

type CreateOrderParams struct {
	Items           []OrderItemParams        `binding:"required,min=1,dive" json:"items"`
	ShippingAddress string                   `binding:"required,max=500"    json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethodType `binding:"required,oneof=cash card wallet bank_transfer" json:"paymentMethod"`
	Notes           string                   `binding:"max=500"             json:"notes"`
}

type OrderItemResponse struct {
	ProductID int64   `json:"productID"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderResponse struct {
	ID              int64                    `json:"ID"`
	Status          domain.OrderStatusType   `json:"status"`
	TotalAmount     float64                  `json:"totalAmount"`
	PaymentMethod   domain.PaymentMethodType `json:"paymentMethod"`
	PaymentStatus   domain.PaymentStatusType `json:"paymentStatus"`
	ShippingAddress string                   `json:"shippingAddress"`
	Notes           string                   `json:"notes,omitempty"`
	Items           []OrderItemResponse      `json:"items,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
		}
	}
	return OrderResponse{
		ID:              order.ID,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount.InexactFloat64(),
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// Create POST RouteGroup + OrdersRoute. Создание заказа покупателем. При оплате
// кошельком вся сумма списывается в той же транзакции, что и создание заказа.
func (o *OrdersHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CreateOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	items := make([]service.OrderItemArgs, len(params.Items))
	for i, item := range params.Items {
		items[i] = service.OrderItemArgs{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, service.CreateOrderArgs{
		CustomerID:      currentUserID,
		Items:           items,
		ShippingAddress: params.ShippingAddress,
		PaymentMethod:   params.PaymentMethod,
		Notes:           params.Notes,
	})
	if createErr != nil {
		abortWithDomainError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Index GET RouteGroup + OrdersRoute. Заказы, видимые текущему пользователю:
// покупатель видит свои, флорист — заказы своего магазина, админ — все.
func (o *OrdersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.ListFor(reqCtx, getUserIDFromContext(c), getUserRoleFromContext(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if len(orders) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = newOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + OrderRoute.
func (o *OrdersHandler) Show(c *gin.Context) {
	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.FindByID(reqCtx, orderID, getUserIDFromContext(c), getUserRoleFromContext(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

type UpdateOrderStatusParams struct {
	Status domain.OrderStatusType `binding:"required,oneof=processing shipped delivered completed cancelled rejected" json:"status"`
}

// UpdateStatus PATCH RouteGroup + OrderStatusRoute. Смена статуса флористом или
// администратором. Допустимость перехода проверяет сервис.
func (o *OrdersHandler) UpdateStatus(c *gin.Context) {
	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	var params UpdateOrderStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.UpdateStatus(reqCtx, service.UpdateOrderStatusArgs{
		OrderID:   orderID,
		NewStatus: params.Status,
		ActorID:   getUserIDFromContext(c),
		ActorRole: getUserRoleFromContext(c),
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Cancel POST RouteGroup + OrderCancelRoute. Отмена заказа покупателем, допустима
// только из pending/processing. Оплата кошельком возвращается полностью.
func (o *OrdersHandler) Cancel(c *gin.Context) {
	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.Cancel(reqCtx, orderID, getUserIDFromContext(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

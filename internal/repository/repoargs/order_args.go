package repoargs

import (
	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderCreate struct {
	UserID          int64
	ShopID          int64
	TotalAmount     decimal.Decimal
	Status          domain.OrderStatusType
	PaymentMethod   domain.PaymentMethodType
	PaymentStatus   domain.PaymentStatusType
	ShippingAddress string
	Notes           string
}

type OrderItemCreate struct {
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

type OrderStatusUpdate struct {
	ID            int64
	Status        domain.OrderStatusType
	PaymentStatus domain.PaymentStatusType
}

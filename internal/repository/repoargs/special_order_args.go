package repoargs

import (
	"time"

	"github.com/shopspring/decimal"
)

type SpecialOrderCreate struct {
	UserID          int64
	ProductName     string
	Description     string
	Category        string
	Budget          decimal.Decimal
	Quantity        int64
	DeliveryDate    *time.Time
	ShippingAddress string
	AdditionalNotes string
}

// SpecialOrderUpdate правка полей запроса покупателем. Nil-поля не трогаются.
type SpecialOrderUpdate struct {
	ID              int64
	ProductName     *string
	Description     *string
	Category        *string
	Budget          *decimal.Decimal
	Quantity        *int64
	DeliveryDate    *time.Time
	ShippingAddress *string
	AdditionalNotes *string
}

// SpecialOrderFilter предикат видимости списка запросов.
// Покупатель видит только свои (UserID), флорист — неназначенные плюс назначенные
// на его магазин (UnassignedOrShopID), админ — все (пустой фильтр).
type SpecialOrderFilter struct {
	UserID             *int64
	UnassignedOrShopID *int64
}

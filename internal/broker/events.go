package broker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
)

type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent доменное событие заказа для внешних потребителей (аналитика,
// уведомления). Источником истины остается БД, события — побочный канал.
type OrderEvent struct {
	EventID    string                 `json:"event_id"`
	Type       OrderEventType         `json:"type"`
	OrderID    int64                  `json:"order_id"`
	UserID     int64                  `json:"user_id"`
	ShopID     int64                  `json:"shop_id"`
	Status     domain.OrderStatusType `json:"status"`
	Total      decimal.Decimal        `json:"total"`
	OccurredAt time.Time              `json:"occurred_at"`
}

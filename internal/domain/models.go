package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
	Password  string
	Role      RoleType
}

// Wallet внутренний кошелек пользователя. Валюта фиксирована (VND), точность 2 знака.
// Инвариант: Balance всегда равен сумме Amount всех транзакций кошелька.
type Wallet struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64
	Balance   decimal.Decimal
}

// WalletTransaction неизменяемая запись журнала кошелька. Записи никогда не обновляются
// и не удаляются. Amount знаковый: депозиты и возвраты положительные, списания и выводы
// отрицательные. BalanceAfter — снимок баланса сразу после применения, не пересчитывается.
type WalletTransaction struct {
	ID           int64
	CreatedAt    time.Time
	WalletID     int64
	Type         TransactionType
	Amount       decimal.Decimal
	Description  string
	BalanceAfter decimal.Decimal
	ReferenceID  string
	Metadata     map[string]string
}

// WithdrawalRequest заявка флориста на вывод средств. Создается флористом в статусе
// pending (средства при этом НЕ резервируются), обрабатывается администратором ровно
// один раз.
type WithdrawalRequest struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int64
	Amount      decimal.Decimal
	Status      WithdrawalStatusType
	BankAccount string
	BankName    string
	Notes       string
	ProcessedAt *time.Time
}

type Order struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          int64
	ShopID          int64
	TotalAmount     decimal.Decimal
	Status          OrderStatusType
	PaymentMethod   PaymentMethodType
	PaymentStatus   PaymentStatusType
	ShippingAddress string
	Notes           string
	Items           []OrderItem
}

// OrderItem позиция заказа. Price снимается с каталога в момент создания заказа
// и далее не меняется.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

// SpecialOrderRequest индивидуальный (внекаталожный) запрос покупателя.
// AssignedShopID равен nil пока запрос не взят флористом в работу.
type SpecialOrderRequest struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          int64
	ProductName     string
	Description     string
	Category        string
	Budget          decimal.Decimal
	Quantity        int64
	DeliveryDate    *time.Time
	ShippingAddress string
	AdditionalNotes string
	Status          SpecialOrderStatusType
	AssignedShopID  *int64
}

type Product struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	ShopID    int64
	Name      string
	Price     decimal.Decimal
	Stock     int64
}

// Shop магазин флориста. Счетчики PendingOrders/CompletedOrders/CancelledOrders и
// TotalRevenue монотонные: инкрементируются движком заказов и никогда не уменьшаются,
// в том числе на путях отмены. Это аудиторские счетчики, а не живые остатки.
type Shop struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          int64
	Name            string
	PendingOrders   int64
	CompletedOrders int64
	CancelledOrders int64
	TotalRevenue    decimal.Decimal
}

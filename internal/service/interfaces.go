package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/broker"
	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/transport/bankfeed"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type WalletRepository interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	Create(ctx context.Context, userID int64) (*domain.Wallet, error)
	FindForUpdate(ctx context.Context, walletID int64) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error
}

type WalletTransRepository interface {
	Create(ctx context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error)
	FindByReference(ctx context.Context, walletID int64, referenceID string) (*domain.WalletTransaction, error)
	GetByWalletID(ctx context.Context, walletID int64) ([]domain.WalletTransaction, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, args repoargs.WithdrawalCreate) (*domain.WithdrawalRequest, error)
	FindForUpdate(ctx context.Context, id int64) (*domain.WithdrawalRequest, error)
	UpdateStatus(
		ctx context.Context,
		id int64,
		status domain.WithdrawalStatusType,
		notes string,
		processedAt *time.Time,
	) (*domain.WithdrawalRequest, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error)
	GetByStatus(ctx context.Context, status domain.WithdrawalStatusType) ([]domain.WithdrawalRequest, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	CreateItems(ctx context.Context, orderID int64, items []repoargs.OrderItemCreate) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	GetByShopID(ctx context.Context, shopID int64) ([]domain.Order, error)
	GetAll(ctx context.Context) ([]domain.Order, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, qty int64) error
}

type ShopRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Shop, error)
	FindByOwnerID(ctx context.Context, userID int64) (*domain.Shop, error)
	IncrementCounter(ctx context.Context, shopID int64, counter domain.ShopCounterType, by int64) error
	AddRevenue(ctx context.Context, shopID int64, amount decimal.Decimal) error
}

type SpecialOrderRepository interface {
	Create(ctx context.Context, args repoargs.SpecialOrderCreate) (*domain.SpecialOrderRequest, error)
	FindByID(ctx context.Context, id int64) (*domain.SpecialOrderRequest, error)
	FindForUpdate(ctx context.Context, id int64) (*domain.SpecialOrderRequest, error)
	List(ctx context.Context, filter repoargs.SpecialOrderFilter) ([]domain.SpecialOrderRequest, error)
	Claim(ctx context.Context, id int64, shopID int64) (*domain.SpecialOrderRequest, error)
	UpdateStatus(ctx context.Context, id int64, status domain.SpecialOrderStatusType) (*domain.SpecialOrderRequest, error)
	UpdateFields(ctx context.Context, args repoargs.SpecialOrderUpdate) (*domain.SpecialOrderRequest, error)
}

// BankFeedClient поставщик ленты банковских транзакций (внешний коллаборатор).
type BankFeedClient interface {
	ListRecentTransactions(ctx context.Context) ([]bankfeed.Transaction, error)
}

// EventPublisher канал доменных событий заказов. Публикация best-effort: ошибки
// логируются и не влияют на результат операции.
type EventPublisher interface {
	Publish(ctx context.Context, event broker.OrderEvent) error
}

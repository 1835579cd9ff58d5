package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type LedgerServicer interface {
	GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	Transactions(ctx context.Context, userID int64) ([]domain.WalletTransaction, error)
}

type ReconcileServicer interface {
	ReconcileDeposit(
		ctx context.Context,
		userID int64,
		descriptor string,
		claimedAmount *decimal.Decimal,
	) (*service.ReconcileResult, error)
}

type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	UpdateStatus(ctx context.Context, args service.UpdateOrderStatusArgs) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, customerID int64) (*domain.Order, error)
	FindByID(ctx context.Context, orderID, actorID int64, actorRole domain.RoleType) (*domain.Order, error)
	ListFor(ctx context.Context, actorID int64, actorRole domain.RoleType) ([]domain.Order, error)
}

type WithdrawalServicer interface {
	Request(ctx context.Context, args service.RequestWithdrawalArgs) (*domain.WithdrawalRequest, error)
	Review(ctx context.Context, args service.ReviewWithdrawalArgs) (*domain.WithdrawalRequest, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error)
	GetPending(ctx context.Context) ([]domain.WithdrawalRequest, error)
}

type SpecialOrderServicer interface {
	Create(ctx context.Context, args repoargs.SpecialOrderCreate) (*domain.SpecialOrderRequest, error)
	ListFor(ctx context.Context, actorID int64, actorRole domain.RoleType) ([]domain.SpecialOrderRequest, error)
	Claim(ctx context.Context, requestID, floristID int64) (*domain.SpecialOrderRequest, error)
	UpdateStatus(ctx context.Context, args service.UpdateSpecialOrderStatusArgs) (*domain.SpecialOrderRequest, error)
	Update(ctx context.Context, args service.UpdateSpecialOrderArgs) (*domain.SpecialOrderRequest, error)
	Cancel(ctx context.Context, requestID, actorID int64, actorRole domain.RoleType) (*domain.SpecialOrderRequest, error)
}

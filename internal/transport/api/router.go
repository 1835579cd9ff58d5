package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	// ReconcileTimeout сверка депозита ходит во внешний банковский API.
	ReconcileTimeout = 15 * time.Second
)

const (
	RouteGroup               = "/api"
	RegisterRoute            = "/user/register"
	LoginRoute               = "/user/login"
	WalletRoute              = "/user/wallet"
	WalletTransactionsRoute  = "/user/wallet/transactions"
	WalletDepositRoute       = "/user/wallet/deposit"
	WithdrawalsRoute         = "/user/withdrawals"
	OrdersRoute              = "/orders"
	OrderRoute               = "/orders/:id"
	OrderStatusRoute         = "/orders/:id/status"
	OrderCancelRoute         = "/orders/:id/cancel"
	SpecialOrdersRoute       = "/special-orders"
	SpecialOrderRoute        = "/special-orders/:id"
	SpecialOrderClaimRoute   = "/special-orders/:id/claim"
	SpecialOrderStatusRoute  = "/special-orders/:id/status"
	SpecialOrderCancelRoute  = "/special-orders/:id/cancel"
	AdminWithdrawalsRoute    = "/admin/withdrawals"
	AdminWithdrawReviewRoute = "/admin/withdrawals/:id/review"
	MetricsRoute             = "/metrics"
)

type RouterArgs struct {
	Logger              *logrus.Logger
	UserService         UserServicer
	LedgerService       LedgerServicer
	ReconcileService    ReconcileServicer
	OrderService        OrderServicer
	WithdrawalService   WithdrawalServicer
	SpecialOrderService SpecialOrderServicer
	JWTSecretKey        []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Metrics())
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	walletHandler := NewWalletHandler(args.LedgerService, args.ReconcileService)
	ordersHandler := NewOrdersHandler(args.OrderService)
	withdrawalsHandler := NewWithdrawalsHandler(args.WithdrawalService)
	specialOrdersHandler := NewSpecialOrdersHandler(args.SpecialOrderService)

	r.GET(MetricsRoute, gin.WrapH(promhttp.Handler()))

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, authHandler.Register)
	api.POST(LoginRoute, authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(WalletRoute, walletHandler.Balance)
	api.GET(WalletTransactionsRoute, walletHandler.Transactions)
	api.POST(WalletDepositRoute, middlewares.RequireRole(domain.RoleCustomer), walletHandler.Deposit)

	api.POST(WithdrawalsRoute, middlewares.RequireRole(domain.RoleFlorist), withdrawalsHandler.Request)
	api.GET(WithdrawalsRoute, withdrawalsHandler.Index)

	api.POST(OrdersRoute, middlewares.RequireRole(domain.RoleCustomer), ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	api.GET(OrderRoute, ordersHandler.Show)
	api.PATCH(OrderStatusRoute,
		middlewares.RequireRole(domain.RoleFlorist, domain.RoleAdmin), ordersHandler.UpdateStatus)
	api.POST(OrderCancelRoute, middlewares.RequireRole(domain.RoleCustomer), ordersHandler.Cancel)

	api.POST(SpecialOrdersRoute, middlewares.RequireRole(domain.RoleCustomer), specialOrdersHandler.Create)
	api.GET(SpecialOrdersRoute, specialOrdersHandler.Index)
	api.POST(SpecialOrderClaimRoute, middlewares.RequireRole(domain.RoleFlorist), specialOrdersHandler.Claim)
	api.PATCH(SpecialOrderStatusRoute,
		middlewares.RequireRole(domain.RoleFlorist, domain.RoleAdmin), specialOrdersHandler.UpdateStatus)
	api.PATCH(SpecialOrderRoute, middlewares.RequireRole(domain.RoleCustomer), specialOrdersHandler.Update)
	api.POST(SpecialOrderCancelRoute,
		middlewares.RequireRole(domain.RoleCustomer, domain.RoleAdmin), specialOrdersHandler.Cancel)

	api.GET(AdminWithdrawalsRoute, middlewares.RequireRole(domain.RoleAdmin), withdrawalsHandler.Pending)
	api.POST(AdminWithdrawReviewRoute, middlewares.RequireRole(domain.RoleAdmin), withdrawalsHandler.Review)

	return r
}

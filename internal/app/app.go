package app

import (
	"context"
	"fmt"

	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/floramart/internal/broker"
	"github.com/fsdevblog/floramart/internal/config"
	"github.com/fsdevblog/floramart/internal/repository/pgrepo"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/service"
	"github.com/fsdevblog/floramart/internal/transport/api"
	"github.com/fsdevblog/floramart/internal/transport/bankfeed"
	"github.com/fsdevblog/floramart/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	events := a.initEvents()
	if closer, ok := events.(*broker.Producer); ok {
		defer func() {
			if closeErr := closer.Close(); closeErr != nil {
				a.Logger.WithError(closeErr).Warn("kafka producer close")
			}
		}()
	}

	feedClient := bankfeed.NewHTTPClient(a.Config.BankFeedAddress, a.Config.BankFeedToken, a.Config.BankFeedTimeout)

	services, sErr := service.Factory(service.FactoryArgs{
		UnitOfWork: unitOfWork,
		JWTSecret:  []byte(a.Config.JWTUserSecret),
		BankFeed:   feedClient,
		Events:     events,
		Logger:     a.Logger,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:              a.Logger,
		UserService:         services.UserService,
		LedgerService:       services.LedgerService,
		ReconcileService:    services.ReconcileService,
		OrderService:        services.OrderService,
		WithdrawalService:   services.WithdrawalService,
		SpecialOrderService: services.SpecialOrderService,
		JWTSecretKey:        []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// initEvents выбирает канал событий заказов. Без брокеров публикация отключена.
func (a *App) initEvents() service.EventPublisher {
	if len(a.Config.KafkaBrokers) == 0 {
		a.Logger.Info("kafka brokers are not set, order events are disabled")
		return broker.NoopPublisher{}
	}
	return broker.NewProducer(a.Config.KafkaBrokers, a.Config.KafkaTopic, a.Logger)
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]func(dbtx uow.DBTX) uow.Repository{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.WalletRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWalletRepository(dbtx)
		},
		repoargs.WalletTransRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWalletTransRepository(dbtx)
		},
		repoargs.WithdrawalRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWithdrawalRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProductRepository(dbtx)
		},
		repoargs.ShopRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewShopRepository(dbtx)
		},
		repoargs.SpecialOrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewSpecialOrderRepository(dbtx)
		},
	}

	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}

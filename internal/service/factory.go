package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/floramart/pkg/uow"
)

type AppServices struct {
	UserService         *UserService
	LedgerService       *LedgerService
	ReconcileService    *ReconcileService
	OrderService        *OrderService
	WithdrawalService   *WithdrawalService
	SpecialOrderService *SpecialOrderService
}

type FactoryArgs struct {
	UnitOfWork uow.UOW
	JWTSecret  []byte
	BankFeed   BankFeedClient
	Events     EventPublisher
	Logger     *logrus.Logger
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(args.UnitOfWork, args.JWTSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	ledgerService, ledgerServiceErr := NewLedgerService(args.UnitOfWork)
	if ledgerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(args.UnitOfWork, ledgerService, args.Events, args.Logger)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	withdrawalService, withdrawalServiceErr := NewWithdrawalService(args.UnitOfWork, ledgerService)
	if withdrawalServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", withdrawalServiceErr.Error())
	}

	specialOrderService, specialOrderServiceErr := NewSpecialOrderService(args.UnitOfWork, ledgerService)
	if specialOrderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", specialOrderServiceErr.Error())
	}

	return &AppServices{
		UserService:         userService,
		LedgerService:       ledgerService,
		ReconcileService:    NewReconcileService(args.BankFeed, ledgerService, args.Logger),
		OrderService:        orderService,
		WithdrawalService:   withdrawalService,
		SpecialOrderService: specialOrderService,
	}, nil
}

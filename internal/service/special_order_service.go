package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

// specialOrderTransitions допустимые смены статуса индивидуального запроса.
var specialOrderTransitions = map[domain.SpecialOrderStatusType][]domain.SpecialOrderStatusType{
	domain.SpecialOrderStatusPending: {
		domain.SpecialOrderStatusProcessing,
		domain.SpecialOrderStatusCancelled,
	},
	domain.SpecialOrderStatusProcessing: {
		domain.SpecialOrderStatusCompleted,
		domain.SpecialOrderStatusCancelled,
	},
}

func specialOrderTransitionAllowed(from, to domain.SpecialOrderStatusType) bool {
	for _, allowed := range specialOrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SpecialOrderService жизненный цикл индивидуальных (внекаталожных) запросов:
// создание покупателем, взятие в работу флористом, выплата бюджета флористу
// по завершении.
type SpecialOrderService struct {
	uow         uow.UOW
	specialRepo SpecialOrderRepository
	shopRepo    ShopRepository
	ledger      *LedgerService
}

func NewSpecialOrderService(u uow.UOW, ledger *LedgerService) (*SpecialOrderService, error) {
	specialRepo, specialRepoErr :=
		uow.GetRepositoryAs[SpecialOrderRepository](u, uow.RepositoryName(repoargs.SpecialOrderRepoName))
	if specialRepoErr != nil {
		return nil, specialRepoErr
	}
	shopRepo, shopRepoErr := uow.GetRepositoryAs[ShopRepository](u, uow.RepositoryName(repoargs.ShopRepoName))
	if shopRepoErr != nil {
		return nil, shopRepoErr
	}
	return &SpecialOrderService{
		uow:         u,
		specialRepo: specialRepo,
		shopRepo:    shopRepo,
		ledger:      ledger,
	}, nil
}

func (s *SpecialOrderService) Create(
	ctx context.Context,
	args repoargs.SpecialOrderCreate,
) (*domain.SpecialOrderRequest, error) {
	req, err := s.specialRepo.Create(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("creating special order request: %w", err)
	}
	return req, nil
}

// ListFor возвращает запросы, видимые актору: покупатель — только свои, флорист —
// неназначенные плюс назначенные его магазину, админ — все.
func (s *SpecialOrderService) ListFor(
	ctx context.Context,
	actorID int64,
	actorRole domain.RoleType,
) ([]domain.SpecialOrderRequest, error) {
	var filter repoargs.SpecialOrderFilter

	switch actorRole {
	case domain.RoleCustomer:
		filter.UserID = &actorID
	case domain.RoleFlorist:
		shop, shopErr := s.shopRepo.FindByOwnerID(ctx, actorID)
		if shopErr != nil {
			return nil, shopErr //nolint:wrapcheck
		}
		filter.UnassignedOrShopID = &shop.ID
	case domain.RoleAdmin:
	}

	requests, err := s.specialRepo.List(ctx, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return requests, nil
}

// Claim флорист берет запрос в работу: назначает его своему магазину и переводит
// в processing. Запрос, уже взятый кем-то, дает domain.ErrAlreadyAssigned —
// в том числе при гонке двух флористов за один запрос.
func (s *SpecialOrderService) Claim(ctx context.Context, requestID, floristID int64) (*domain.SpecialOrderRequest, error) {
	shop, shopErr := s.shopRepo.FindByOwnerID(ctx, floristID)
	if shopErr != nil {
		return nil, fmt.Errorf("claiming special order request: %w", shopErr)
	}

	var claimed *domain.SpecialOrderRequest
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		specialRepo, repoErr := uow.GetAs[SpecialOrderRepository](tx, uow.RepositoryName(repoargs.SpecialOrderRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		req, findErr := specialRepo.FindForUpdate(c, requestID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if req.AssignedShopID != nil {
			return fmt.Errorf("special order request %d: %w", requestID, domain.ErrAlreadyAssigned)
		}
		if req.Status != domain.SpecialOrderStatusPending {
			return domain.NewStateTransitionError(string(req.Status), string(domain.SpecialOrderStatusProcessing))
		}

		var claimErr error
		claimed, claimErr = specialRepo.Claim(c, requestID, shop.ID)
		if claimErr != nil {
			// строка уже под нашей блокировкой, исчезнуть могла только из-за гонки
			// с другим назначением.
			if errors.Is(claimErr, domain.ErrRecordNotFound) {
				return fmt.Errorf("special order request %d: %w", requestID, domain.ErrAlreadyAssigned)
			}
			return claimErr //nolint:wrapcheck
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("claiming special order request: %w", txErr)
	}
	return claimed, nil
}

type UpdateSpecialOrderStatusArgs struct {
	RequestID int64
	NewStatus domain.SpecialOrderStatusType
	ActorID   int64
	ActorRole domain.RoleType
}

// UpdateStatus переводит запрос в новый статус от имени флориста или администратора.
// Флорист распоряжается только запросами, назначенными его магазину.
//
// Переход в completed выполняется ровно один раз (из processing) и выплачивает
// флористу назначенного магазина бюджет запроса депозитом с референсом
// special_request_{id}_payout. Нулевой или отрицательный бюджет выплаты не создает.
// Благодаря идемпотентности леджера повторное зачисление по этому референсу
// невозможно даже при повторном входе.
func (s *SpecialOrderService) UpdateStatus(
	ctx context.Context,
	args UpdateSpecialOrderStatusArgs,
) (*domain.SpecialOrderRequest, error) {
	if args.ActorRole != domain.RoleAdmin && args.ActorRole != domain.RoleFlorist {
		return nil, fmt.Errorf("updating special order status: %w", domain.ErrForbidden)
	}

	var updated *domain.SpecialOrderRequest
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		specialRepo, repoErr := uow.GetAs[SpecialOrderRepository](tx, uow.RepositoryName(repoargs.SpecialOrderRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		shopRepo, shopRepoErr := uow.GetAs[ShopRepository](tx, uow.RepositoryName(repoargs.ShopRepoName))
		if shopRepoErr != nil {
			return shopRepoErr //nolint:wrapcheck
		}

		req, findErr := specialRepo.FindForUpdate(c, args.RequestID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		if args.ActorRole == domain.RoleFlorist {
			shop, shopErr := shopRepo.FindByOwnerID(c, args.ActorID)
			if shopErr != nil {
				return shopErr //nolint:wrapcheck
			}
			if req.AssignedShopID == nil || *req.AssignedShopID != shop.ID {
				return fmt.Errorf("special order request %d: %w", req.ID, domain.ErrForbidden)
			}
		}

		if !specialOrderTransitionAllowed(req.Status, args.NewStatus) {
			return domain.NewStateTransitionError(string(req.Status), string(args.NewStatus))
		}

		if args.NewStatus == domain.SpecialOrderStatusCompleted {
			if payErr := s.payout(c, tx, req); payErr != nil {
				return payErr
			}
		}

		var updErr error
		updated, updErr = specialRepo.UpdateStatus(c, req.ID, args.NewStatus)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating special order status: %w", txErr)
	}
	return updated, nil
}

// payout зачисляет бюджет запроса на кошелек флориста назначенного магазина.
// Неназначенный запрос или непозитивный бюджет выплаты не создают.
func (s *SpecialOrderService) payout(ctx context.Context, tx uow.TX, req *domain.SpecialOrderRequest) error {
	if req.AssignedShopID == nil || !req.Budget.IsPositive() {
		return nil
	}

	shopRepo, shopRepoErr := uow.GetAs[ShopRepository](tx, uow.RepositoryName(repoargs.ShopRepoName))
	if shopRepoErr != nil {
		return shopRepoErr //nolint:wrapcheck
	}
	shop, shopErr := shopRepo.FindByID(ctx, *req.AssignedShopID)
	if shopErr != nil {
		return shopErr //nolint:wrapcheck
	}

	wallet, walletErr := s.ledger.GetOrCreateWalletWithin(ctx, tx, shop.UserID)
	if walletErr != nil {
		return walletErr
	}
	_, applyErr := s.ledger.ApplyWithin(ctx, tx, ApplyTransactionArgs{
		WalletID:    wallet.ID,
		Type:        domain.TransactionDeposit,
		Amount:      req.Budget,
		Description: fmt.Sprintf("Payout for special request #%d", req.ID),
		ReferenceID: fmt.Sprintf("special_request_%d_payout", req.ID),
	})
	return applyErr
}

type UpdateSpecialOrderArgs struct {
	RequestID  int64
	CustomerID int64
	Fields     repoargs.SpecialOrderUpdate
}

// Update правка полей запроса покупателем. Допустима только для собственного запроса
// и только пока он в pending.
func (s *SpecialOrderService) Update(ctx context.Context, args UpdateSpecialOrderArgs) (*domain.SpecialOrderRequest, error) {
	var updated *domain.SpecialOrderRequest
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		specialRepo, repoErr := uow.GetAs[SpecialOrderRepository](tx, uow.RepositoryName(repoargs.SpecialOrderRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		req, findErr := specialRepo.FindForUpdate(c, args.RequestID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if req.UserID != args.CustomerID {
			return fmt.Errorf("special order request %d: %w", req.ID, domain.ErrForbidden)
		}
		if req.Status != domain.SpecialOrderStatusPending {
			return fmt.Errorf("special order request %d is %s: %w", req.ID, req.Status, domain.ErrInvalidStateTransition)
		}

		fields := args.Fields
		fields.ID = req.ID

		var updErr error
		updated, updErr = specialRepo.UpdateFields(c, fields)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating special order request: %w", txErr)
	}
	return updated, nil
}

// Cancel отмена запроса покупателем (своего) или администратором, только из pending.
// Денежных эффектов нет: по индивидуальному запросу ничего не списывалось.
func (s *SpecialOrderService) Cancel(
	ctx context.Context,
	requestID, actorID int64,
	actorRole domain.RoleType,
) (*domain.SpecialOrderRequest, error) {
	var cancelled *domain.SpecialOrderRequest
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		specialRepo, repoErr := uow.GetAs[SpecialOrderRepository](tx, uow.RepositoryName(repoargs.SpecialOrderRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		req, findErr := specialRepo.FindForUpdate(c, requestID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		switch actorRole {
		case domain.RoleAdmin:
		case domain.RoleCustomer:
			if req.UserID != actorID {
				return fmt.Errorf("special order request %d: %w", req.ID, domain.ErrForbidden)
			}
		case domain.RoleFlorist:
			fallthrough
		default:
			return fmt.Errorf("special order request %d: %w", req.ID, domain.ErrForbidden)
		}

		if req.Status != domain.SpecialOrderStatusPending {
			return domain.NewStateTransitionError(string(req.Status), string(domain.SpecialOrderStatusCancelled))
		}

		var updErr error
		cancelled, updErr = specialRepo.UpdateStatus(c, req.ID, domain.SpecialOrderStatusCancelled)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancelling special order request: %w", txErr)
	}
	return cancelled, nil
}

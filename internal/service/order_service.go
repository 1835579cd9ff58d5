package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/floramart/internal/broker"
	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

// orderTransitions допустимые смены статуса заказа. Конечные статусы
// (completed, cancelled, rejected) отсутствуют в карте — из них выхода нет.
var orderTransitions = map[domain.OrderStatusType][]domain.OrderStatusType{
	domain.OrderStatusPending: {
		domain.OrderStatusProcessing,
		domain.OrderStatusCancelled,
		domain.OrderStatusRejected,
	},
	domain.OrderStatusProcessing: {
		domain.OrderStatusShipped,
		domain.OrderStatusCancelled,
	},
	domain.OrderStatusShipped:   {domain.OrderStatusDelivered},
	domain.OrderStatusDelivered: {domain.OrderStatusCompleted},
}

func orderTransitionAllowed(from, to domain.OrderStatusType) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OrderService движок жизненного цикла заказа: валидация остатков, расчет суммы,
// списание оплаты, смены статуса с побочными эффектами (возвраты, счетчики магазина).
type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	ledger    *LedgerService
	events    EventPublisher
	l         *logrus.Entry
}

func NewOrderService(u uow.UOW, ledger *LedgerService, events EventPublisher, l *logrus.Logger) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
		ledger:    ledger,
		events:    events,
		l:         l.WithField("component", "order_service"),
	}, nil
}

type OrderItemArgs struct {
	ProductID int64
	Quantity  int64
}

type CreateOrderArgs struct {
	CustomerID      int64
	Items           []OrderItemArgs
	ShippingAddress string
	PaymentMethod   domain.PaymentMethodType
	Notes           string
}

// Create создает заказ одной логической единицей: при любой ошибке не остается
// ни заказа, ни частичного списания остатков, ни дебета кошелька.
//
// Алгоритм работы:
//  1. Для каждой позиции читает товар с блокировкой строки, проверяет остаток и
//     снимает текущую цену каталога в позицию заказа (дальнейшие смены цены на
//     позицию не влияют).
//  2. Все товары должны принадлежать одному магазину.
//  3. Создает заказ со статусом pending.
//  4. При оплате кошельком списывает полную сумму до каких-либо изменений остатков;
//     нехватка средств роняет всю операцию (domain.ErrInsufficientFunds).
//  5. Списывает остатки, создает позиции, увеличивает pending_orders магазина.
//
// Счетчик pending_orders увеличивается только здесь, один раз за заказ.
func (o *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	if len(args.Items) == 0 {
		return nil, fmt.Errorf("creating order: %w: no items", domain.ErrEmptyOrder)
	}

	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr //nolint:wrapcheck
		}
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		shopRepo, shopRepoErr := uow.GetAs[ShopRepository](tx, uow.RepositoryName(repoargs.ShopRepoName))
		if shopRepoErr != nil {
			return shopRepoErr //nolint:wrapcheck
		}

		var shopID int64
		var total decimal.Decimal
		items := make([]repoargs.OrderItemCreate, 0, len(args.Items))

		for _, item := range args.Items {
			product, productErr := productRepo.FindForUpdate(c, item.ProductID)
			if productErr != nil {
				return productErr //nolint:wrapcheck
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("product %d: %w", product.ID, domain.ErrInsufficientStock)
			}
			if shopID == 0 {
				shopID = product.ShopID
			} else if shopID != product.ShopID {
				return fmt.Errorf("product %d: %w", product.ID, domain.ErrMixedShopItems)
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(item.Quantity)))
			items = append(items, repoargs.OrderItemCreate{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}
		total = total.Round(moneyPrecision)

		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.OrderCreate{
			UserID:          args.CustomerID,
			ShopID:          shopID,
			TotalAmount:     total,
			Status:          domain.OrderStatusPending,
			PaymentMethod:   args.PaymentMethod,
			PaymentStatus:   domain.PaymentStatusPending,
			ShippingAddress: args.ShippingAddress,
			Notes:           args.Notes,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		if args.PaymentMethod == domain.PaymentMethodWallet {
			wallet, walletErr := o.ledger.GetOrCreateWalletWithin(c, tx, args.CustomerID)
			if walletErr != nil {
				return walletErr
			}
			_, payErr := o.ledger.ApplyWithin(c, tx, ApplyTransactionArgs{
				WalletID:    wallet.ID,
				Type:        domain.TransactionPayment,
				Amount:      total.Neg(),
				Description: fmt.Sprintf("Payment for order #%d", order.ID),
				ReferenceID: fmt.Sprintf("order_%d_payment", order.ID),
			})
			if payErr != nil {
				return payErr
			}
			order, payErr = orderRepo.UpdateStatus(c, repoargs.OrderStatusUpdate{
				ID:            order.ID,
				Status:        domain.OrderStatusPending,
				PaymentStatus: domain.PaymentStatusPaid,
			})
			if payErr != nil {
				return payErr //nolint:wrapcheck
			}
		}

		for _, item := range items {
			if decErr := productRepo.DecrementStock(c, item.ProductID, item.Quantity); decErr != nil {
				return decErr //nolint:wrapcheck
			}
		}
		if itemsErr := orderRepo.CreateItems(c, order.ID, items); itemsErr != nil {
			return itemsErr //nolint:wrapcheck
		}

		return shopRepo.IncrementCounter(c, shopID, domain.ShopCounterPendingOrders, 1) //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}

	o.publish(ctx, broker.OrderEventCreated, order)
	return order, nil
}

type UpdateOrderStatusArgs struct {
	OrderID   int64
	NewStatus domain.OrderStatusType
	ActorID   int64
	ActorRole domain.RoleType
}

// UpdateStatus переводит заказ в новый статус от имени флориста или администратора.
// Покупатель этой операцией не пользуется — для него есть Cancel.
//
// Побочные эффекты перехода:
//   - в delivered/completed (первый вход в группу): completed_orders магазина +1,
//     сумма заказа добавляется в total_revenue;
//   - в cancelled/rejected: cancelled_orders +1; если заказ оплачен кошельком —
//     возврат полной суммы (референс order_{id}) и payment_status = refunded.
func (o *OrderService) UpdateStatus(ctx context.Context, args UpdateOrderStatusArgs) (*domain.Order, error) {
	if args.ActorRole != domain.RoleAdmin && args.ActorRole != domain.RoleFlorist {
		return nil, fmt.Errorf("updating order status: %w", domain.ErrForbidden)
	}

	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		shopRepo, shopRepoErr := uow.GetAs[ShopRepository](tx, uow.RepositoryName(repoargs.ShopRepoName))
		if shopRepoErr != nil {
			return shopRepoErr //nolint:wrapcheck
		}

		current, findErr := orderRepo.FindForUpdate(c, args.OrderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		if args.ActorRole == domain.RoleFlorist {
			shop, shopErr := shopRepo.FindByOwnerID(c, args.ActorID)
			if shopErr != nil {
				return shopErr //nolint:wrapcheck
			}
			if shop.ID != current.ShopID {
				return fmt.Errorf("order %d belongs to another shop: %w", current.ID, domain.ErrForbidden)
			}
		}

		if !orderTransitionAllowed(current.Status, args.NewStatus) {
			return domain.NewStateTransitionError(string(current.Status), string(args.NewStatus))
		}

		refundReference := fmt.Sprintf("order_%d", current.ID)
		var applyErr error
		order, applyErr = o.applyTransition(c, tx, current, args.NewStatus, refundReference)
		return applyErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating order status: %w", txErr)
	}

	o.publish(ctx, broker.OrderEventStatusChanged, order)
	return order, nil
}

// Cancel отмена заказа покупателем. Допустима только из pending или processing.
// Референс возврата с суффиксом _refund, чтобы не пересечься с возвратом
// административной отмены того же заказа.
func (o *OrderService) Cancel(ctx context.Context, orderID, customerID int64) (*domain.Order, error) {
	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		current, findErr := orderRepo.FindForUpdate(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if current.UserID != customerID {
			return fmt.Errorf("order %d belongs to another customer: %w", current.ID, domain.ErrForbidden)
		}
		if current.Status != domain.OrderStatusPending && current.Status != domain.OrderStatusProcessing {
			return domain.NewStateTransitionError(string(current.Status), string(domain.OrderStatusCancelled))
		}

		refundReference := fmt.Sprintf("order_%d_refund", current.ID)
		var applyErr error
		order, applyErr = o.applyTransition(c, tx, current, domain.OrderStatusCancelled, refundReference)
		return applyErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancelling order: %w", txErr)
	}

	o.publish(ctx, broker.OrderEventStatusChanged, order)
	return order, nil
}

// applyTransition выполняет побочные эффекты перехода и записывает новый статус.
// Переход уже проверен вызывающим.
func (o *OrderService) applyTransition(
	ctx context.Context,
	tx uow.TX,
	current *domain.Order,
	newStatus domain.OrderStatusType,
	refundReference string,
) (*domain.Order, error) {
	orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr //nolint:wrapcheck
	}
	shopRepo, shopRepoErr := uow.GetAs[ShopRepository](tx, uow.RepositoryName(repoargs.ShopRepoName))
	if shopRepoErr != nil {
		return nil, shopRepoErr //nolint:wrapcheck
	}

	paymentStatus := current.PaymentStatus

	switch newStatus {
	case domain.OrderStatusDelivered, domain.OrderStatusCompleted:
		// воронка delivered -> completed: выручку и счетчик учитываем на первом
		// входе в группу, переход delivered -> completed больше их не трогает.
		alreadyCounted := current.Status == domain.OrderStatusDelivered || current.Status == domain.OrderStatusCompleted
		if !alreadyCounted {
			if err := shopRepo.IncrementCounter(ctx, current.ShopID, domain.ShopCounterCompletedOrders, 1); err != nil {
				return nil, err //nolint:wrapcheck
			}
			if err := shopRepo.AddRevenue(ctx, current.ShopID, current.TotalAmount); err != nil {
				return nil, err //nolint:wrapcheck
			}
		}
	case domain.OrderStatusCancelled, domain.OrderStatusRejected:
		if err := shopRepo.IncrementCounter(ctx, current.ShopID, domain.ShopCounterCancelledOrders, 1); err != nil {
			return nil, err //nolint:wrapcheck
		}
		if current.PaymentStatus == domain.PaymentStatusPaid && current.PaymentMethod == domain.PaymentMethodWallet {
			wallet, walletErr := o.ledger.GetOrCreateWalletWithin(ctx, tx, current.UserID)
			if walletErr != nil {
				return nil, walletErr
			}
			_, refundErr := o.ledger.ApplyWithin(ctx, tx, ApplyTransactionArgs{
				WalletID:    wallet.ID,
				Type:        domain.TransactionRefund,
				Amount:      current.TotalAmount,
				Description: fmt.Sprintf("Refund for order #%d", current.ID),
				ReferenceID: refundReference,
			})
			if refundErr != nil {
				return nil, refundErr
			}
			paymentStatus = domain.PaymentStatusRefunded
		}
	case domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusShipped:
		// переходы без денежных эффектов и без счетчиков.
	}

	order, updErr := orderRepo.UpdateStatus(ctx, repoargs.OrderStatusUpdate{
		ID:            current.ID,
		Status:        newStatus,
		PaymentStatus: paymentStatus,
	})
	if updErr != nil {
		return nil, updErr //nolint:wrapcheck
	}
	return order, nil
}

// FindByID возвращает заказ с позициями, с проверкой прав на чтение: покупатель видит
// свои заказы, флорист — заказы своего магазина, админ — любые.
func (o *OrderService) FindByID(
	ctx context.Context,
	orderID, actorID int64,
	actorRole domain.RoleType,
) (*domain.Order, error) {
	order, err := o.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	switch actorRole {
	case domain.RoleAdmin:
	case domain.RoleCustomer:
		if order.UserID != actorID {
			return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrForbidden)
		}
	case domain.RoleFlorist:
		shopRepo, shopRepoErr := uow.GetRepositoryAs[ShopRepository](o.uow, uow.RepositoryName(repoargs.ShopRepoName))
		if shopRepoErr != nil {
			return nil, shopRepoErr //nolint:wrapcheck
		}
		shop, shopErr := shopRepo.FindByOwnerID(ctx, actorID)
		if shopErr != nil {
			return nil, shopErr //nolint:wrapcheck
		}
		if shop.ID != order.ShopID {
			return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrForbidden)
		}
	}
	return order, nil
}

// GetByUserID возвращает заказы покупателя от новых к старым.
func (o *OrderService) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// GetByShopID возвращает заказы магазина от новых к старым.
func (o *OrderService) GetByShopID(ctx context.Context, shopID int64) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetByShopID(ctx, shopID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// ListFor возвращает заказы, видимые актору: покупатель — свои, флорист — заказы
// своего магазина, админ — все.
func (o *OrderService) ListFor(ctx context.Context, actorID int64, actorRole domain.RoleType) ([]domain.Order, error) {
	switch actorRole {
	case domain.RoleFlorist:
		shopRepo, shopRepoErr := uow.GetRepositoryAs[ShopRepository](o.uow, uow.RepositoryName(repoargs.ShopRepoName))
		if shopRepoErr != nil {
			return nil, shopRepoErr //nolint:wrapcheck
		}
		shop, shopErr := shopRepo.FindByOwnerID(ctx, actorID)
		if shopErr != nil {
			return nil, shopErr //nolint:wrapcheck
		}
		return o.GetByShopID(ctx, shop.ID)
	case domain.RoleAdmin:
		orders, err := o.orderRepo.GetAll(ctx)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return orders, nil
	case domain.RoleCustomer:
		fallthrough
	default:
		return o.GetByUserID(ctx, actorID)
	}
}

func (o *OrderService) publish(ctx context.Context, eventType broker.OrderEventType, order *domain.Order) {
	if o.events == nil || order == nil {
		return
	}
	event := broker.OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		ShopID:     order.ShopID,
		Status:     order.Status,
		Total:      order.TotalAmount,
		OccurredAt: time.Now(),
	}
	if err := o.events.Publish(ctx, event); err != nil {
		o.l.WithError(err).WithField("orderID", order.ID).Warn("order event publish failed")
	}
}

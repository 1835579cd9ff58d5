package pgrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/pkg/uow"
)

type ShopRepository struct {
	db uow.DBTX
}

func NewShopRepository(db uow.DBTX) *ShopRepository {
	return &ShopRepository{db: db}
}

const shopColumns = `id, created_at, updated_at, user_id, name,
	pending_orders, completed_orders, cancelled_orders, total_revenue`

func (s *ShopRepository) FindByID(ctx context.Context, id int64) (*domain.Shop, error) {
	row := s.db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id)
	shop, err := scanShop(row)
	if err != nil {
		return nil, convertErr(err, "finding shop %d", id)
	}
	return shop, nil
}

// FindByOwnerID возвращает магазин по владельцу-флористу.
func (s *ShopRepository) FindByOwnerID(ctx context.Context, userID int64) (*domain.Shop, error) {
	row := s.db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE user_id = $1`, userID)
	shop, err := scanShop(row)
	if err != nil {
		return nil, convertErr(err, "finding shop of user %d", userID)
	}
	return shop, nil
}

// IncrementCounter атомарно увеличивает один из аудиторских счетчиков магазина.
// Счетчики монотонные: движок заказов их только увеличивает.
func (s *ShopRepository) IncrementCounter(
	ctx context.Context,
	shopID int64,
	counter domain.ShopCounterType,
	by int64,
) error {
	var column string
	switch counter {
	case domain.ShopCounterPendingOrders:
		column = "pending_orders"
	case domain.ShopCounterCompletedOrders:
		column = "completed_orders"
	case domain.ShopCounterCancelledOrders:
		column = "cancelled_orders"
	default:
		return fmt.Errorf("[repository/incrementing shop counter] %w: unknown counter %q", domain.ErrUnknown, counter)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE shops SET `+column+` = `+column+` + $2, updated_at = now() WHERE id = $1`, shopID, by)
	if err != nil {
		return convertErr(err, "incrementing %s of shop %d", counter, shopID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/incrementing %s of shop %d] %w", counter, shopID, domain.ErrRecordNotFound)
	}
	return nil
}

func (s *ShopRepository) AddRevenue(ctx context.Context, shopID int64, amount decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE shops SET total_revenue = total_revenue + $2, updated_at = now() WHERE id = $1`, shopID, amount)
	if err != nil {
		return convertErr(err, "adding revenue to shop %d", shopID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/adding revenue to shop %d] %w", shopID, domain.ErrRecordNotFound)
	}
	return nil
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var shop domain.Shop
	if err := row.Scan(
		&shop.ID,
		&shop.CreatedAt,
		&shop.UpdatedAt,
		&shop.UserID,
		&shop.Name,
		&shop.PendingOrders,
		&shop.CompletedOrders,
		&shop.CancelledOrders,
		&shop.TotalRevenue,
	); err != nil {
		return nil, err
	}
	return &shop, nil
}

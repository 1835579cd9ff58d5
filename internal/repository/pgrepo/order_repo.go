package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, created_at, updated_at, user_id, shop_id, total_amount, status,
	payment_method, payment_status, shipping_address, notes`

func (o *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	row := o.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, shop_id, total_amount, status, payment_method, payment_status, shipping_address, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+orderColumns,
		args.UserID, args.ShopID, args.TotalAmount, args.Status,
		args.PaymentMethod, args.PaymentStatus, args.ShippingAddress, args.Notes)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order")
	}
	return order, nil
}

func (o *OrderRepository) CreateItems(ctx context.Context, orderID int64, items []repoargs.OrderItemCreate) error {
	for _, item := range items {
		_, err := o.db.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`,
			orderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return convertErr(err, "creating items of order %d", orderID)
		}
	}
	return nil
}

func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order %d", id)
	}
	items, itemsErr := o.getItems(ctx, id)
	if itemsErr != nil {
		return nil, itemsErr
	}
	order.Items = items
	return order, nil
}

// FindForUpdate читает заказ с блокировкой строки. Сериализует конкурентные смены
// статуса одного заказа (в т.ч. гонку отмены покупателем с отменой администратором).
func (o *OrderRepository) FindForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking order %d", id)
	}
	return order, nil
}

func (o *OrderRepository) UpdateStatus(ctx context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error) {
	row := o.db.QueryRow(ctx,
		`UPDATE orders SET status = $2, payment_status = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		args.ID, args.Status, args.PaymentStatus)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order %d", args.ID)
	}
	return order, nil
}

// GetByUserID возвращает заказы покупателя от новых к старым.
func (o *OrderRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	return o.getList(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (o *OrderRepository) GetByShopID(ctx context.Context, shopID int64) ([]domain.Order, error) {
	return o.getList(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE shop_id = $1 ORDER BY created_at DESC`, shopID)
}

func (o *OrderRepository) GetAll(ctx context.Context) ([]domain.Order, error) {
	return o.getList(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (o *OrderRepository) getList(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := o.db.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "listing orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing orders")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing orders")
	}
	return orders, nil
}

func (o *OrderRepository) getItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := o.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, convertErr(err, "items of order %d", orderID)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if scanErr := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); scanErr != nil {
			return nil, convertErr(scanErr, "items of order %d", orderID)
		}
		items = append(items, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "items of order %d", orderID)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.UserID,
		&order.ShopID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.ShippingAddress,
		&order.Notes,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

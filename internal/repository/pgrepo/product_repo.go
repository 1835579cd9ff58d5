package pgrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/pkg/uow"
)

type ProductRepository struct {
	db uow.DBTX
}

func NewProductRepository(db uow.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, created_at, updated_at, shop_id, name, price, stock`

func (p *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product %d", id)
	}
	return product, nil
}

// FindForUpdate читает товар с блокировкой строки. Пара «проверить остаток — списать
// остаток» при создании заказа должна быть линеаризована по товару, как и кошельки.
func (p *ProductRepository) FindForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "locking product %d", id)
	}
	return product, nil
}

// DecrementStock списывает qty единиц товара. Условие stock >= qty в самом запросе —
// второй рубеж после проверки сервисным слоем; ноль затронутых строк означает
// domain.ErrInsufficientStock.
func (p *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int64) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return convertErr(err, "decrementing stock of product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/decrementing stock of product %d] %w", id, domain.ErrInsufficientStock)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.ShopID,
		&product.Name,
		&product.Price,
		&product.Stock,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

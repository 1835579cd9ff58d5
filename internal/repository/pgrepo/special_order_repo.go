package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

type SpecialOrderRepository struct {
	db uow.DBTX
}

func NewSpecialOrderRepository(db uow.DBTX) *SpecialOrderRepository {
	return &SpecialOrderRepository{db: db}
}

const specialOrderColumns = `id, created_at, updated_at, user_id, product_name, description, category,
	budget, quantity, delivery_date, shipping_address, additional_notes, status, assigned_shop_id`

func (s *SpecialOrderRepository) Create(
	ctx context.Context,
	args repoargs.SpecialOrderCreate,
) (*domain.SpecialOrderRequest, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO special_order_requests
		 (user_id, product_name, description, category, budget, quantity, delivery_date,
		  shipping_address, additional_notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+specialOrderColumns,
		args.UserID, args.ProductName, args.Description, args.Category, args.Budget, args.Quantity,
		args.DeliveryDate, args.ShippingAddress, args.AdditionalNotes, domain.SpecialOrderStatusPending)
	req, err := scanSpecialOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating special order request")
	}
	return req, nil
}

func (s *SpecialOrderRepository) FindByID(ctx context.Context, id int64) (*domain.SpecialOrderRequest, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+specialOrderColumns+` FROM special_order_requests WHERE id = $1`, id)
	req, err := scanSpecialOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding special order request %d", id)
	}
	return req, nil
}

func (s *SpecialOrderRepository) FindForUpdate(ctx context.Context, id int64) (*domain.SpecialOrderRequest, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+specialOrderColumns+` FROM special_order_requests WHERE id = $1 FOR UPDATE`, id)
	req, err := scanSpecialOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking special order request %d", id)
	}
	return req, nil
}

// List возвращает запросы по предикату видимости. Пустой фильтр — все запросы (админ).
func (s *SpecialOrderRepository) List(
	ctx context.Context,
	filter repoargs.SpecialOrderFilter,
) ([]domain.SpecialOrderRequest, error) {
	var conditions []string
	var args []any

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.UnassignedOrShopID != nil {
		args = append(args, *filter.UnassignedOrShopID)
		conditions = append(conditions, fmt.Sprintf("(assigned_shop_id IS NULL OR assigned_shop_id = $%d)", len(args)))
	}

	query := `SELECT ` + specialOrderColumns + ` FROM special_order_requests`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "listing special order requests")
	}
	defer rows.Close()

	var requests []domain.SpecialOrderRequest
	for rows.Next() {
		req, scanErr := scanSpecialOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing special order requests")
		}
		requests = append(requests, *req)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing special order requests")
	}
	return requests, nil
}

// Claim назначает запрос магазину при условии, что он еще никому не назначен.
// Условие assigned_shop_id IS NULL в запросе решает гонку двух флористов на уровне БД:
// проигравшему вернется domain.ErrAlreadyAssigned.
func (s *SpecialOrderRepository) Claim(ctx context.Context, id int64, shopID int64) (*domain.SpecialOrderRequest, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE special_order_requests
		 SET assigned_shop_id = $2, status = $3, updated_at = now()
		 WHERE id = $1 AND assigned_shop_id IS NULL
		 RETURNING `+specialOrderColumns,
		id, shopID, domain.SpecialOrderStatusProcessing)
	req, err := scanSpecialOrder(row)
	if err != nil {
		return nil, convertErr(err, "claiming special order request %d", id)
	}
	return req, nil
}

func (s *SpecialOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.SpecialOrderStatusType,
) (*domain.SpecialOrderRequest, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE special_order_requests SET status = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+specialOrderColumns,
		id, status)
	req, err := scanSpecialOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of special order request %d", id)
	}
	return req, nil
}

// UpdateFields применяет частичную правку полей запроса. Nil-поля остаются как есть
// (COALESCE на стороне БД).
func (s *SpecialOrderRepository) UpdateFields(
	ctx context.Context,
	args repoargs.SpecialOrderUpdate,
) (*domain.SpecialOrderRequest, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE special_order_requests SET
			product_name = COALESCE($2, product_name),
			description = COALESCE($3, description),
			category = COALESCE($4, category),
			budget = COALESCE($5, budget),
			quantity = COALESCE($6, quantity),
			delivery_date = COALESCE($7, delivery_date),
			shipping_address = COALESCE($8, shipping_address),
			additional_notes = COALESCE($9, additional_notes),
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+specialOrderColumns,
		args.ID, args.ProductName, args.Description, args.Category, args.Budget, args.Quantity,
		args.DeliveryDate, args.ShippingAddress, args.AdditionalNotes)
	req, err := scanSpecialOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating special order request %d", args.ID)
	}
	return req, nil
}

func scanSpecialOrder(row pgx.Row) (*domain.SpecialOrderRequest, error) {
	var req domain.SpecialOrderRequest
	if err := row.Scan(
		&req.ID,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.UserID,
		&req.ProductName,
		&req.Description,
		&req.Category,
		&req.Budget,
		&req.Quantity,
		&req.DeliveryDate,
		&req.ShippingAddress,
		&req.AdditionalNotes,
		&req.Status,
		&req.AssignedShopID,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

package pgrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

type WithdrawalRepository struct {
	db uow.DBTX
}

func NewWithdrawalRepository(db uow.DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

const withdrawalColumns = `id, created_at, updated_at, user_id, amount, status, bank_account, bank_name, notes, processed_at`

func (w *WithdrawalRepository) Create(
	ctx context.Context,
	args repoargs.WithdrawalCreate,
) (*domain.WithdrawalRequest, error) {
	row := w.db.QueryRow(ctx,
		`INSERT INTO withdrawal_requests (user_id, amount, status, bank_account, bank_name, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+withdrawalColumns,
		args.UserID, args.Amount, domain.WithdrawalStatusPending, args.BankAccount, args.BankName, args.Notes)
	req, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "creating withdrawal request")
	}
	return req, nil
}

// FindForUpdate читает заявку с блокировкой строки: два администратора не могут
// обработать одну заявку одновременно.
func (w *WithdrawalRepository) FindForUpdate(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	row := w.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id)
	req, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "locking withdrawal request %d", id)
	}
	return req, nil
}

func (w *WithdrawalRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.WithdrawalStatusType,
	notes string,
	processedAt *time.Time,
) (*domain.WithdrawalRequest, error) {
	row := w.db.QueryRow(ctx,
		`UPDATE withdrawal_requests
		 SET status = $2, notes = $3, processed_at = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+withdrawalColumns,
		id, status, notes, processedAt)
	req, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "updating withdrawal request %d", id)
	}
	return req, nil
}

func (w *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error) {
	return w.getList(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (w *WithdrawalRepository) GetByStatus(
	ctx context.Context,
	status domain.WithdrawalStatusType,
) ([]domain.WithdrawalRequest, error) {
	return w.getList(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE status = $1 ORDER BY created_at ASC`, status)
}

func (w *WithdrawalRepository) getList(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.WithdrawalRequest, error) {
	rows, err := w.db.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "listing withdrawal requests")
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		req, scanErr := scanWithdrawal(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing withdrawal requests")
		}
		requests = append(requests, *req)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing withdrawal requests")
	}
	return requests, nil
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	if err := row.Scan(
		&req.ID,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.UserID,
		&req.Amount,
		&req.Status,
		&req.BankAccount,
		&req.BankName,
		&req.Notes,
		&req.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

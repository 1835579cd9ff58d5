package pgrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type WalletTransRepository struct {
	db uow.DBTX
}

func NewWalletTransRepository(db uow.DBTX) *WalletTransRepository {
	return &WalletTransRepository{db: db}
}

const walletTransColumns = `id, created_at, wallet_id, type, amount, description, balance_after, reference_id, metadata`

// Create добавляет запись в журнал кошелька. Журнал append-only: UPDATE/DELETE
// запросов у репозитория нет. Дубликат (wallet_id, reference_id) возвращает
// domain.ErrDuplicateKey благодаря уникальному индексу.
func (w *WalletTransRepository) Create(
	ctx context.Context,
	args repoargs.WalletTransactionCreate,
) (*domain.WalletTransaction, error) {
	metadata, metaErr := marshalMetadata(args.Metadata)
	if metaErr != nil {
		return nil, fmt.Errorf("[repository/creating wallet transaction] %w: %s", domain.ErrUnknown, metaErr.Error())
	}

	row := w.db.QueryRow(ctx,
		`INSERT INTO wallet_transactions (wallet_id, type, amount, description, balance_after, reference_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		 RETURNING `+walletTransColumns,
		args.WalletID, args.Type, args.Amount, args.Description, args.BalanceAfter, args.ReferenceID, metadata)

	trans, err := scanWalletTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating wallet transaction")
	}
	return trans, nil
}

func (w *WalletTransRepository) FindByReference(
	ctx context.Context,
	walletID int64,
	referenceID string,
) (*domain.WalletTransaction, error) {
	row := w.db.QueryRow(ctx,
		`SELECT `+walletTransColumns+` FROM wallet_transactions WHERE wallet_id = $1 AND reference_id = $2`,
		walletID, referenceID)
	trans, err := scanWalletTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding wallet transaction by reference %q", referenceID)
	}
	return trans, nil
}

// GetByWalletID возвращает журнал кошелька от новых записей к старым.
func (w *WalletTransRepository) GetByWalletID(ctx context.Context, walletID int64) ([]domain.WalletTransaction, error) {
	rows, err := w.db.Query(ctx,
		`SELECT `+walletTransColumns+` FROM wallet_transactions WHERE wallet_id = $1 ORDER BY id DESC`, walletID)
	if err != nil {
		return nil, convertErr(err, "wallet %d transactions", walletID)
	}
	defer rows.Close()

	var transactions []domain.WalletTransaction
	for rows.Next() {
		trans, scanErr := scanWalletTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "wallet %d transactions", walletID)
		}
		transactions = append(transactions, *trans)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "wallet %d transactions", walletID)
	}
	return transactions, nil
}

func scanWalletTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var trans domain.WalletTransaction
	var referenceID *string
	var metadata []byte

	if err := row.Scan(
		&trans.ID,
		&trans.CreatedAt,
		&trans.WalletID,
		&trans.Type,
		&trans.Amount,
		&trans.Description,
		&trans.BalanceAfter,
		&referenceID,
		&metadata,
	); err != nil {
		return nil, err
	}
	if referenceID != nil {
		trans.ReferenceID = *referenceID
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &trans.Metadata); err != nil {
			return nil, err
		}
	}
	return &trans, nil
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(metadata) //nolint:wrapcheck
}

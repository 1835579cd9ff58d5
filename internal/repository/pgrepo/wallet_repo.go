package pgrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/pkg/uow"
)

type WalletRepository struct {
	db uow.DBTX
}

func NewWalletRepository(db uow.DBTX) *WalletRepository {
	return &WalletRepository{db: db}
}

const walletColumns = `id, created_at, updated_at, user_id, balance`

func (w *WalletRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := w.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "finding wallet by userID %d", userID)
	}
	return wallet, nil
}

func (w *WalletRepository) Create(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := w.db.QueryRow(ctx,
		`INSERT INTO wallets (user_id, balance) VALUES ($1, 0) RETURNING `+walletColumns, userID)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "creating wallet for userID %d", userID)
	}
	return wallet, nil
}

// FindForUpdate читает кошелек с блокировкой строки (FOR UPDATE). Вызывается только
// внутри uow-транзакции: блокировка сериализует конкурентные применения транзакций
// к одному кошельку до коммита.
func (w *WalletRepository) FindForUpdate(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	row := w.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, walletID)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "locking wallet %d", walletID)
	}
	return wallet, nil
}

func (w *WalletRepository) UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	tag, err := w.db.Exec(ctx,
		`UPDATE wallets SET balance = $2, updated_at = now() WHERE id = $1`, walletID, balance)
	if err != nil {
		return convertErr(err, "updating balance of wallet %d", walletID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/updating balance of wallet %d] %w", walletID, domain.ErrRecordNotFound)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := row.Scan(
		&wallet.ID,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
		&wallet.UserID,
		&wallet.Balance,
	); err != nil {
		return nil, err
	}
	return &wallet, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

// moneyPrecision число знаков после запятой для всех денежных сумм (VND).
const moneyPrecision = 2

// LedgerService единственная точка записи балансов кошельков. Гарантирует, что
// баланс и журнал транзакций никогда не расходятся: оба изменения выполняются в одной
// транзакции БД под блокировкой строки кошелька.
type LedgerService struct {
	uow        uow.UOW
	walletRepo WalletRepository
	transRepo  WalletTransRepository
}

func NewLedgerService(u uow.UOW) (*LedgerService, error) {
	walletRepo, walletRepoErr := uow.GetRepositoryAs[WalletRepository](u, uow.RepositoryName(repoargs.WalletRepoName))
	if walletRepoErr != nil {
		return nil, walletRepoErr
	}
	transRepo, transRepoErr :=
		uow.GetRepositoryAs[WalletTransRepository](u, uow.RepositoryName(repoargs.WalletTransRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr
	}
	return &LedgerService{
		uow:        u,
		walletRepo: walletRepo,
		transRepo:  transRepo,
	}, nil
}

// GetOrCreateWallet возвращает кошелек пользователя, лениво создавая его с нулевым
// балансом при первом обращении. Гонка двух одновременных созданий разрешается
// уникальным индексом по user_id: проигравший перечитывает созданный победителем ряд.
func (l *LedgerService) GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, findErr := l.walletRepo.FindByUserID(ctx, userID)
	if findErr == nil {
		return wallet, nil
	}
	if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("getting wallet: %w", findErr)
	}

	wallet, createErr := l.walletRepo.Create(ctx, userID)
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			wallet, findErr = l.walletRepo.FindByUserID(ctx, userID)
			if findErr != nil {
				return nil, fmt.Errorf("getting wallet: %w", findErr)
			}
			return wallet, nil
		}
		return nil, fmt.Errorf("creating wallet: %w", createErr)
	}
	return wallet, nil
}

// GetOrCreateWalletWithin вариант GetOrCreateWallet для вызова изнутри открытой
// uow-транзакции (выплата флористу, оплата заказа).
func (l *LedgerService) GetOrCreateWalletWithin(ctx context.Context, tx uow.TX, userID int64) (*domain.Wallet, error) {
	walletRepo, repoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}

	wallet, findErr := walletRepo.FindByUserID(ctx, userID)
	if findErr == nil {
		return wallet, nil
	}
	if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("getting wallet: %w", findErr)
	}
	wallet, createErr := walletRepo.Create(ctx, userID)
	if createErr != nil {
		return nil, fmt.Errorf("creating wallet: %w", createErr)
	}
	return wallet, nil
}

// Transactions возвращает журнал кошелька пользователя от новых записей к старым.
func (l *LedgerService) Transactions(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	wallet, walletErr := l.GetOrCreateWallet(ctx, userID)
	if walletErr != nil {
		return nil, walletErr
	}
	transactions, err := l.transRepo.GetByWalletID(ctx, wallet.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

type ApplyTransactionArgs struct {
	WalletID    int64
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	ReferenceID string
	Metadata    map[string]string
}

// ApplyResult итог применения транзакции. Replayed означает, что операция с таким
// ReferenceID уже применялась раньше: возвращена прежняя запись, баланс не менялся.
type ApplyResult struct {
	Wallet      *domain.Wallet
	Transaction *domain.WalletTransaction
	Replayed    bool
}

// ApplyTransaction применяет знаковую сумму к кошельку и дописывает запись журнала.
//
// Алгоритм работы:
//  1. Блокирует строку кошелька (FOR UPDATE) — применения к одному кошельку
//     линеаризованы, значения BalanceAfter строго отражают порядок применения.
//  2. Если передан ReferenceID и запись с ним уже есть — возвращает ее без каких-либо
//     изменений (контракт идемпотентности для сверки депозитов и выплат).
//  3. Считает новый баланс; уход в минус — domain.ErrInsufficientFunds, без записей.
//  4. Обновляет баланс и создает запись журнала с BalanceAfter-снимком. Оба изменения
//     коммитятся вместе или не происходят вовсе.
func (l *LedgerService) ApplyTransaction(ctx context.Context, args ApplyTransactionArgs) (*ApplyResult, error) {
	var result *ApplyResult
	txErr := l.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var applyErr error
		result, applyErr = l.ApplyWithin(c, tx, args)
		return applyErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("applying wallet transaction: %w", txErr)
	}
	return result, nil
}

// ApplyWithin вариант ApplyTransaction для вызова изнутри уже открытой uow-транзакции.
// Используется движками заказов, выплат и выводов, чтобы денежное движение коммитилось
// атомарно с остальными изменениями операции.
func (l *LedgerService) ApplyWithin(ctx context.Context, tx uow.TX, args ApplyTransactionArgs) (*ApplyResult, error) {
	walletRepo, walletRepoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if walletRepoErr != nil {
		return nil, walletRepoErr //nolint:wrapcheck
	}
	transRepo, transRepoErr := uow.GetAs[WalletTransRepository](tx, uow.RepositoryName(repoargs.WalletTransRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr //nolint:wrapcheck
	}

	wallet, lockErr := walletRepo.FindForUpdate(ctx, args.WalletID)
	if lockErr != nil {
		return nil, lockErr //nolint:wrapcheck
	}

	if args.ReferenceID != "" {
		existing, findErr := transRepo.FindByReference(ctx, wallet.ID, args.ReferenceID)
		if findErr == nil {
			return &ApplyResult{Wallet: wallet, Transaction: existing, Replayed: true}, nil
		}
		if !errors.Is(findErr, domain.ErrRecordNotFound) {
			return nil, findErr //nolint:wrapcheck
		}
	}

	amount := args.Amount.Round(moneyPrecision)
	newBalance := wallet.Balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("wallet %d debit %s: %w", wallet.ID, amount.String(), domain.ErrInsufficientFunds)
	}

	if updErr := walletRepo.UpdateBalance(ctx, wallet.ID, newBalance); updErr != nil {
		return nil, updErr //nolint:wrapcheck
	}

	trans, createErr := transRepo.Create(ctx, repoargs.WalletTransactionCreate{
		WalletID:     wallet.ID,
		Type:         args.Type,
		Amount:       amount,
		Description:  args.Description,
		BalanceAfter: newBalance,
		ReferenceID:  args.ReferenceID,
		Metadata:     args.Metadata,
	})
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	wallet.Balance = newBalance
	return &ApplyResult{Wallet: wallet, Transaction: trans}, nil
}

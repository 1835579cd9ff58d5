package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/pkg/uow"
)

// WithdrawalService заявки флористов на вывод средств. Средства при создании заявки
// не резервируются: списание происходит только при одобрении администратором,
// с повторной проверкой баланса (он мог просесть с момента подачи).
type WithdrawalService struct {
	uow            uow.UOW
	withdrawalRepo WithdrawalRepository
	ledger         *LedgerService
}

func NewWithdrawalService(u uow.UOW, ledger *LedgerService) (*WithdrawalService, error) {
	withdrawalRepo, err := uow.GetRepositoryAs[WithdrawalRepository](u, uow.RepositoryName(repoargs.WithdrawalRepoName))
	if err != nil {
		return nil, err
	}
	return &WithdrawalService{
		uow:            u,
		withdrawalRepo: withdrawalRepo,
		ledger:         ledger,
	}, nil
}

type RequestWithdrawalArgs struct {
	UserID      int64
	Amount      decimal.Decimal
	BankAccount string
	BankName    string
	Notes       string
}

// Request создает заявку в статусе pending. Проверка баланса здесь информационная:
// деньги остаются на кошельке до решения администратора.
func (w *WithdrawalService) Request(ctx context.Context, args RequestWithdrawalArgs) (*domain.WithdrawalRequest, error) {
	amount := args.Amount.Round(moneyPrecision)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("requesting withdrawal: %w: amount must be positive", domain.ErrInsufficientFunds)
	}

	wallet, walletErr := w.ledger.GetOrCreateWallet(ctx, args.UserID)
	if walletErr != nil {
		return nil, fmt.Errorf("requesting withdrawal: %w", walletErr)
	}
	if wallet.Balance.LessThan(amount) {
		return nil, fmt.Errorf("requesting withdrawal: %w", domain.ErrInsufficientFunds)
	}

	req, createErr := w.withdrawalRepo.Create(ctx, repoargs.WithdrawalCreate{
		UserID:      args.UserID,
		Amount:      amount,
		BankAccount: args.BankAccount,
		BankName:    args.BankName,
		Notes:       args.Notes,
	})
	if createErr != nil {
		return nil, fmt.Errorf("requesting withdrawal: %w", createErr)
	}
	return req, nil
}

type ReviewWithdrawalArgs struct {
	RequestID int64
	NewStatus domain.WithdrawalStatusType
	ActorRole domain.RoleType
	Notes     string
}

// Review решение администратора по заявке, принимается ровно один раз: заявка не в
// pending отклоняет любой повторный перевод (domain.ErrInvalidStateTransition).
//
// На approved/processed баланс проверяется заново под блокировкой кошелька и только
// после этого списывается с записью withdrawal в журнал. Rejected кошелька не касается.
func (w *WithdrawalService) Review(ctx context.Context, args ReviewWithdrawalArgs) (*domain.WithdrawalRequest, error) {
	if args.ActorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("reviewing withdrawal: %w", domain.ErrForbidden)
	}
	switch args.NewStatus {
	case domain.WithdrawalStatusApproved, domain.WithdrawalStatusRejected, domain.WithdrawalStatusProcessed:
	case domain.WithdrawalStatusPending:
		fallthrough
	default:
		return nil, fmt.Errorf(
			"reviewing withdrawal: %w",
			domain.NewStateTransitionError(string(domain.WithdrawalStatusPending), string(args.NewStatus)),
		)
	}

	var reviewed *domain.WithdrawalRequest
	txErr := w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		withdrawalRepo, repoErr := uow.GetAs[WithdrawalRepository](tx, uow.RepositoryName(repoargs.WithdrawalRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		req, findErr := withdrawalRepo.FindForUpdate(c, args.RequestID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if req.Status != domain.WithdrawalStatusPending {
			return domain.NewStateTransitionError(string(req.Status), string(args.NewStatus))
		}

		var processedAt *time.Time
		if args.NewStatus != domain.WithdrawalStatusRejected {
			wallet, walletErr := w.ledger.GetOrCreateWalletWithin(c, tx, req.UserID)
			if walletErr != nil {
				return walletErr
			}
			_, debitErr := w.ledger.ApplyWithin(c, tx, ApplyTransactionArgs{
				WalletID:    wallet.ID,
				Type:        domain.TransactionWithdrawal,
				Amount:      req.Amount.Neg(),
				Description: fmt.Sprintf("Withdrawal to %s (%s)", req.BankName, req.BankAccount),
				ReferenceID: fmt.Sprintf("withdrawal_%d", req.ID),
			})
			if debitErr != nil {
				return debitErr
			}
			now := time.Now()
			processedAt = &now
		}

		notes := req.Notes
		if args.Notes != "" {
			notes = args.Notes
		}

		var updErr error
		reviewed, updErr = withdrawalRepo.UpdateStatus(c, req.ID, args.NewStatus, notes, processedAt)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("reviewing withdrawal: %w", txErr)
	}
	return reviewed, nil
}

// GetByUserID возвращает заявки флориста от новых к старым.
func (w *WithdrawalService) GetByUserID(ctx context.Context, userID int64) ([]domain.WithdrawalRequest, error) {
	requests, err := w.withdrawalRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return requests, nil
}

// GetPending возвращает необработанные заявки для админской очереди, старые впереди.
func (w *WithdrawalService) GetPending(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	requests, err := w.withdrawalRepo.GetByStatus(ctx, domain.WithdrawalStatusPending)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return requests, nil
}

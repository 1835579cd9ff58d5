package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/transport/bankfeed"
)

// ReconcileService подтверждает заявленный покупателем банковский депозит по ленте
// транзакций провайдера и зачисляет кошелек не более одного раза на внешнюю
// транзакцию — сколько бы раз сверку ни повторяли.
type ReconcileService struct {
	client BankFeedClient
	ledger *LedgerService
	l      *logrus.Entry
}

func NewReconcileService(client BankFeedClient, ledger *LedgerService, l *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		client: client,
		ledger: ledger,
		l:      l.WithField("component", "reconcile_service"),
	}
}

// ReconcileResult итог сверки. AlreadyConfirmed означает, что депозит был зачислен
// ранее: возвращена прежняя запись, баланс этим вызовом не менялся.
type ReconcileResult struct {
	Balance          decimal.Decimal
	Transaction      *domain.WalletTransaction
	AlreadyConfirmed bool
}

// ReconcileDeposit ищет в ленте провайдера входящую транзакцию с дескриптором
// покупателя и зачисляет кошелек.
//
// Алгоритм работы:
//  1. Дескриптор нормализуется: нижний регистр, все не-буквенно-цифровые символы
//     отбрасываются. Так же нормализуется содержимое каждой записи ленты.
//  2. Запрашивается лента (ошибка сети/провайдера — domain.ErrUpstreamUnavailable).
//  3. Берется первая запись, чье нормализованное содержимое содержит дескриптор,
//     сумма входящая (> 0) и — если заявлена — совпадает с заявленной с точностью
//     до единицы. Нет совпадений — domain.ErrNoMatchingTransaction.
//  4. Из записи выводится стабильный референс; зачисление идет через идемпотентный
//     ApplyTransaction, поэтому повтор всей сверки после сбоя не удваивает депозит.
func (r *ReconcileService) ReconcileDeposit(
	ctx context.Context,
	userID int64,
	descriptor string,
	claimedAmount *decimal.Decimal,
) (*ReconcileResult, error) {
	normDescriptor := normalizeDescriptor(descriptor)
	if normDescriptor == "" {
		return nil, fmt.Errorf("reconciling deposit: %w: empty descriptor", domain.ErrNoMatchingTransaction)
	}

	feed, feedErr := r.client.ListRecentTransactions(ctx)
	if feedErr != nil {
		r.l.WithError(feedErr).Warn("bank feed fetch failed")
		return nil, fmt.Errorf("reconciling deposit: %w: %s", domain.ErrUpstreamUnavailable, feedErr.Error())
	}

	matched := matchFeedEntry(feed, normDescriptor, claimedAmount)
	if matched == nil {
		return nil, fmt.Errorf("reconciling deposit: %w", domain.ErrNoMatchingTransaction)
	}

	amount := matched.Amount
	if claimedAmount != nil {
		amount = *claimedAmount
	}

	wallet, walletErr := r.ledger.GetOrCreateWallet(ctx, userID)
	if walletErr != nil {
		return nil, fmt.Errorf("reconciling deposit: %w", walletErr)
	}

	result, applyErr := r.ledger.ApplyTransaction(ctx, ApplyTransactionArgs{
		WalletID:    wallet.ID,
		Type:        domain.TransactionDeposit,
		Amount:      amount,
		Description: fmt.Sprintf("Bank deposit %s", descriptor),
		ReferenceID: deriveReference(matched),
		Metadata: map[string]string{
			"descriptor": descriptor,
			"source":     "bankfeed",
		},
	})
	if applyErr != nil {
		return nil, fmt.Errorf("reconciling deposit: %w", applyErr)
	}

	return &ReconcileResult{
		Balance:          result.Wallet.Balance,
		Transaction:      result.Transaction,
		AlreadyConfirmed: result.Replayed,
	}, nil
}

// matchFeedEntry возвращает первую подходящую запись ленты или nil.
func matchFeedEntry(
	feed []bankfeed.Transaction,
	normDescriptor string,
	claimedAmount *decimal.Decimal,
) *bankfeed.Transaction {
	for i := range feed {
		entry := &feed[i]
		if !entry.Amount.IsPositive() {
			continue
		}
		if !strings.Contains(normalizeDescriptor(entry.Description), normDescriptor) {
			continue
		}
		if claimedAmount != nil && !entry.Amount.Round(0).Equal(claimedAmount.Round(0)) {
			continue
		}
		return entry
	}
	return nil
}

// deriveReference выводит референс идемпотентности из идентификаторов провайдера.
// Цепочка кандидатов: RefID, затем TID. Если провайдер не дал ни одного, референсом
// становится метка времени — такой депозит не защищен от повтора (известное
// ограничение исходного протокола провайдера).
func deriveReference(entry *bankfeed.Transaction) string {
	if entry.RefID != "" {
		return "bankfeed_" + entry.RefID
	}
	if entry.TID != "" {
		return "bankfeed_" + entry.TID
	}
	return fmt.Sprintf("bankfeed_%d", time.Now().UnixNano())
}

// normalizeDescriptor приводит дескриптор к нижнему регистру и отбрасывает все
// не-буквенно-цифровые символы: банки произвольно мнут содержимое платежного
// назначения (регистр, пробелы, плюсы).
func normalizeDescriptor(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/transport/bankfeed"
)

type ReconcileServiceTestSuite struct {
	suite.Suite
	feed    *stubBankFeed
	ledger  *LedgerService
	service *ReconcileService
}

func TestReconcileServiceSuite(t *testing.T) {
	suite.Run(t, new(ReconcileServiceTestSuite))
}

func (s *ReconcileServiceTestSuite) SetupTest() {
	u := newStubUOW()
	u.put(repoargs.WalletRepoName, newMemWalletRepo())
	u.put(repoargs.WalletTransRepoName, newMemTransRepo())

	var err error
	s.ledger, err = NewLedgerService(u)
	s.Require().NoError(err)

	l := logrus.New()
	l.SetOutput(io.Discard)

	s.feed = &stubBankFeed{}
	s.service = NewReconcileService(s.feed, s.ledger, l)
}

func feedEntry(refID, description string, amount int64) bankfeed.Transaction {
	return bankfeed.Transaction{
		RefID:       refID,
		Description: description,
		Amount:      decimal.NewFromInt(amount),
		When:        time.Now(),
	}
}

func (s *ReconcileServiceTestSuite) TestReconcile_MatchesNormalizedDescriptor() {
	// банк помял содержимое: регистр, пробелы, плюсы.
	s.feed.transactions = []bankfeed.Transaction{
		feedEntry("ref-1", "CT DEN:+NAP+TIEN+FLORA+77+", 500000),
	}

	result, err := s.service.ReconcileDeposit(context.Background(), 1, "NapTienFlora77", nil)
	s.Require().NoError(err)
	s.False(result.AlreadyConfirmed)
	s.True(result.Balance.Equal(decimal.NewFromInt(500000)))
	s.Equal("bankfeed_ref-1", result.Transaction.ReferenceID)
}

func (s *ReconcileServiceTestSuite) TestReconcile_Replay() {
	s.feed.transactions = []bankfeed.Transaction{
		feedEntry("ref-1", "nap tien flora 77", 500000),
	}

	first, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", nil)
	s.Require().NoError(err)

	// повторная сверка того же перевода не удваивает депозит.
	second, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", nil)
	s.Require().NoError(err)
	s.True(second.AlreadyConfirmed)
	s.Equal(first.Transaction.ID, second.Transaction.ID)
	s.True(second.Balance.Equal(decimal.NewFromInt(500000)))
}

func (s *ReconcileServiceTestSuite) TestReconcile_ClaimedAmountMismatch() {
	s.feed.transactions = []bankfeed.Transaction{
		feedEntry("ref-1", "naptienflora77", 500000),
	}

	claimed := decimal.NewFromInt(400000)
	_, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", &claimed)
	s.Require().ErrorIs(err, domain.ErrNoMatchingTransaction)
}

func (s *ReconcileServiceTestSuite) TestReconcile_ClaimedAmountWins() {
	// при совпадении до единицы зачисляется заявленная сумма, а не сумма из ленты.
	s.feed.transactions = []bankfeed.Transaction{
		feedEntry("ref-1", "naptienflora77", 500000),
	}

	claimed := decimal.RequireFromString("500000.4")
	result, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", &claimed)
	s.Require().NoError(err)
	s.True(result.Balance.Equal(decimal.RequireFromString("500000.4")))
}

func (s *ReconcileServiceTestSuite) TestReconcile_SkipsOutgoing() {
	s.feed.transactions = []bankfeed.Transaction{
		{RefID: "out", Description: "naptienflora77", Amount: decimal.NewFromInt(-500000)},
	}

	_, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", nil)
	s.Require().ErrorIs(err, domain.ErrNoMatchingTransaction)
}

func (s *ReconcileServiceTestSuite) TestReconcile_FeedUnavailable() {
	s.feed.err = errors.New("connection refused")

	_, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", nil)
	s.Require().ErrorIs(err, domain.ErrUpstreamUnavailable)
}

func (s *ReconcileServiceTestSuite) TestReconcile_EmptyDescriptor() {
	_, err := s.service.ReconcileDeposit(context.Background(), 1, "+++", nil)
	s.Require().ErrorIs(err, domain.ErrNoMatchingTransaction)
}

func (s *ReconcileServiceTestSuite) TestReconcile_TIDFallbackReference() {
	s.feed.transactions = []bankfeed.Transaction{
		{TID: "tid-9", Description: "naptienflora77", Amount: decimal.NewFromInt(1000)},
	}

	result, err := s.service.ReconcileDeposit(context.Background(), 1, "naptienflora77", nil)
	s.Require().NoError(err)
	s.Equal("bankfeed_tid-9", result.Transaction.ReferenceID)
}

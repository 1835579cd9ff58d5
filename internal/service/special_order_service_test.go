package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
)

type SpecialOrderServiceTestSuite struct {
	suite.Suite
	specialRepo *memSpecialRepo
	shopRepo    *memShopRepo
	ledger      *LedgerService
	service     *SpecialOrderService
}

func TestSpecialOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(SpecialOrderServiceTestSuite))
}

func (s *SpecialOrderServiceTestSuite) SetupTest() {
	s.specialRepo = newMemSpecialRepo()
	s.shopRepo = newMemShopRepo(
		domain.Shop{ID: 10, UserID: 200, Name: "Flora 77"},
		domain.Shop{ID: 11, UserID: 201, Name: "Orchid house"},
	)

	u := newStubUOW()
	u.put(repoargs.WalletRepoName, newMemWalletRepo())
	u.put(repoargs.WalletTransRepoName, newMemTransRepo())
	u.put(repoargs.SpecialOrderRepoName, s.specialRepo)
	u.put(repoargs.ShopRepoName, s.shopRepo)

	var err error
	s.ledger, err = NewLedgerService(u)
	s.Require().NoError(err)
	s.service, err = NewSpecialOrderService(u, s.ledger)
	s.Require().NoError(err)
}

func (s *SpecialOrderServiceTestSuite) createRequest(budget int64) *domain.SpecialOrderRequest {
	req, err := s.service.Create(context.Background(), repoargs.SpecialOrderCreate{
		UserID:          100,
		ProductName:     "Wedding arch",
		Description:     "White roses and eucalyptus",
		Budget:          decimal.NewFromInt(budget),
		Quantity:        1,
		ShippingAddress: "12 Nguyen Trai",
	})
	s.Require().NoError(err)
	return req
}

func (s *SpecialOrderServiceTestSuite) floristBalance(userID int64) decimal.Decimal {
	wallet, err := s.ledger.GetOrCreateWallet(context.Background(), userID)
	s.Require().NoError(err)
	return wallet.Balance
}

func (s *SpecialOrderServiceTestSuite) TestCreate_Pending() {
	req := s.createRequest(2000000)
	s.Equal(domain.SpecialOrderStatusPending, req.Status)
	s.Nil(req.AssignedShopID)
}

func (s *SpecialOrderServiceTestSuite) TestClaim() {
	req := s.createRequest(2000000)

	claimed, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)
	s.Equal(domain.SpecialOrderStatusProcessing, claimed.Status)
	s.Require().NotNil(claimed.AssignedShopID)
	s.Equal(int64(10), *claimed.AssignedShopID)
}

func (s *SpecialOrderServiceTestSuite) TestClaim_AlreadyAssigned() {
	req := s.createRequest(2000000)

	_, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)

	// второй флорист опоздал.
	_, err = s.service.Claim(context.Background(), req.ID, 201)
	s.Require().ErrorIs(err, domain.ErrAlreadyAssigned)
}

func (s *SpecialOrderServiceTestSuite) TestComplete_PaysOutOnce() {
	req := s.createRequest(2000000)
	_, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)

	completed, err := s.service.UpdateStatus(context.Background(), UpdateSpecialOrderStatusArgs{
		RequestID: req.ID,
		NewStatus: domain.SpecialOrderStatusCompleted,
		ActorID:   200,
		ActorRole: domain.RoleFlorist,
	})
	s.Require().NoError(err)
	s.Equal(domain.SpecialOrderStatusCompleted, completed.Status)
	s.True(s.floristBalance(200).Equal(decimal.NewFromInt(2000000)))

	// повторный перевод в completed невозможен, выплата не задвоится.
	_, err = s.service.UpdateStatus(context.Background(), UpdateSpecialOrderStatusArgs{
		RequestID: req.ID,
		NewStatus: domain.SpecialOrderStatusCompleted,
		ActorID:   200,
		ActorRole: domain.RoleFlorist,
	})
	s.Require().ErrorIs(err, domain.ErrInvalidStateTransition)
	s.True(s.floristBalance(200).Equal(decimal.NewFromInt(2000000)))
}

func (s *SpecialOrderServiceTestSuite) TestComplete_ZeroBudgetNoPayout() {
	req := s.createRequest(0)
	_, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)

	_, err = s.service.UpdateStatus(context.Background(), UpdateSpecialOrderStatusArgs{
		RequestID: req.ID,
		NewStatus: domain.SpecialOrderStatusCompleted,
		ActorID:   200,
		ActorRole: domain.RoleFlorist,
	})
	s.Require().NoError(err)

	transactions, _ := s.ledger.Transactions(context.Background(), 200)
	s.Empty(transactions)
}

func (s *SpecialOrderServiceTestSuite) TestUpdateStatus_ForeignFloristForbidden() {
	req := s.createRequest(2000000)
	_, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)

	_, err = s.service.UpdateStatus(context.Background(), UpdateSpecialOrderStatusArgs{
		RequestID: req.ID,
		NewStatus: domain.SpecialOrderStatusCompleted,
		ActorID:   201, // флорист другого магазина
		ActorRole: domain.RoleFlorist,
	})
	s.Require().ErrorIs(err, domain.ErrForbidden)
}

func (s *SpecialOrderServiceTestSuite) TestUpdateStatus_CustomerForbidden() {
	req := s.createRequest(2000000)

	_, err := s.service.UpdateStatus(context.Background(), UpdateSpecialOrderStatusArgs{
		RequestID: req.ID,
		NewStatus: domain.SpecialOrderStatusCancelled,
		ActorID:   100,
		ActorRole: domain.RoleCustomer,
	})
	s.Require().ErrorIs(err, domain.ErrForbidden)
}

func (s *SpecialOrderServiceTestSuite) TestUpdate_OwnerWhilePending() {
	req := s.createRequest(2000000)

	newBudget := decimal.NewFromInt(2500000)
	updated, err := s.service.Update(context.Background(), UpdateSpecialOrderArgs{
		RequestID:  req.ID,
		CustomerID: 100,
		Fields:     repoargs.SpecialOrderUpdate{Budget: &newBudget},
	})
	s.Require().NoError(err)
	s.True(updated.Budget.Equal(newBudget))
	// остальные поля не тронуты.
	s.Equal("Wedding arch", updated.ProductName)
}

func (s *SpecialOrderServiceTestSuite) TestUpdate_NotOwner() {
	req := s.createRequest(2000000)

	newBudget := decimal.NewFromInt(1)
	_, err := s.service.Update(context.Background(), UpdateSpecialOrderArgs{
		RequestID:  req.ID,
		CustomerID: 555,
		Fields:     repoargs.SpecialOrderUpdate{Budget: &newBudget},
	})
	s.Require().ErrorIs(err, domain.ErrForbidden)
}

func (s *SpecialOrderServiceTestSuite) TestUpdate_LockedAfterClaim() {
	req := s.createRequest(2000000)
	_, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)

	newBudget := decimal.NewFromInt(1)
	_, err = s.service.Update(context.Background(), UpdateSpecialOrderArgs{
		RequestID:  req.ID,
		CustomerID: 100,
		Fields:     repoargs.SpecialOrderUpdate{Budget: &newBudget},
	})
	s.Require().ErrorIs(err, domain.ErrInvalidStateTransition)
}

func (s *SpecialOrderServiceTestSuite) TestCancel_OwnerWhilePending() {
	req := s.createRequest(2000000)

	cancelled, err := s.service.Cancel(context.Background(), req.ID, 100, domain.RoleCustomer)
	s.Require().NoError(err)
	s.Equal(domain.SpecialOrderStatusCancelled, cancelled.Status)
}

func (s *SpecialOrderServiceTestSuite) TestCancel_AfterClaimRejected() {
	req := s.createRequest(2000000)
	_, err := s.service.Claim(context.Background(), req.ID, 200)
	s.Require().NoError(err)

	_, err = s.service.Cancel(context.Background(), req.ID, 100, domain.RoleCustomer)
	s.Require().ErrorIs(err, domain.ErrInvalidStateTransition)
}

func (s *SpecialOrderServiceTestSuite) TestListFor_Visibility() {
	first := s.createRequest(2000000)
	s.createRequest(500000)
	_, err := s.service.Claim(context.Background(), first.ID, 200)
	s.Require().NoError(err)

	// покупатель видит оба своих запроса.
	own, err := s.service.ListFor(context.Background(), 100, domain.RoleCustomer)
	s.Require().NoError(err)
	s.Len(own, 2)

	// флорист магазина 10 видит свой назначенный и свободный.
	florist, err := s.service.ListFor(context.Background(), 200, domain.RoleFlorist)
	s.Require().NoError(err)
	s.Len(florist, 2)

	// флорист магазина 11 видит только свободный.
	other, err := s.service.ListFor(context.Background(), 201, domain.RoleFlorist)
	s.Require().NoError(err)
	s.Len(other, 1)

	// админ видит все.
	all, err := s.service.ListFor(context.Background(), 1, domain.RoleAdmin)
	s.Require().NoError(err)
	s.Len(all, 2)
}

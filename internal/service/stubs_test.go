package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/broker"
	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/transport/bankfeed"
	"github.com/fsdevblog/floramart/pkg/uow"
)

// stubUOW in-memory замена UnitOfWork: Do выполняет fn без настоящей транзакции,
// репозитории общие для "пула" и "транзакции". Атомарность здесь не проверяется,
// проверяется бизнес-логика сервисов поверх контрактов репозиториев.
type stubUOW struct {
	repos map[uow.RepositoryName]uow.Repository
}

func newStubUOW() *stubUOW {
	return &stubUOW{repos: make(map[uow.RepositoryName]uow.Repository)}
}

func (u *stubUOW) put(name repoargs.RepositoryName, repo uow.Repository) {
	u.repos[uow.RepositoryName(name)] = repo
}

func (u *stubUOW) Register(name uow.RepositoryName, factory uow.RepositoryFactory) error {
	u.repos[name] = factory(nil)
	return nil
}

func (u *stubUOW) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	repo, ok := u.repos[name]
	if !ok {
		return nil, uow.ErrRepositoryNotRegistered
	}
	return repo, nil
}

func (u *stubUOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	return fn(ctx, stubTX{repos: u.repos})
}

type stubTX struct {
	repos map[uow.RepositoryName]uow.Repository
}

func (t stubTX) Get(name uow.RepositoryName) (uow.Repository, error) {
	repo, ok := t.repos[name]
	if !ok {
		return nil, uow.ErrRepositoryNotRegistered
	}
	return repo, nil
}

// --- кошельки ---

type memWalletRepo struct {
	nextID int64
	byID   map[int64]*domain.Wallet
	byUser map[int64]int64
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{
		byID:   make(map[int64]*domain.Wallet),
		byUser: make(map[int64]int64),
	}
}

func (r *memWalletRepo) FindByUserID(_ context.Context, userID int64) (*domain.Wallet, error) {
	id, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	w := *r.byID[id]
	return &w, nil
}

func (r *memWalletRepo) Create(_ context.Context, userID int64) (*domain.Wallet, error) {
	if _, ok := r.byUser[userID]; ok {
		return nil, domain.ErrDuplicateKey
	}
	r.nextID++
	wallet := &domain.Wallet{
		ID:        r.nextID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		UserID:    userID,
		Balance:   decimal.Zero,
	}
	r.byID[wallet.ID] = wallet
	r.byUser[userID] = wallet.ID
	w := *wallet
	return &w, nil
}

func (r *memWalletRepo) FindForUpdate(_ context.Context, walletID int64) (*domain.Wallet, error) {
	wallet, ok := r.byID[walletID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	w := *wallet
	return &w, nil
}

func (r *memWalletRepo) UpdateBalance(_ context.Context, walletID int64, balance decimal.Decimal) error {
	wallet, ok := r.byID[walletID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	wallet.Balance = balance
	return nil
}

// --- журнал кошелька ---

type memTransRepo struct {
	nextID int64
	all    []domain.WalletTransaction
}

func newMemTransRepo() *memTransRepo {
	return &memTransRepo{}
}

func (r *memTransRepo) Create(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
	if args.ReferenceID != "" {
		for i := range r.all {
			if r.all[i].WalletID == args.WalletID && r.all[i].ReferenceID == args.ReferenceID {
				return nil, domain.ErrDuplicateKey
			}
		}
	}
	r.nextID++
	trans := domain.WalletTransaction{
		ID:           r.nextID,
		CreatedAt:    time.Now(),
		WalletID:     args.WalletID,
		Type:         args.Type,
		Amount:       args.Amount,
		Description:  args.Description,
		BalanceAfter: args.BalanceAfter,
		ReferenceID:  args.ReferenceID,
		Metadata:     args.Metadata,
	}
	r.all = append(r.all, trans)
	t := trans
	return &t, nil
}

func (r *memTransRepo) FindByReference(_ context.Context, walletID int64, referenceID string) (*domain.WalletTransaction, error) {
	for i := range r.all {
		if r.all[i].WalletID == walletID && r.all[i].ReferenceID == referenceID {
			t := r.all[i]
			return &t, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *memTransRepo) GetByWalletID(_ context.Context, walletID int64) ([]domain.WalletTransaction, error) {
	var res []domain.WalletTransaction
	for i := range r.all {
		if r.all[i].WalletID == walletID {
			res = append(res, r.all[i])
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

// --- заявки на вывод ---

type memWithdrawalRepo struct {
	nextID int64
	byID   map[int64]*domain.WithdrawalRequest
}

func newMemWithdrawalRepo() *memWithdrawalRepo {
	return &memWithdrawalRepo{byID: make(map[int64]*domain.WithdrawalRequest)}
}

func (r *memWithdrawalRepo) Create(_ context.Context, args repoargs.WithdrawalCreate) (*domain.WithdrawalRequest, error) {
	r.nextID++
	req := &domain.WithdrawalRequest{
		ID:          r.nextID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		UserID:      args.UserID,
		Amount:      args.Amount,
		Status:      domain.WithdrawalStatusPending,
		BankAccount: args.BankAccount,
		BankName:    args.BankName,
		Notes:       args.Notes,
	}
	r.byID[req.ID] = req
	w := *req
	return &w, nil
}

func (r *memWithdrawalRepo) FindForUpdate(_ context.Context, id int64) (*domain.WithdrawalRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	w := *req
	return &w, nil
}

func (r *memWithdrawalRepo) UpdateStatus(
	_ context.Context,
	id int64,
	status domain.WithdrawalStatusType,
	notes string,
	processedAt *time.Time,
) (*domain.WithdrawalRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	req.Status = status
	req.Notes = notes
	req.ProcessedAt = processedAt
	req.UpdatedAt = time.Now()
	w := *req
	return &w, nil
}

func (r *memWithdrawalRepo) GetByUserID(_ context.Context, userID int64) ([]domain.WithdrawalRequest, error) {
	return r.list(func(req *domain.WithdrawalRequest) bool { return req.UserID == userID }), nil
}

func (r *memWithdrawalRepo) GetByStatus(_ context.Context, status domain.WithdrawalStatusType) ([]domain.WithdrawalRequest, error) {
	return r.list(func(req *domain.WithdrawalRequest) bool { return req.Status == status }), nil
}

func (r *memWithdrawalRepo) list(keep func(*domain.WithdrawalRequest) bool) []domain.WithdrawalRequest {
	var res []domain.WithdrawalRequest
	for _, req := range r.byID {
		if keep(req) {
			res = append(res, *req)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res
}

// --- заказы ---

type memOrderRepo struct {
	nextID int64
	byID   map[int64]*domain.Order
	items  map[int64][]domain.OrderItem
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		byID:  make(map[int64]*domain.Order),
		items: make(map[int64][]domain.OrderItem),
	}
}

func (r *memOrderRepo) Create(_ context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	r.nextID++
	order := &domain.Order{
		ID:              r.nextID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
		UserID:          args.UserID,
		ShopID:          args.ShopID,
		TotalAmount:     args.TotalAmount,
		Status:          args.Status,
		PaymentMethod:   args.PaymentMethod,
		PaymentStatus:   args.PaymentStatus,
		ShippingAddress: args.ShippingAddress,
		Notes:           args.Notes,
	}
	r.byID[order.ID] = order
	o := *order
	return &o, nil
}

func (r *memOrderRepo) CreateItems(_ context.Context, orderID int64, items []repoargs.OrderItemCreate) error {
	if _, ok := r.byID[orderID]; !ok {
		return domain.ErrRecordNotFound
	}
	for _, item := range items {
		r.items[orderID] = append(r.items[orderID], domain.OrderItem{
			ID:        int64(len(r.items[orderID]) + 1),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	o := *order
	o.Items = append([]domain.OrderItem(nil), r.items[id]...)
	return &o, nil
}

func (r *memOrderRepo) FindForUpdate(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	o := *order
	return &o, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error) {
	order, ok := r.byID[args.ID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	order.Status = args.Status
	order.PaymentStatus = args.PaymentStatus
	order.UpdatedAt = time.Now()
	o := *order
	return &o, nil
}

func (r *memOrderRepo) GetByUserID(_ context.Context, userID int64) ([]domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *memOrderRepo) GetByShopID(_ context.Context, shopID int64) ([]domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.ShopID == shopID }), nil
}

func (r *memOrderRepo) GetAll(_ context.Context) ([]domain.Order, error) {
	return r.list(func(*domain.Order) bool { return true }), nil
}

func (r *memOrderRepo) list(keep func(*domain.Order) bool) []domain.Order {
	var res []domain.Order
	for _, order := range r.byID {
		if keep(order) {
			res = append(res, *order)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res
}

// --- товары ---

type memProductRepo struct {
	byID map[int64]*domain.Product
}

func newMemProductRepo(products ...domain.Product) *memProductRepo {
	repo := &memProductRepo{byID: make(map[int64]*domain.Product)}
	for i := range products {
		p := products[i]
		repo.byID[p.ID] = &p
	}
	return repo
}

func (r *memProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	p := *product
	return &p, nil
}

func (r *memProductRepo) FindForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) DecrementStock(_ context.Context, id int64, qty int64) error {
	product, ok := r.byID[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if product.Stock < qty {
		return fmt.Errorf("product %d: %w", id, domain.ErrInsufficientStock)
	}
	product.Stock -= qty
	return nil
}

// --- магазины ---

type memShopRepo struct {
	byID    map[int64]*domain.Shop
	byOwner map[int64]int64
}

func newMemShopRepo(shops ...domain.Shop) *memShopRepo {
	repo := &memShopRepo{
		byID:    make(map[int64]*domain.Shop),
		byOwner: make(map[int64]int64),
	}
	for i := range shops {
		s := shops[i]
		repo.byID[s.ID] = &s
		repo.byOwner[s.UserID] = s.ID
	}
	return repo
}

func (r *memShopRepo) FindByID(_ context.Context, id int64) (*domain.Shop, error) {
	shop, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	s := *shop
	return &s, nil
}

func (r *memShopRepo) FindByOwnerID(_ context.Context, userID int64) (*domain.Shop, error) {
	id, ok := r.byOwner[userID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	s := *r.byID[id]
	return &s, nil
}

func (r *memShopRepo) IncrementCounter(_ context.Context, shopID int64, counter domain.ShopCounterType, by int64) error {
	shop, ok := r.byID[shopID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	switch counter {
	case domain.ShopCounterPendingOrders:
		shop.PendingOrders += by
	case domain.ShopCounterCompletedOrders:
		shop.CompletedOrders += by
	case domain.ShopCounterCancelledOrders:
		shop.CancelledOrders += by
	}
	return nil
}

func (r *memShopRepo) AddRevenue(_ context.Context, shopID int64, amount decimal.Decimal) error {
	shop, ok := r.byID[shopID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	shop.TotalRevenue = shop.TotalRevenue.Add(amount)
	return nil
}

// --- индивидуальные запросы ---

type memSpecialRepo struct {
	nextID int64
	byID   map[int64]*domain.SpecialOrderRequest
}

func newMemSpecialRepo() *memSpecialRepo {
	return &memSpecialRepo{byID: make(map[int64]*domain.SpecialOrderRequest)}
}

func (r *memSpecialRepo) Create(_ context.Context, args repoargs.SpecialOrderCreate) (*domain.SpecialOrderRequest, error) {
	r.nextID++
	req := &domain.SpecialOrderRequest{
		ID:              r.nextID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
		UserID:          args.UserID,
		ProductName:     args.ProductName,
		Description:     args.Description,
		Category:        args.Category,
		Budget:          args.Budget,
		Quantity:        args.Quantity,
		DeliveryDate:    args.DeliveryDate,
		ShippingAddress: args.ShippingAddress,
		AdditionalNotes: args.AdditionalNotes,
		Status:          domain.SpecialOrderStatusPending,
	}
	r.byID[req.ID] = req
	s := *req
	return &s, nil
}

func (r *memSpecialRepo) FindByID(_ context.Context, id int64) (*domain.SpecialOrderRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	s := *req
	return &s, nil
}

func (r *memSpecialRepo) FindForUpdate(ctx context.Context, id int64) (*domain.SpecialOrderRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *memSpecialRepo) List(_ context.Context, filter repoargs.SpecialOrderFilter) ([]domain.SpecialOrderRequest, error) {
	var res []domain.SpecialOrderRequest
	for _, req := range r.byID {
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if filter.UnassignedOrShopID != nil &&
			req.AssignedShopID != nil && *req.AssignedShopID != *filter.UnassignedOrShopID {
			continue
		}
		res = append(res, *req)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

func (r *memSpecialRepo) Claim(_ context.Context, id int64, shopID int64) (*domain.SpecialOrderRequest, error) {
	req, ok := r.byID[id]
	if !ok || req.AssignedShopID != nil {
		// как и в SQL-версии: строка с незанятым назначением не найдена.
		return nil, domain.ErrRecordNotFound
	}
	req.AssignedShopID = &shopID
	req.Status = domain.SpecialOrderStatusProcessing
	req.UpdatedAt = time.Now()
	s := *req
	return &s, nil
}

func (r *memSpecialRepo) UpdateStatus(_ context.Context, id int64, status domain.SpecialOrderStatusType) (*domain.SpecialOrderRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	s := *req
	return &s, nil
}

func (r *memSpecialRepo) UpdateFields(_ context.Context, args repoargs.SpecialOrderUpdate) (*domain.SpecialOrderRequest, error) {
	req, ok := r.byID[args.ID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	if args.ProductName != nil {
		req.ProductName = *args.ProductName
	}
	if args.Description != nil {
		req.Description = *args.Description
	}
	if args.Category != nil {
		req.Category = *args.Category
	}
	if args.Budget != nil {
		req.Budget = *args.Budget
	}
	if args.Quantity != nil {
		req.Quantity = *args.Quantity
	}
	if args.DeliveryDate != nil {
		req.DeliveryDate = args.DeliveryDate
	}
	if args.ShippingAddress != nil {
		req.ShippingAddress = *args.ShippingAddress
	}
	if args.AdditionalNotes != nil {
		req.AdditionalNotes = *args.AdditionalNotes
	}
	req.UpdatedAt = time.Now()
	s := *req
	return &s, nil
}

// --- внешние коллабораторы ---

type stubBankFeed struct {
	transactions []bankfeed.Transaction
	err          error
}

func (s *stubBankFeed) ListRecentTransactions(context.Context) ([]bankfeed.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.transactions, nil
}

type captureEvents struct {
	events []broker.OrderEvent
}

func (c *captureEvents) Publish(_ context.Context, event broker.OrderEvent) error {
	c.events = append(c.events, event)
	return nil
}

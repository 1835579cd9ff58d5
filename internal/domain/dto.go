package domain

type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleFlorist  RoleType = "florist"
	RoleAdmin    RoleType = "admin"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionPayment    TransactionType = "payment"
	TransactionRefund     TransactionType = "refund"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type OrderStatusType string

const (
	OrderStatusPending    OrderStatusType = "pending"
	OrderStatusProcessing OrderStatusType = "processing"
	OrderStatusShipped    OrderStatusType = "shipped"
	OrderStatusDelivered  OrderStatusType = "delivered"
	OrderStatusCompleted  OrderStatusType = "completed"
	OrderStatusCancelled  OrderStatusType = "cancelled"
	OrderStatusRejected   OrderStatusType = "rejected"
)

// IsTerminal сообщает, является ли статус заказа конечным.
func (s OrderStatusType) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusRejected
}

type PaymentMethodType string

const (
	PaymentMethodCash         PaymentMethodType = "cash"
	PaymentMethodCard         PaymentMethodType = "card"
	PaymentMethodWallet       PaymentMethodType = "wallet"
	PaymentMethodBankTransfer PaymentMethodType = "bank_transfer"
)

type PaymentStatusType string

const (
	PaymentStatusPending  PaymentStatusType = "pending"
	PaymentStatusPaid     PaymentStatusType = "paid"
	PaymentStatusFailed   PaymentStatusType = "failed"
	PaymentStatusRefunded PaymentStatusType = "refunded"
)

type WithdrawalStatusType string

const (
	WithdrawalStatusPending   WithdrawalStatusType = "pending"
	WithdrawalStatusApproved  WithdrawalStatusType = "approved"
	WithdrawalStatusRejected  WithdrawalStatusType = "rejected"
	WithdrawalStatusProcessed WithdrawalStatusType = "processed"
)

type SpecialOrderStatusType string

const (
	SpecialOrderStatusPending    SpecialOrderStatusType = "pending"
	SpecialOrderStatusProcessing SpecialOrderStatusType = "processing"
	SpecialOrderStatusCompleted  SpecialOrderStatusType = "completed"
	SpecialOrderStatusCancelled  SpecialOrderStatusType = "cancelled"
)

type ShopCounterType string

const (
	ShopCounterPendingOrders   ShopCounterType = "pending_orders"
	ShopCounterCompletedOrders ShopCounterType = "completed_orders"
	ShopCounterCancelledOrders ShopCounterType = "cancelled_orders"
)

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/floramart/internal/domain"
)

type WalletHandler struct {
	ledgerSvs    LedgerServicer
	reconcileSvs ReconcileServicer
}

func NewWalletHandler(ledgerSvs LedgerServicer, reconcileSvs ReconcileServicer) *WalletHandler {
	return &WalletHandler{
		ledgerSvs:    ledgerSvs,
		reconcileSvs: reconcileSvs,
	}
}

type WalletResponse struct {
	Balance float64 `json:"balance"`
}

// Balance GET RouteGroup + WalletRoute. Кошелек создается лениво при первом обращении.
func (h *WalletHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	wallet, err := h.ledgerSvs.GetOrCreateWallet(reqCtx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, &WalletResponse{Balance: wallet.Balance.InexactFloat64()})
}

type WalletTransactionResponse struct {
	ID           int64                  `json:"ID"`
	Type         domain.TransactionType `json:"type"`
	Amount       float64                `json:"amount"`
	Description  string                 `json:"description,omitempty"`
	BalanceAfter float64                `json:"balanceAfter"`
	ReferenceID  string                 `json:"referenceID,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// Transactions GET RouteGroup + WalletTransactionsRoute. Журнал кошелька от новых к старым.
func (h *WalletHandler) Transactions(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.ledgerSvs.Transactions(reqCtx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if len(transactions) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]WalletTransactionResponse, len(transactions))
	for i, tr := range transactions {
		response[i] = WalletTransactionResponse{
			ID:           tr.ID,
			Type:         tr.Type,
			Amount:       tr.Amount.InexactFloat64(),
			Description:  tr.Description,
			BalanceAfter: tr.BalanceAfter.InexactFloat64(),
			ReferenceID:  tr.ReferenceID,
			CreatedAt:    tr.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}

type DepositParams struct {
	Descriptor string           `binding:"required,min=3,max=120" json:"descriptor"`
	Amount     *decimal.Decimal `json:"sum,omitempty"`
}

type DepositResponse struct {
	Balance          float64                   `json:"balance"`
	AlreadyConfirmed bool                      `json:"alreadyConfirmed"`
	Transaction      WalletTransactionResponse `json:"transaction"`
}

// Deposit POST RouteGroup + WalletDepositRoute. Сверяет заявленный банковский перевод
// с лентой провайдера и зачисляет кошелек. Повторный вызов с тем же переводом
// возвращает прежнюю запись и alreadyConfirmed = true.
func (h *WalletHandler) Deposit(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params DepositParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	// Сверка ходит во внешний банковский API, поэтому таймаут шире обычного.
	reqCtx, cancel := context.WithTimeout(c, ReconcileTimeout)
	defer cancel()

	result, err := h.reconcileSvs.ReconcileDeposit(reqCtx, currentUserID, params.Descriptor, params.Amount)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, &DepositResponse{
		Balance:          result.Balance.InexactFloat64(),
		AlreadyConfirmed: result.AlreadyConfirmed,
		Transaction: WalletTransactionResponse{
			ID:           result.Transaction.ID,
			Type:         result.Transaction.Type,
			Amount:       result.Transaction.Amount.InexactFloat64(),
			Description:  result.Transaction.Description,
			BalanceAfter: result.Transaction.BalanceAfter.InexactFloat64(),
			ReferenceID:  result.Transaction.ReferenceID,
			CreatedAt:    result.Transaction.CreatedAt,
		},
	})
}

// Package bankfeed реализует клиента ленты транзакций банковского провайдера.
// Лента используется движком сверки депозитов: возвращаемый список считается
// полным пространством поиска, пагинация провайдером не гарантируется.
package bankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const RouteTransactions = "/api/transactions"

const defaultTimeout = 10 * time.Second

// Transaction входящая транзакция из ленты провайдера. RefID и TID — кандидаты
// на стабильный идентификатор (RefID приоритетнее); у части провайдеров заполнен
// только один из них.
type Transaction struct {
	RefID       string          `json:"reference_id"`
	TID         string          `json:"tid"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	When        time.Time       `json:"when"`
}

type listResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// HTTPClient клиент ленты. Авторизация bearer-токеном из конфигурации.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListRecentTransactions запрашивает последние транзакции провайдера. В случае
// сетевой ошибки или статуса отличного от 200 возвращает StatusCodeError либо
// нетипизированную ошибку; интерпретация как «провайдер недоступен» — задача
// вызывающего сервиса.
//
//nolint:nonamedreturns
func (c *HTTPClient) ListRecentTransactions(ctx context.Context) (transactions []Transaction, err error) {
	url := c.baseURL + RouteTransactions

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %s", reqErr.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("do request: %s", doErr.Error())
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		err = NewStatusCodeError(resp.StatusCode)
		return nil, err
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		err = fmt.Errorf("read response: %s", readErr.Error())
		return nil, err
	}

	var response listResponse
	if jsonErr := json.Unmarshal(body, &response); jsonErr != nil {
		err = fmt.Errorf("parse response: %s", jsonErr.Error())
		return nil, err
	}

	return response.Transactions, nil
}

package bankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *ClientTestSuite) TestListRecentTransactions() {
	feed := []Transaction{
		{
			RefID:       "ref-1",
			Description: "NAP TIEN FLORA 77",
			Amount:      decimal.NewFromInt(500000),
			When:        time.Now().UTC().Truncate(time.Second),
		},
		{
			TID:         "tid-2",
			Description: "chuyen khoan",
			Amount:      decimal.NewFromInt(-120000),
		},
	}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(RouteTransactions, r.URL.Path)
		s.Equal("Bearer test-token", r.Header.Get("Authorization"))
		s.NotEmpty(r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		s.NoError(json.NewEncoder(w).Encode(listResponse{Transactions: feed}))
	}))

	client := NewHTTPClient(s.server.URL, "test-token", time.Second)
	transactions, err := client.ListRecentTransactions(context.Background())
	s.Require().NoError(err)
	s.Require().Len(transactions, 2)
	s.Equal("ref-1", transactions[0].RefID)
	s.True(transactions[0].Amount.Equal(decimal.NewFromInt(500000)))
	s.True(transactions[1].Amount.IsNegative())
}

func (s *ClientTestSuite) TestListRecentTransactions_BadStatus() {
	for _, status := range []int{
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
	} {
		s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewHTTPClient(s.server.URL, "test-token", time.Second)
		_, err := client.ListRecentTransactions(context.Background())

		var statusErr *StatusCodeError
		s.Require().ErrorAs(err, &statusErr)
		s.Equal(status, statusErr.Code)
		s.server.Close()
	}
	s.server = nil
}

func (s *ClientTestSuite) TestListRecentTransactions_BadJSON() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a json"))
	}))

	client := NewHTTPClient(s.server.URL, "test-token", time.Second)
	_, err := client.ListRecentTransactions(context.Background())
	s.Require().Error(err)

	var statusErr *StatusCodeError
	s.False(errors.As(err, &statusErr))
}

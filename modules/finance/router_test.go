package finance_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbuddy/backend/modules/finance"
)

func newFinanceRouter(t *testing.T) http.Handler {
	t.Helper()
	storage := finance.NewMemoryStorage()
	accounts := finance.NewAccountService(storage, nil)
	transactions := finance.NewTransactionService(storage)
	return finance.Router(accounts, transactions)
}

func request(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAccountsEndpoint(t *testing.T) {
	t.Parallel()

	h := newFinanceRouter(t)
	rec := request(t, h, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var accounts []finance.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	require.Len(t, accounts, 3, "defaults are seeded on first fetch")
	assert.Equal(t, "HDFC Bank", accounts[0].Name)
}

func TestTransactionsEndpoints(t *testing.T) {
	t.Parallel()

	create := func(t *testing.T, h http.Handler, body map[string]any) finance.Transaction {
		t.Helper()
		rec := request(t, h, http.MethodPost, "/transactions", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		var txn finance.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txn))
		return txn
	}

	t.Run("create then fetch", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		created := create(t, h, map[string]any{
			"amount":   1200,
			"txn_type": "debited",
			"category": "food",
		})
		require.NotEmpty(t, created.ID)

		rec := request(t, h, http.MethodGet, "/transactions/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got finance.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 1200.0, got.Amount)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		assert.Equal(t, http.StatusNotFound, request(t, h, http.MethodGet, "/transactions/missing", nil).Code)
		assert.Equal(t, http.StatusNotFound, request(t, h, http.MethodPut, "/transactions/missing", map[string]any{}).Code)
		assert.Equal(t, http.StatusNotFound, request(t, h, http.MethodDelete, "/transactions/missing", nil).Code)
	})

	t.Run("update merges fields", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		created := create(t, h, map[string]any{"amount": 100, "txn_type": "debited", "category": "food"})

		rec := request(t, h, http.MethodPut, "/transactions/"+created.ID, map[string]any{"amount": 150})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated finance.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, 150.0, updated.Amount)
		assert.Equal(t, "food", updated.Category)
	})

	t.Run("delete removes the transaction", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		created := create(t, h, map[string]any{"amount": 10, "txn_type": "debited"})

		rec := request(t, h, http.MethodDelete, "/transactions/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, http.StatusNotFound, request(t, h, http.MethodGet, "/transactions/"+created.ID, nil).Code)
	})

	t.Run("summary and categories", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		create(t, h, map[string]any{"amount": 5000, "txn_type": "credited", "category": "salary"})
		create(t, h, map[string]any{"amount": 800, "txn_type": "debited", "category": "food"})

		rec := request(t, h, http.MethodGet, "/transactions/summary", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var sum finance.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
		assert.Equal(t, 4200.0, sum.NetBalance)

		rec = request(t, h, http.MethodGet, "/transactions/categories", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["food","salary"]`, rec.Body.String())
	})

	t.Run("search requires a query", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		assert.Equal(t, http.StatusBadRequest, request(t, h, http.MethodGet, "/transactions/search", nil).Code)
	})

	t.Run("category filter via query param", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		create(t, h, map[string]any{"amount": 1, "txn_type": "debited", "category": "food"})
		create(t, h, map[string]any{"amount": 2, "txn_type": "debited", "category": "travel"})

		rec := request(t, h, http.MethodGet, "/transactions?category=food", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []finance.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})
}

func TestPrivacyEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("export is a download with counts", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		rec := request(t, h, http.MethodPost, "/transactions", map[string]any{"amount": 10, "txn_type": "debited"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = request(t, h, http.MethodGet, "/privacy/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

		var payload struct {
			RecordCount  int                   `json:"record_count"`
			Transactions []finance.Transaction `json:"transactions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, 1, payload.RecordCount)
		assert.Len(t, payload.Transactions, 1)
	})

	t.Run("delete-all wipes transactions", func(t *testing.T) {
		t.Parallel()

		h := newFinanceRouter(t)
		rec := request(t, h, http.MethodPost, "/transactions", map[string]any{"amount": 10, "txn_type": "debited"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = request(t, h, http.MethodDelete, "/privacy/account", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = request(t, h, http.MethodGet, "/transactions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []finance.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Empty(t, got)
	})
}

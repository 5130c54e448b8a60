package finance

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finbuddy/backend/pkg/respond"
)

// Router mounts the finance HTTP surface: accounts, transactions, and
// privacy endpoints.
func Router(accounts *AccountService, transactions *TransactionService) chi.Router {
	h := &handlers{accounts: accounts, transactions: transactions}

	r := chi.NewRouter()
	r.Get("/accounts", h.listAccounts)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.listTransactions)
		r.Post("/", h.createTransaction)
		r.Get("/summary", h.summary)
		r.Get("/categories", h.categories)
		r.Get("/search", h.search)
		r.Get("/{id}", h.getTransaction)
		r.Put("/{id}", h.updateTransaction)
		r.Delete("/{id}", h.deleteTransaction)
	})

	r.Route("/privacy", func(r chi.Router) {
		r.Get("/export", h.exportData)
		r.Delete("/account", h.deleteAllData)
	})

	return r
}

type handlers struct {
	accounts     *AccountService
	transactions *TransactionService
}

func (h *handlers) listAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.accounts.EnsureDefaults(ctx); err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to initialize accounts")
		return
	}
	accounts, err := h.accounts.List(ctx)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to fetch accounts")
		return
	}
	respond.JSON(w, http.StatusOK, accounts)
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	if category := q.Get("category"); category != "" {
		txns, err := h.transactions.ByCategory(ctx, category)
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "failed to fetch transactions")
			return
		}
		respond.JSON(w, http.StatusOK, txns)
		return
	}
	if startStr, endStr := q.Get("start"), q.Get("end"); startStr != "" && endStr != "" {
		start, err1 := time.Parse(time.RFC3339, startStr)
		end, err2 := time.Parse(time.RFC3339, endStr)
		if err1 != nil || err2 != nil {
			respond.Error(w, http.StatusBadRequest, "start and end must be RFC3339 timestamps")
			return
		}
		txns, err := h.transactions.ByDateRange(ctx, start, end)
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "failed to fetch transactions")
			return
		}
		respond.JSON(w, http.StatusOK, txns)
		return
	}

	txns, err := h.transactions.ListAll(ctx)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}
	respond.JSON(w, http.StatusOK, txns)
}

func (h *handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var txn Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.transactions.Create(r.Context(), userID(r), txn)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *handlers) getTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "transaction not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to fetch transaction")
		return
	}
	respond.JSON(w, http.StatusOK, txn)
}

func (h *handlers) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var update TransactionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.transactions.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "transaction not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}
	respond.JSON(w, http.StatusOK, txn)
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.transactions.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	if !deleted {
		respond.Error(w, http.StatusNotFound, "transaction not found")
		return
	}
	respond.OK(w, map[string]any{"message": "transaction deleted"})
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.transactions.Summary(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	respond.JSON(w, http.StatusOK, sum)
}

func (h *handlers) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.transactions.Categories(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respond.JSON(w, http.StatusOK, categories)
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respond.Error(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	txns, err := h.transactions.Search(r.Context(), query)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "search failed")
		return
	}
	respond.JSON(w, http.StatusOK, txns)
}

// exportData returns the full transaction history as a downloadable
// JSON document.
func (h *handlers) exportData(w http.ResponseWriter, r *http.Request) {
	txns, err := h.transactions.ListAll(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "export failed")
		return
	}

	payload := map[string]any{
		"export_date":  time.Now().Format(time.RFC3339),
		"record_count": len(txns),
		"transactions": txns,
	}
	w.Header().Set("Content-Disposition", `attachment; filename=finbuddy_data_export.json`)
	respond.JSON(w, http.StatusOK, payload)
}

// deleteAllData removes every transaction (right to be forgotten).
func (h *handlers) deleteAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.transactions.DeleteAll(r.Context()); err != nil {
		respond.Error(w, http.StatusInternalServerError, "deletion failed")
		return
	}
	respond.OK(w, map[string]any{"message": "all account data has been permanently deleted"})
}

// userID resolves the acting user. Authentication is out of scope; the
// single-tenant deployment uses a fixed default with an optional
// query-parameter override.
func userID(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return "default_user"
}

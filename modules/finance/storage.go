package finance

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// AccountStorage handles account persistence.
type AccountStorage interface {
	// Count returns the number of stored accounts.
	Count(ctx context.Context) (int, error)

	// InsertMany stores the given accounts.
	InsertMany(ctx context.Context, accounts []Account) error

	// List returns all accounts.
	List(ctx context.Context) ([]Account, error)

	// FindByName locates an account by case-insensitive exact name.
	FindByName(ctx context.Context, name string) (*Account, error)

	// SetBalance updates one account's balance.
	SetBalance(ctx context.Context, id string, balance float64) error
}

// TransactionStorage handles transaction persistence.
type TransactionStorage interface {
	// Insert stores a new transaction and returns it with its assigned ID.
	Insert(ctx context.Context, txn Transaction) (Transaction, error)

	// FindByID returns the transaction or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Transaction, error)

	// Replace overwrites the stored transaction with the given one.
	Replace(ctx context.Context, txn Transaction) error

	// Delete removes the transaction; reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListAll returns all transactions, newest date first.
	ListAll(ctx context.Context) ([]Transaction, error)

	// ListByDateRange returns transactions with start <= date <= end.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Transaction, error)

	// ListByCategory returns transactions matching the category
	// (case-insensitive exact match).
	ListByCategory(ctx context.Context, category string) ([]Transaction, error)

	// Search returns transactions whose counterparty, message, or
	// category contains the query (case-insensitive).
	Search(ctx context.Context, query string) ([]Transaction, error)

	// Categories returns the sorted distinct category list.
	Categories(ctx context.Context) ([]string, error)

	// DeleteAll removes every transaction.
	DeleteAll(ctx context.Context) error
}

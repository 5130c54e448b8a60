package finance

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of AccountStorage and
// TransactionStorage. Suitable for development and testing.
type MemoryStorage struct {
	mu           sync.RWMutex
	accounts     []Account
	transactions []Transaction
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

func (s *MemoryStorage) InsertMany(ctx context.Context, accounts []Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		s.accounts = append(s.accounts, a)
	}
	return nil
}

func (s *MemoryStorage) List(ctx context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

func (s *MemoryStorage) FindByName(ctx context.Context, name string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Name, name) {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) SetBalance(ctx context.Context, id string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Balance = balance
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) Insert(ctx context.Context, txn Transaction) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	s.transactions = append(s.transactions, txn)
	return txn, nil
}

func (s *MemoryStorage) FindByID(ctx context.Context, id string) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.transactions {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) Replace(ctx context.Context, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == txn.ID {
			s.transactions[i] = txn
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStorage) ListAll(ctx context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *MemoryStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Transaction
	for _, t := range s.transactions {
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStorage) ListByCategory(ctx context.Context, category string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Transaction
	for _, t := range s.transactions {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStorage) Search(ctx context.Context, query string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var out []Transaction
	for _, t := range s.transactions {
		if strings.Contains(strings.ToLower(t.Counterparty), q) ||
			strings.Contains(strings.ToLower(t.Message), q) ||
			strings.Contains(strings.ToLower(t.Category), q) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStorage) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, t := range s.transactions {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; !ok {
			seen[t.Category] = struct{}{}
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStorage) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = nil
	return nil
}

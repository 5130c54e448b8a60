package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finbuddy/backend/pkg/logger"
)

// defaultAccounts are seeded the first time the store is seen empty, so
// a fresh deployment has something to book transactions against.
var defaultAccounts = []Account{
	{Name: "HDFC Bank", Type: "bank", Balance: 25000, Icon: "fa-university", Color: "primary"},
	{Name: "Paytm Wallet", Type: "wallet", Balance: 1500, Icon: "fa-wallet", Color: "info"},
	{Name: "Cash", Type: "cash", Balance: 5000, Icon: "fa-money-bill-wave", Color: "success"},
}

// AccountService manages user accounts and their balances.
type AccountService struct {
	storage AccountStorage
	logger  *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(storage AccountStorage, log *slog.Logger) *AccountService {
	if log == nil {
		log = slog.Default()
	}
	return &AccountService{storage: storage, logger: log}
}

// EnsureDefaults seeds the default accounts when none exist. It reports
// whether seeding happened.
func (s *AccountService) EnsureDefaults(ctx context.Context) (bool, error) {
	count, err := s.storage.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count accounts: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.storage.InsertMany(ctx, defaultAccounts); err != nil {
		return false, fmt.Errorf("failed to seed default accounts: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded default accounts", "count", len(defaultAccounts))
	return true, nil
}

// List returns all accounts with current balances.
func (s *AccountService) List(ctx context.Context) ([]Account, error) {
	return s.storage.List(ctx)
}

// UpdateBalance applies a transaction amount to the named account.
// amount is always positive; isCredit selects direction. A missing
// account falls back to Cash so ad-hoc names from the voice parser do
// not lose the booking.
func (s *AccountService) UpdateBalance(ctx context.Context, accountName string, amount float64, isCredit bool) (bool, error) {
	account, err := s.storage.FindByName(ctx, accountName)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return false, err
		}
		if strings.EqualFold(accountName, "cash") {
			return false, nil
		}
		account, err = s.storage.FindByName(ctx, "Cash")
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
	}

	change := amount
	if !isCredit {
		change = -amount
	}
	if err := s.storage.SetBalance(ctx, account.ID, account.Balance+change); err != nil {
		return false, err
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "account balance updated",
		slog.String("account", account.Name),
		slog.Float64("change", change),
		logger.Component("account_service"),
	)
	return true, nil
}

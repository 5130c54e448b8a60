package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finbuddy/backend/pkg/logger"
	"github.com/finbuddy/backend/pkg/notify"
	"github.com/finbuddy/backend/pkg/secrets"
)

// ist is the timezone used for year-to-date boundaries; the product is
// built for the Indian informal economy.
var ist = time.FixedZone("IST", 5*3600+30*60)

// AlertSubmitter is the slice of the notification engine the
// transaction service needs to surface compliance alerts.
type AlertSubmitter interface {
	Submit(ctx context.Context, userID string, req notify.SubmitRequest) (notify.Notification, error)
}

// TransactionService manages transaction CRUD, enrichment, and
// aggregation.
type TransactionService struct {
	storage  TransactionStorage
	analyzer ComplianceAnalyzer
	alerts   AlertSubmitter
	cipher   *secrets.Cipher
	logger   *slog.Logger
}

// TransactionServiceOption configures a TransactionService.
type TransactionServiceOption func(*TransactionService)

// WithAnalyzer sets the external compliance analyzer.
func WithAnalyzer(a ComplianceAnalyzer) TransactionServiceOption {
	return func(s *TransactionService) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithAlertSubmitter routes non-empty compliance alerts into the
// notification engine.
func WithAlertSubmitter(a AlertSubmitter) TransactionServiceOption {
	return func(s *TransactionService) { s.alerts = a }
}

// WithCipher enables at-rest encryption of counterparty and message
// fields.
func WithCipher(c *secrets.Cipher) TransactionServiceOption {
	return func(s *TransactionService) { s.cipher = c }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(log *slog.Logger) TransactionServiceOption {
	return func(s *TransactionService) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(storage TransactionStorage, opts ...TransactionServiceOption) *TransactionService {
	s := &TransactionService{
		storage:  storage,
		analyzer: NoopAnalyzer{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create enriches the transaction with compliance analysis and stores
// it. A non-empty compliance alert is also surfaced through the
// notification engine when one is wired.
func (s *TransactionService) Create(ctx context.Context, userID string, txn Transaction) (Transaction, error) {
	txn.TxnType = txn.TxnType.Normalize()
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}

	s.analyze(ctx, &txn)

	stored, err := s.storage.Insert(ctx, s.encrypt(txn))
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to store transaction: %w", err)
	}
	stored = s.decrypt(stored)

	if txn.ComplianceAlert != "" && s.alerts != nil {
		// Best effort: a throttled or failed alert must not fail the booking.
		if _, err := s.alerts.Submit(ctx, userID, notify.SubmitRequest{
			Title:     "Compliance Warning",
			Message:   txn.ComplianceAlert,
			Urgency:   notify.UrgencyHigh,
			AgentName: "compliance_monitor",
			Data:      map[string]any{"transaction_id": stored.ID},
		}); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to submit compliance alert",
				slog.String("transaction_id", stored.ID),
				logger.UserID(userID),
				logger.Error(err),
			)
		}
	}

	return stored, nil
}

// Get returns a transaction by id, or ErrNotFound.
func (s *TransactionService) Get(ctx context.Context, id string) (*Transaction, error) {
	txn, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	decrypted := s.decrypt(*txn)
	return &decrypted, nil
}

// Update merges the partial update into the stored transaction,
// re-runs compliance analysis over the merged record, and replaces it.
func (s *TransactionService) Update(ctx context.Context, id string, update TransactionUpdate) (*Transaction, error) {
	existing, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	txn := s.decrypt(*existing)

	if update.Amount != nil {
		txn.Amount = *update.Amount
	}
	if update.TxnType != nil {
		txn.TxnType = update.TxnType.Normalize()
	}
	if update.Category != nil {
		txn.Category = *update.Category
	}
	if update.Counterparty != nil {
		txn.Counterparty = *update.Counterparty
	}
	if update.Message != nil {
		txn.Message = *update.Message
	}
	if update.Date != nil {
		txn.Date = *update.Date
	}

	s.analyze(ctx, &txn)

	if err := s.storage.Replace(ctx, s.encrypt(txn)); err != nil {
		return nil, err
	}
	return &txn, nil
}

// Delete removes a transaction; reports whether it existed.
func (s *TransactionService) Delete(ctx context.Context, id string) (bool, error) {
	return s.storage.Delete(ctx, id)
}

// ListAll returns all transactions, newest first.
func (s *TransactionService) ListAll(ctx context.Context) ([]Transaction, error) {
	txns, err := s.storage.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.decryptAll(txns), nil
}

// ByDateRange returns transactions within [start, end].
func (s *TransactionService) ByDateRange(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	txns, err := s.storage.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return s.decryptAll(txns), nil
}

// ByCategory returns transactions matching the category.
func (s *TransactionService) ByCategory(ctx context.Context, category string) ([]Transaction, error) {
	txns, err := s.storage.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return s.decryptAll(txns), nil
}

// Search performs a case-insensitive free-text search over
// counterparty, message, and category.
//
// Note: when at-rest encryption is enabled, counterparty and message
// are opaque to the store, so the search runs over the category index
// plus a decrypted scan. Acceptable for the data volumes this serves.
func (s *TransactionService) Search(ctx context.Context, query string) ([]Transaction, error) {
	if s.cipher == nil {
		txns, err := s.storage.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		return txns, nil
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []Transaction
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Counterparty), q) ||
			strings.Contains(strings.ToLower(t.Message), q) ||
			strings.Contains(strings.ToLower(t.Category), q) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Categories returns the distinct sorted category list.
func (s *TransactionService) Categories(ctx context.Context) ([]string, error) {
	return s.storage.Categories(ctx)
}

// Summary aggregates the full history.
func (s *TransactionService) Summary(ctx context.Context) (Summary, error) {
	txns, err := s.ListAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	year := time.Now().In(ist).Year()
	sum := Summary{TotalTransactions: len(txns)}
	for _, t := range txns {
		switch t.TxnType {
		case TxnCredited:
			sum.TotalCredit += t.Amount
			if t.Date.In(ist).Year() == year {
				sum.YTDCredit += t.Amount
			}
		case TxnDebited:
			sum.TotalDebit += t.Amount
		}
		if sum.LatestAlert == "" && t.ComplianceAlert != "" {
			sum.LatestAlert = t.ComplianceAlert
		}
	}
	sum.NetBalance = sum.TotalCredit - sum.TotalDebit
	return sum, nil
}

// DeleteAll removes every transaction (right to be forgotten).
func (s *TransactionService) DeleteAll(ctx context.Context) error {
	return s.storage.DeleteAll(ctx)
}

func (s *TransactionService) analyze(ctx context.Context, txn *Transaction) {
	insight, alert, err := s.analyzer.Analyze(ctx, *txn)
	if err != nil {
		// The analyzer is an external collaborator; its failure never
		// blocks the booking.
		s.logger.LogAttrs(ctx, slog.LevelWarn, "compliance analysis failed",
			logger.Component("transaction_service"),
			logger.Error(err),
		)
		return
	}
	txn.AIInsight = insight
	txn.ComplianceAlert = alert
}

func (s *TransactionService) encrypt(txn Transaction) Transaction {
	if s.cipher == nil {
		return txn
	}
	if enc, err := s.cipher.EncryptString(txn.Counterparty); err == nil {
		txn.Counterparty = enc
	}
	if enc, err := s.cipher.EncryptString(txn.Message); err == nil {
		txn.Message = enc
	}
	return txn
}

func (s *TransactionService) decrypt(txn Transaction) Transaction {
	if s.cipher == nil {
		return txn
	}
	txn.Counterparty = s.cipher.DecryptString(txn.Counterparty)
	txn.Message = s.cipher.DecryptString(txn.Message)
	return txn
}

func (s *TransactionService) decryptAll(txns []Transaction) []Transaction {
	if s.cipher == nil {
		return txns
	}
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = s.decrypt(t)
	}
	return out
}

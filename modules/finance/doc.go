// Package finance implements accounts and transaction tracking for the
// personal finance backend.
//
// The package is split into a storage layer (AccountStorage and
// TransactionStorage, with in-memory and MongoDB implementations), the
// AccountService and TransactionService that hold the business rules,
// and an HTTP router exposing them.
//
// # Usage
//
//	storage := finance.NewMemoryStorage()
//	accounts := finance.NewAccountService(storage, logger)
//	transactions := finance.NewTransactionService(storage,
//		finance.WithCipher(cipher),
//		finance.WithAlertSubmitter(engine),
//	)
//
//	r.Mount("/api", finance.Router(accounts, transactions))
//
// Transactions created or updated through the service are passed to the
// configured ComplianceAnalyzer; findings are attached to the
// transaction and, when an alert submitter is configured, surfaced as
// high urgency notifications. Counterparty and message fields are
// encrypted at rest when a cipher is set.
package finance

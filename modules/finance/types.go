package finance

import "time"

// Account is a user money source: bank account, wallet, or cash.
type Account struct {
	ID      string  `json:"id" bson:"_id,omitempty"`
	Name    string  `json:"name" bson:"name"`
	Type    string  `json:"type" bson:"type"`
	Balance float64 `json:"balance" bson:"balance"`
	Icon    string  `json:"icon" bson:"icon"`
	Color   string  `json:"color" bson:"color"`
}

// TransactionType classifies money direction.
type TransactionType string

const (
	TxnCredited TransactionType = "credited"
	TxnDebited  TransactionType = "debited"
	TxnUnknown  TransactionType = "unknown"
)

// Normalize coerces unrecognized types to TxnUnknown rather than
// rejecting the record; upstream parsers are lossy.
func (t TransactionType) Normalize() TransactionType {
	switch t {
	case TxnCredited, TxnDebited:
		return t
	}
	return TxnUnknown
}

// Transaction is one money movement, enriched with the external
// compliance analyzer's output.
type Transaction struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	Amount          float64         `json:"amount" bson:"amount"`
	TxnType         TransactionType `json:"txn_type" bson:"txn_type"`
	Category        string          `json:"category" bson:"category"`
	Counterparty    string          `json:"counterparty" bson:"counterparty"`
	Message         string          `json:"message" bson:"message"`
	Date            time.Time       `json:"date" bson:"date"`
	AIInsight       string          `json:"ai_insight" bson:"ai_insight"`
	ComplianceAlert string          `json:"compliance_alert" bson:"compliance_alert"`
}

// TransactionUpdate carries partial updates; nil fields are unchanged.
type TransactionUpdate struct {
	Amount       *float64         `json:"amount,omitempty"`
	TxnType      *TransactionType `json:"txn_type,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Counterparty *string          `json:"counterparty,omitempty"`
	Message      *string          `json:"message,omitempty"`
	Date         *time.Time       `json:"date,omitempty"`
}

// Summary aggregates the full transaction history.
type Summary struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalCredit       float64 `json:"total_credit"`
	TotalDebit        float64 `json:"total_debit"`
	NetBalance        float64 `json:"net_balance"`
	YTDCredit         float64 `json:"ytd_credit"`
	LatestAlert       string  `json:"latest_alert,omitempty"`
}

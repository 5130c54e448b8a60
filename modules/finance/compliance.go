package finance

import "context"

// ComplianceAnalyzer scores a transaction for regulatory concerns. The
// real implementation calls an external AI service; its analysis is not
// modeled here.
type ComplianceAnalyzer interface {
	// Analyze returns an insight string and an optional compliance
	// alert for the transaction. An empty alert means no concern.
	Analyze(ctx context.Context, txn Transaction) (insight, alert string, err error)
}

// NoopAnalyzer returns empty analysis. Used when no external compliance
// service is configured.
type NoopAnalyzer struct{}

func (NoopAnalyzer) Analyze(ctx context.Context, txn Transaction) (string, string, error) {
	return "", "", nil
}

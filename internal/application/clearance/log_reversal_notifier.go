package clearance

import (
	"context"

	"go.uber.org/zap"
)

// LogReversalNotifier delivers reversal summaries to the application log. It
// stands in for a mail or chat integration; the recipient logins are recorded
// so downstream log processing can route the notification.
type LogReversalNotifier struct {
	logger *zap.Logger
}

// NewLogReversalNotifier creates a notifier that writes to the given logger
func NewLogReversalNotifier(logger *zap.Logger) *LogReversalNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReversalNotifier{logger: logger}
}

// NotifyReversal logs the reversal outcome addressed to the configured logins
func (n *LogReversalNotifier) NotifyReversal(ctx context.Context, logins []string, result OrderReversalResult) {
	returns := make([]string, 0, len(result.CreatedReturns))
	for _, ret := range result.CreatedReturns {
		returns = append(returns, ret.ReturnNumber)
	}

	n.logger.Info("order reversal completed",
		zap.Strings("notify", logins),
		zap.String("order_number", result.OrderNumber),
		zap.Strings("cancelled_receipts", result.CancelledReceipts),
		zap.Strings("created_returns", returns),
		zap.Int("failed_returns", len(result.FailedReturns)),
		zap.String("document_number", result.DocumentNumber),
		zap.String("document_outcome", string(result.DocumentOutcome)),
	)
}

// Ensure LogReversalNotifier implements ReversalNotifier
var _ ReversalNotifier = (*LogReversalNotifier)(nil)

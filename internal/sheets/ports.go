package sheets

import (
	"context"

	"fiado/internal/core"
)

// Ports for outbound adapters.
type (
	// DebtWriter appends a debt row to the backup sheet and returns a row
	// reference for logging.
	DebtWriter interface {
		Append(ctx context.Context, d core.Debt) (rowRef string, err error)
	}

	// DebtRemover removes the backup row for a deleted debt.
	DebtRemover interface {
		Remove(ctx context.Context, debtID string) error
	}
)

package api

import (
	"context"

	"gofinances/internal/core"
)

// Ports for the transactions data source.
type (
	// TransactionsReader returns the transaction list and balance summary.
	TransactionsReader interface {
		Transactions(ctx context.Context) (core.Response, error)
	}

	// Pinger reports whether the data source is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

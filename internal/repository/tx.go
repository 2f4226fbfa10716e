package repository

import "context"

// Tx is the common shape of a request-scoped transaction. Every multi-row
// mutation in the economy core happens inside exactly one Tx; there is no
// observable intermediate state.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

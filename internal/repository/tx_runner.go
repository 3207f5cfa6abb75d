package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner runs repository work inside a pgx transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx calls fn with a ChunkRepository bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *TxRunner) WithTx(ctx context.Context, dimensions int, fn func(repo *ChunkRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(newChunkRepositoryWithTx(tx, dimensions)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

package dbhandler

import (
	"context"
	"errors"
	"log"

	"database/sql"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
)

// Postgres reports a serialization failure with this code. The transaction
// can be retried from the start.
const serializationFailure = "40001"

// DBHandler contains a connection to database.
type DBHandler struct {
	DB *sql.DB
}

// Batch creates a transaction and executes the batch of commands in that transaction.
// If a retryable error is received, the batch is retried.
func (handler DBHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {
	results := make([]interface{}, len(commands))
	err := handler.Transact(context.Background(), opts, func(tx *sql.Tx) error {
		batchResults, err := sqlbatch.Batch(tx, commands)
		if batchResults != nil {
			results = batchResults
		}
		return err
	})
	return results, err
}

// Transact runs fn in a transaction and commits it. If a retryable error is
// received, the whole transaction is retried.
func (handler DBHandler) Transact(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {

	for {
		err := handler.tryTransact(ctx, opts, fn)
		if IsRetryable(err) && ctx.Err() == nil {
			log.Printf("🟡 Retryable Postgres error, retrying: %v", err)
			continue
		}
		return err
	}
}

func (handler DBHandler) tryTransact(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {

	tx, err := handler.DB.BeginTx(ctx, opts)
	if err != nil {
		return
	}
	defer tx.Rollback()

	err = fn(tx)

	if err == nil {
		err = tx.Commit()
	}

	return
}

func IsRetryable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == serializationFailure
}

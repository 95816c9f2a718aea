package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"registry/domain"
	"registry/usecase"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
)

const (
	sqlRecordFind = `
	select
		kind, address, version, body
	from records
	where kind = $1 and address = $2
`

	sqlRecordFindEntities = `
	select
		kind, address, version, body
	from records
	where kind = 'entity' and body->>'registrar' = $1
	order by address
`

	sqlRecordInsert = `
	insert into records (
			kind, address, version, body, update_time
		)
		values (
			$1, $2, 1, $3::jsonb, now()
		)
	on conflict (kind, address) do nothing
`

	sqlRecordUpdate = `
	update records
		set version = version + 1, body = $4::jsonb, update_time = now()
	where kind = $1 and address = $2 and version = $3
`
)

func readAllRecords(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := storedRecord{}
	err := scan(
		&r.Kind, &r.Address, &r.Version, &r.Body,
	)

	list := memo.([]storedRecord)
	list = append(list, r)
	return list, err
}

// batchFunc runs sqlbatch commands inside an open transaction.
type batchFunc func(commands []sqlbatch.Command) ([]interface{}, error)

func txBatch(tx *sql.Tx) batchFunc {
	return func(commands []sqlbatch.Command) ([]interface{}, error) {
		return sqlbatch.Batch(tx, commands)
	}
}

// postgresSource reads and writes records inside one serializable
// transaction. Postgres itself detects conflicting reads, so only the
// versions of written records are checked.
type postgresSource struct {
	batch batchFunc
}

func (s postgresSource) load(key recordKey) (*storedRecord, error) {
	results, err := s.batch([]sqlbatch.Command{
		{
			Query:   sqlRecordFind,
			Args:    []interface{}{string(key.kind), key.address.String()},
			Init:    make([]storedRecord, 0),
			ReadAll: readAllRecords,
		},
	})
	if err != nil {
		return nil, err
	}
	list, _ := results[0].([]storedRecord)
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s postgresSource) listEntities(registrar domain.Address) ([]storedRecord, error) {
	results, err := s.batch([]sqlbatch.Command{
		{
			Query:   sqlRecordFindEntities,
			Args:    []interface{}{registrar.String()},
			Init:    make([]storedRecord, 0),
			ReadAll: readAllRecords,
		},
	})
	if err != nil {
		return nil, err
	}
	list, _ := results[0].([]storedRecord)
	return list, nil
}

func (s postgresSource) commit(reads []recordRead, writes []recordWrite) error {
	commands := make([]sqlbatch.Command, 0, len(writes))
	for _, w := range writes {
		if w.version == 0 {
			commands = append(commands, sqlbatch.Command{
				Query:  sqlRecordInsert,
				Args:   []interface{}{string(w.key.kind), w.key.address.String(), w.body},
				Affect: 1,
			})
			continue
		}
		commands = append(commands, sqlbatch.Command{
			Query:  sqlRecordUpdate,
			Args:   []interface{}{string(w.key.kind), w.key.address.String(), w.version, w.body},
			Affect: 1,
		})
	}

	_, err := s.batch(commands)
	var pqErr *pq.Error
	if err != nil && !errors.As(err, &pqErr) {
		// A write that affected no row lost a race for its record.
		return fmt.Errorf("%w: %v", domain.ErrorConcurrentModification, err)
	}
	return err
}

// PostgresStore keeps registry records in the records table. Every
// operation runs in a serializable transaction that is retried on
// serialization failures.
type PostgresStore struct {
	handler TxHandler
	batch   func(tx *sql.Tx) batchFunc
}

func NewPostgresStore(handler TxHandler) *PostgresStore {
	return &PostgresStore{handler: handler, batch: txBatch}
}

func (store *PostgresStore) Transact(ctx context.Context, fn func(tx usecase.Tx) error) error {
	return store.handler.Transact(ctx, &BatchOptionSerializable, func(tx *sql.Tx) error {
		u := newUnitOfWork(postgresSource{batch: store.batch(tx)})
		if err := fn(u); err != nil {
			return err
		}
		return u.commit()
	})
}

package repository

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"registry/domain"

	"github.com/behrang/sqlbatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBatchHandler records the commands it receives and answers every
// reading command with the same rows.
type fakeBatchHandler struct {
	opts     []*sql.TxOptions
	commands []sqlbatch.Command
	rows     [][]interface{}
	err      error
}

func (h *fakeBatchHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {
	h.opts = append(h.opts, opts)
	h.commands = append(h.commands, commands...)
	if h.err != nil {
		return nil, h.err
	}

	results := make([]interface{}, len(commands))
	for i, command := range commands {
		if command.ReadAll == nil {
			continue
		}
		memo := command.Init
		for _, row := range h.rows {
			var err error
			memo, err = command.ReadAll(memo, scanRow(row))
			if err != nil {
				return nil, err
			}
		}
		results[i] = memo
	}
	return results, nil
}

func scanRow(row []interface{}) func(...interface{}) error {
	return func(dest ...interface{}) error {
		if len(dest) != len(row) {
			return fmt.Errorf("scan %v columns into %v destinations", len(row), len(dest))
		}
		for i, value := range row {
			reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(value))
		}
		return nil
	}
}

func TestMemoRepositoryUpsert(t *testing.T) {
	handler := &fakeBatchHandler{
		rows: [][]interface{}{{"refresh:x", []byte(`{"entities":2}`)}},
	}
	repo := NewMemoRepository(handler)

	memo, err := repo.Upsert("refresh:x", &domain.RefreshMemo{Entities: 2})
	require.NoError(t, err)
	require.NotNil(t, memo)
	assert.Equal(t, "refresh:x", memo.Key)
	assert.Equal(t, `{"entities":2}`, memo.Memo)

	require.Len(t, handler.commands, 2)
	assert.Equal(t, sqlMemoUpsert, handler.commands[0].Query)
	assert.Equal(t, "refresh:x", handler.commands[0].Args[0])
	assert.Contains(t, handler.commands[0].Args[1], `"entities":2`)
	assert.Equal(t, &BatchOptionNormal, handler.opts[0])
}

func TestMemoRepositoryFindMissing(t *testing.T) {
	handler := &fakeBatchHandler{}
	repo := NewMemoRepository(handler)

	memo, err := repo.Find("refresh:y")
	require.NoError(t, err)
	assert.Nil(t, memo)
	assert.Equal(t, &BatchOptionNormalReadOnly, handler.opts[0])
}

func TestMemoRepositoryError(t *testing.T) {
	handler := &fakeBatchHandler{err: fmt.Errorf("connection refused")}
	repo := NewMemoRepository(handler)

	_, err := repo.Find("refresh:y")
	require.Error(t, err)
}

func TestOperationRepository(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	handler := &fakeBatchHandler{
		rows: [][]interface{}{
			{int64(2), "stake", []byte(`{"spt":1}`), domain.OperationStateError, "entity not activated", int64(1000), created},
			{int64(1), "deposit", []byte(`{}`), domain.OperationStateDone, "", int64(900), created},
		},
	}
	repo := NewOperationRepository(handler)

	op := domain.NewOperation("stake", map[string]int{"spt": 1}, 1000, domain.ErrorEntityNotActivated)
	require.NoError(t, repo.Record(op))
	require.Len(t, handler.commands, 1)
	assert.Equal(t, sqlOperationInsert, handler.commands[0].Query)
	assert.Equal(t, []interface{}{"stake", `{"spt":1}`, domain.OperationStateError, "entity not activated", int64(1000), op.CreateTime}, handler.commands[0].Args)

	ops, err := repo.FindAll(10)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, int64(2), ops[0].Id)
	assert.Equal(t, `{"spt":1}`, ops[0].Request)
	assert.Equal(t, "entity not activated", ops[0].Error)
	assert.Equal(t, created, ops[1].CreateTime)
	assert.Equal(t, []interface{}{10}, handler.commands[1].Args)
}

func TestMigrate(t *testing.T) {
	handler := &fakeBatchHandler{}
	require.NoError(t, Migrate(handler))
	require.Len(t, handler.commands, 1)
	assert.Contains(t, handler.commands[0].Query, "create table if not exists records")
}

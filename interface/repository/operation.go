package repository

import (
	"registry/domain"

	"github.com/behrang/sqlbatch"
)

const (
	sqlOperationInsert = `
	insert into operations (
			kind, request, state, error, timestamp, create_time
		)
		values (
			$1, $2::jsonb, $3, $4, $5, $6
		)
`

	sqlOperationFindAll = `
	select
		id, kind, request, state, error, timestamp, create_time
	from operations
	order by id desc
	limit $1
`
)

// OperationRepository is the journal of executed registry operations.
type OperationRepository struct {
	batchHandler BatchHandler
}

func NewOperationRepository(db BatchHandler) *OperationRepository {
	return &OperationRepository{batchHandler: db}
}

func readAllOperations(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := domain.Operation{}
	var requestJson []byte
	err := scan(
		&r.Id, &r.Kind, &requestJson, &r.State, &r.Error, &r.Timestamp, &r.CreateTime,
	)
	if err == nil {
		r.Request = string(requestJson)
	}

	list := memo.([]domain.Operation)
	list = append(list, r)
	return list, err
}

func (repo *OperationRepository) Record(op *domain.Operation) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query: sqlOperationInsert,
			Args: []interface{}{
				op.Kind, op.Request, op.State, op.Error, op.Timestamp, op.CreateTime,
			},
			Affect: 1,
		},
	})
	return err
}

// FindAll returns the latest operations, newest first.
func (repo *OperationRepository) FindAll(limit int) ([]domain.Operation, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlOperationFindAll,
			Args:    []interface{}{limit},
			Init:    make([]domain.Operation, 0),
			ReadAll: readAllOperations,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]domain.Operation)
	return result, nil
}

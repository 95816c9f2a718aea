package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"registry/domain"
	"registry/usecase"
)

// MemoryStore keeps every record in process memory. Operations run one at
// a time. It also serves as the operation journal and memo repository, so a
// registry can run without a database.
type MemoryStore struct {
	mu         sync.Mutex
	records    map[recordKey]storedRecord
	operations []domain.Operation
	memos      map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[recordKey]storedRecord),
		memos:   make(map[string]string),
	}
}

// memorySource must only be used while the store lock is held.
type memorySource struct {
	store *MemoryStore
}

func (s memorySource) load(key recordKey) (*storedRecord, error) {
	rec, ok := s.store.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s memorySource) listEntities(registrar domain.Address) ([]storedRecord, error) {
	var list []storedRecord
	for key, rec := range s.store.records {
		if key.kind != kindEntity {
			continue
		}
		var head struct {
			Registrar domain.Address `json:"registrar"`
		}
		if err := json.Unmarshal(rec.Body, &head); err != nil {
			return nil, err
		}
		if head.Registrar == registrar {
			list = append(list, rec)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Address < list[j].Address
	})
	return list, nil
}

func (s memorySource) commit(reads []recordRead, writes []recordWrite) error {
	for _, r := range reads {
		if s.store.records[r.key].Version != r.version {
			return fmt.Errorf("%w: %v %v", domain.ErrorConcurrentModification, r.key.kind, r.key.address)
		}
	}
	for _, w := range writes {
		s.store.records[w.key] = storedRecord{
			Kind:    string(w.key.kind),
			Address: w.key.address.String(),
			Version: w.version + 1,
			Body:    w.body,
		}
	}
	return nil
}

func (store *MemoryStore) Transact(ctx context.Context, fn func(tx usecase.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	u := newUnitOfWork(memorySource{store: store})
	if err := fn(u); err != nil {
		return err
	}
	return u.commit()
}

func (store *MemoryStore) Record(op *domain.Operation) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored := *op
	stored.Id = int64(len(store.operations) + 1)
	store.operations = append(store.operations, stored)
	op.Id = stored.Id
	return nil
}

// FindAll returns the latest operations, newest first.
func (store *MemoryStore) FindAll(limit int) ([]domain.Operation, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	result := make([]domain.Operation, 0)
	for i := len(store.operations) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, store.operations[i])
	}
	return result, nil
}

func (store *MemoryStore) Upsert(key string, memo domain.Memorable) (*domain.Memo, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.memos[key] = memo.ToJson()
	return &domain.Memo{Key: key, Memo: store.memos[key]}, nil
}

func (store *MemoryStore) Find(key string) (*domain.Memo, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	jstr, ok := store.memos[key]
	if !ok {
		return nil, nil
	}
	return &domain.Memo{Key: key, Memo: jstr}, nil
}

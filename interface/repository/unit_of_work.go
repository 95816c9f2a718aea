package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"registry/domain"
	"registry/domain/ledger"
	"registry/usecase"
)

type recordKind string

const (
	kindRegistrar         recordKind = "registrar"
	kindEntity            recordKind = "entity"
	kindMember            recordKind = "member"
	kindPendingWithdrawal recordKind = "pending_withdrawal"
	kindTokenAccount      recordKind = "token_account"
	kindPool              recordKind = "pool"
)

type recordKey struct {
	kind    recordKind
	address domain.Address
}

func (k recordKey) less(other recordKey) bool {
	if k.kind != other.kind {
		return k.kind < other.kind
	}
	return k.address.String() < other.address.String()
}

// storedRecord is a committed record. Version 0 means the record does not
// exist.
type storedRecord struct {
	Kind    string
	Address string
	Version int64
	Body    []byte
}

type recordRead struct {
	key     recordKey
	version int64
}

type recordWrite struct {
	key     recordKey
	version int64
	body    []byte
}

// recordSource is the committed state a unit of work reads from and
// commits to.
type recordSource interface {
	// load returns nil when the record does not exist.
	load(key recordKey) (*storedRecord, error)
	// listEntities returns the entity records of a registrar.
	listEntities(registrar domain.Address) ([]storedRecord, error)
	commit(reads []recordRead, writes []recordWrite) error
}

type entry struct {
	version int64
	body    []byte
	// value is nil while the record does not exist.
	value interface{}
	dirty bool
}

// unitOfWork caches every record an operation touches and writes back the
// changed ones on commit.
type unitOfWork struct {
	source   recordSource
	entries  map[recordKey]*entry
	programs ledger.Programs
}

func newUnitOfWork(source recordSource) *unitOfWork {
	u := &unitOfWork{
		source:  source,
		entries: make(map[recordKey]*entry),
	}
	u.programs = ledger.NewPrograms(u)
	return u
}

func newRecordValue(kind recordKind) (interface{}, error) {
	switch kind {
	case kindRegistrar:
		return &domain.Registrar{}, nil
	case kindEntity:
		return &domain.Entity{}, nil
	case kindMember:
		return &domain.Member{}, nil
	case kindPendingWithdrawal:
		return &domain.PendingWithdrawal{}, nil
	case kindTokenAccount:
		return &domain.TokenAccount{}, nil
	case kindPool:
		return &domain.PoolState{}, nil
	}
	return nil, fmt.Errorf("unknown record kind %v", kind)
}

func decodeRecord(kind recordKind, body []byte) (interface{}, error) {
	value, err := newRecordValue(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, value); err != nil {
		return nil, fmt.Errorf("decode %v record: %w", kind, err)
	}
	return value, nil
}

func (u *unitOfWork) cache(key recordKey, rec *storedRecord) (*entry, error) {
	e := &entry{}
	if rec != nil {
		value, err := decodeRecord(key.kind, rec.Body)
		if err != nil {
			return nil, err
		}
		// Stores may hand back a reformatted body, jsonb does. Keep the
		// encoding changes() compares against.
		body, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %v record: %w", key.kind, err)
		}
		e.version, e.body, e.value = rec.Version, body, value
	}
	u.entries[key] = e
	return e, nil
}

func (u *unitOfWork) entry(key recordKey) (*entry, error) {
	if e, ok := u.entries[key]; ok {
		return e, nil
	}
	rec, err := u.source.load(key)
	if err != nil {
		return nil, err
	}
	return u.cache(key, rec)
}

func (u *unitOfWork) get(kind recordKind, address domain.Address) (interface{}, error) {
	e, err := u.entry(recordKey{kind, address})
	if err != nil {
		return nil, err
	}
	if e.value == nil {
		return nil, fmt.Errorf("%w: %v %v", domain.ErrorRecordNotFound, kind, address)
	}
	return e.value, nil
}

func (u *unitOfWork) put(kind recordKind, address domain.Address, value interface{}) error {
	e, err := u.entry(recordKey{kind, address})
	if err != nil {
		return err
	}
	e.value = value
	e.dirty = true
	return nil
}

func (u *unitOfWork) Registrar(address domain.Address) (*domain.Registrar, error) {
	v, err := u.get(kindRegistrar, address)
	if err != nil {
		return nil, err
	}
	return v.(*domain.Registrar), nil
}

func (u *unitOfWork) Entity(address domain.Address) (*domain.Entity, error) {
	v, err := u.get(kindEntity, address)
	if err != nil {
		return nil, err
	}
	return v.(*domain.Entity), nil
}

func (u *unitOfWork) Member(address domain.Address) (*domain.Member, error) {
	v, err := u.get(kindMember, address)
	if err != nil {
		return nil, err
	}
	return v.(*domain.Member), nil
}

func (u *unitOfWork) PendingWithdrawal(address domain.Address) (*domain.PendingWithdrawal, error) {
	v, err := u.get(kindPendingWithdrawal, address)
	if err != nil {
		return nil, err
	}
	return v.(*domain.PendingWithdrawal), nil
}

func (u *unitOfWork) TokenAccount(address domain.Address) (*domain.TokenAccount, error) {
	v, err := u.get(kindTokenAccount, address)
	if err != nil {
		return nil, err
	}
	return v.(*domain.TokenAccount), nil
}

func (u *unitOfWork) PoolState(address domain.Address) (*domain.PoolState, error) {
	v, err := u.get(kindPool, address)
	if err != nil {
		return nil, err
	}
	return v.(*domain.PoolState), nil
}

func (u *unitOfWork) PutRegistrar(address domain.Address, registrar *domain.Registrar) error {
	return u.put(kindRegistrar, address, registrar)
}

func (u *unitOfWork) PutEntity(address domain.Address, entity *domain.Entity) error {
	return u.put(kindEntity, address, entity)
}

func (u *unitOfWork) PutMember(address domain.Address, member *domain.Member) error {
	return u.put(kindMember, address, member)
}

func (u *unitOfWork) PutPendingWithdrawal(address domain.Address, pw *domain.PendingWithdrawal) error {
	return u.put(kindPendingWithdrawal, address, pw)
}

func (u *unitOfWork) PutTokenAccount(address domain.Address, account *domain.TokenAccount) error {
	return u.put(kindTokenAccount, address, account)
}

func (u *unitOfWork) PutPoolState(address domain.Address, pool *domain.PoolState) error {
	return u.put(kindPool, address, pool)
}

// Entities includes entities created earlier in the same unit of work.
func (u *unitOfWork) Entities(registrar domain.Address) ([]domain.Address, error) {
	stored, err := u.source.listEntities(registrar)
	if err != nil {
		return nil, err
	}
	for _, rec := range stored {
		address, err := domain.ParseAddress(rec.Address)
		if err != nil {
			return nil, err
		}
		key := recordKey{kindEntity, address}
		if _, ok := u.entries[key]; !ok {
			if _, err := u.cache(key, &rec); err != nil {
				return nil, err
			}
		}
	}

	var addresses []domain.Address
	for key, e := range u.entries {
		if key.kind != kindEntity || e.value == nil {
			continue
		}
		if e.value.(*domain.Entity).Registrar == registrar {
			addresses = append(addresses, key.address)
		}
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].String() < addresses[j].String()
	})
	return addresses, nil
}

func (u *unitOfWork) Tokens() domain.TokenProgram {
	return u.programs.Tokens
}

func (u *unitOfWork) Pools() domain.PoolProgram {
	return u.programs.Pools
}

func (u *unitOfWork) Genesis() usecase.Genesis {
	return u.programs
}

// changes returns every record read and every record whose encoding
// differs from the committed one, in key order.
func (u *unitOfWork) changes() ([]recordRead, []recordWrite, error) {
	keys := make([]recordKey, 0, len(u.entries))
	for key := range u.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})

	var reads []recordRead
	var writes []recordWrite
	for _, key := range keys {
		e := u.entries[key]
		reads = append(reads, recordRead{key: key, version: e.version})
		if e.value == nil {
			continue
		}
		body, err := json.Marshal(e.value)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %v record: %w", key.kind, err)
		}
		if e.version != 0 && bytes.Equal(body, e.body) {
			continue
		}
		if e.version == 0 && !e.dirty {
			continue
		}
		writes = append(writes, recordWrite{key: key, version: e.version, body: body})
	}
	return reads, writes, nil
}

func (u *unitOfWork) commit() error {
	reads, writes, err := u.changes()
	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}
	return u.source.commit(reads, writes)
}

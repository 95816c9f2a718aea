package usecase

import (
	"registry/domain"
)

const (
	RefreshMemoKeyPrefix = "refresh:"
)

type MemoRepository interface {
	Upsert(key string, memo domain.Memorable) (*domain.Memo, error)
	Find(key string) (*domain.Memo, error)
}

type MemoInteractor struct {
	memoRepository MemoRepository
}

func NewMemoInteractor(memoRepository MemoRepository) *MemoInteractor {
	interactor := &MemoInteractor{
		memoRepository: memoRepository,
	}
	return interactor
}

func refreshMemoKey(registrar domain.Address) string {
	return RefreshMemoKeyPrefix + registrar.String()
}

// GetLastRefresh returns nil when the registrar was never refreshed.
func (interactor *MemoInteractor) GetLastRefresh(registrar domain.Address) (*domain.RefreshMemo, error) {
	memo, err := interactor.memoRepository.Find(refreshMemoKey(registrar))
	if err != nil || memo == nil {
		return nil, err
	}

	var refreshMemo domain.RefreshMemo
	if err := refreshMemo.FromJson(memo.Memo); err != nil {
		return nil, err
	}
	return &refreshMemo, nil
}

func (interactor *MemoInteractor) SetLastRefresh(registrar domain.Address, ts int64, entities int) error {
	refreshMemo := domain.RefreshMemo{
		Registrar:     registrar,
		LastRefreshTs: ts,
		Entities:      entities,
	}
	_, err := interactor.memoRepository.Upsert(refreshMemoKey(registrar), &refreshMemo)
	return err
}

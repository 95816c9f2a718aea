package domain

import "encoding/json"

type Memorable interface {
	ToJson() string
	FromJson(jstr string) error
}

type Memo struct {
	Key  string `json:"key"`
	Memo string `json:"memo"`
}

// RefreshMemo remembers the last activation refresh of a registrar.
type RefreshMemo struct {
	Registrar     Address `json:"registrar"`
	LastRefreshTs int64   `json:"last_refresh_ts"`
	Entities      int     `json:"entities"`
}

func (obj *RefreshMemo) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *RefreshMemo) FromJson(jstr string) error {
	err := json.Unmarshal([]byte(jstr), obj)
	return err
}

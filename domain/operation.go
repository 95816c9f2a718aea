package domain

import (
	"encoding/json"
	"time"
)

const (
	OperationStateDone  = "done"
	OperationStateError = "error"
)

// Operation is a journal entry of one executed registry operation.
type Operation struct {
	Id         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Request    string    `json:"request"`
	State      string    `json:"state"`
	Error      string    `json:"error,omitempty"`
	Timestamp  int64     `json:"timestamp"`
	CreateTime time.Time `json:"create_time"`
}

func NewOperation(kind string, request interface{}, timestamp int64, err error) *Operation {
	op := &Operation{
		Kind:       kind,
		Request:    "{}",
		State:      OperationStateDone,
		Timestamp:  timestamp,
		CreateTime: time.Now(),
	}
	if jstr, jerr := json.Marshal(request); jerr == nil {
		op.Request = string(jstr)
	}
	if err != nil {
		op.State = OperationStateError
		op.Error = err.Error()
	}
	return op
}

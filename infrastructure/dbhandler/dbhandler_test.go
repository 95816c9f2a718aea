package dbhandler

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	serialization := &pq.Error{Code: "40001"}
	uniqueViolation := &pq.Error{Code: "23505"}

	assert.True(t, IsRetryable(serialization))
	assert.True(t, IsRetryable(fmt.Errorf("commit: %w", serialization)))
	assert.False(t, IsRetryable(uniqueViolation))
	assert.False(t, IsRetryable(fmt.Errorf("connection refused")))
	assert.False(t, IsRetryable(nil))
}

package util

import (
	"testing"

	"registry/domain"

	"github.com/stretchr/testify/assert"
)

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0", AmountString(0))
	assert.Equal(t, "1,000", AmountString(1000))
	assert.Equal(t, "18,446,744,073,709,551,615", AmountString(^uint64(0)))
}

func TestSptString(t *testing.T) {
	assert.Equal(t, "1,500 SPT", SptString(1500, false))
	assert.Equal(t, "2 mega SPT", SptString(2, true))
}

func TestBalancesString(t *testing.T) {
	s := BalancesString(domain.Balances{StakeIntent: 1234, CostBasis: 1234})
	assert.Contains(t, s, "intent=1,234")
	assert.Contains(t, s, "basis=1,234")
	assert.Contains(t, s, "spt=0")
}

func TestTimelockString(t *testing.T) {
	assert.Equal(t, "86,400s", TimelockString(86400))
}

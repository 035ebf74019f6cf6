package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashToInt64(t *testing.T) {
	// stable across calls, distinct per key, never negative
	assert.Equal(t, hashToInt64("refillqueue:process-due"), hashToInt64("refillqueue:process-due"))
	assert.NotEqual(t, hashToInt64("refillqueue:process-due"), hashToInt64("refillqueue:process-due:clinic-1"))
	assert.GreaterOrEqual(t, hashToInt64("subscription:reconcile-billing-sync"), int64(0))
}

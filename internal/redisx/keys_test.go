package redisx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusKeyScopedToBuyer(t *testing.T) {
	key := fmt.Sprintf(KeyOrderStatus, "buyer-1", "order-9")
	assert.Equal(t, "order_status:buyer-1:order-9", key)

	// two buyers can never share a cache entry for the same order id
	other := fmt.Sprintf(KeyOrderStatus, "buyer-2", "order-9")
	assert.NotEqual(t, key, other)
}

func TestDedupKeyScopedToService(t *testing.T) {
	assert.Equal(t, "dedup:auditor:ev-1", fmt.Sprintf(KeyDedup, "auditor", "ev-1"))
}

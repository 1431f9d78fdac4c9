package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntitlement_ConnectorsExhausted(t *testing.T) {
	tests := []struct {
		used, limit int
		want        bool
	}{
		{4, 5, false},
		{5, 5, true},
		{6, 5, true},
		{0, 0, true},
		{100, -1, false},
	}

	for _, tt := range tests {
		e := &Entitlement{ConnectorsUsed: tt.used, ConnectorsLimit: tt.limit}
		assert.Equal(t, tt.want, e.ConnectorsExhausted(), "%d/%d", tt.used, tt.limit)
	}
}

func TestEntitlement_StorageExhausted(t *testing.T) {
	assert.False(t, (&Entitlement{StorageUsedGB: 1, StorageGB: 2}).StorageExhausted())
	assert.True(t, (&Entitlement{StorageUsedGB: 2, StorageGB: 2}).StorageExhausted())
	assert.False(t, (&Entitlement{StorageUsedGB: 50, StorageGB: -1}).StorageExhausted())
}

func TestLimitMessages(t *testing.T) {
	e := &Entitlement{ConnectorsUsed: 5, ConnectorsLimit: 5, StorageUsedGB: 9.95, StorageGB: 10}

	assert.Contains(t, ConnectorLimitMessage(e), "5/5 connectors")
	assert.Contains(t, StorageLimitMessage(e), "GB of storage")
}

package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusDispatched, true},
		{StatusPaid, StatusDispatched, true},
		{StatusDispatched, StatusDelivered, true},
		{StatusPending, StatusDelivered, false},
		{StatusPaid, StatusPending, false},
		{StatusDelivered, StatusDispatched, false},
		{StatusDelivered, StatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusPaid.Valid())
	assert.False(t, Status("CANCELED").Valid())
	assert.False(t, Status("").Valid())
}

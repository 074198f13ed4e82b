package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDelivered, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusPending, true}, // mundur eksplisit diizinkan
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusDelivered, true}, // self no-op
		{StatusDelivered, StatusShipped, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusDelivered, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusValidAndTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("UNKNOWN").Valid())
	assert.False(t, Status("").Valid())

	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

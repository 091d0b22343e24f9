package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"received", "in_progress", "completed"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(st))
	}
	for _, s := range []string{"", "bogus", "pending", "RECEIVED"} {
		_, err := ParseStatus(s)
		assert.True(t, apperr.IsValidation(err), s)
	}
}

func TestStatusNext(t *testing.T) {
	chain := []Status{StatusPending, StatusReceived, StatusInProgress, StatusCompleted}
	for i := 0; i < len(chain)-1; i++ {
		next, ok := chain[i].Next()
		require.True(t, ok)
		assert.Equal(t, chain[i+1], next)
		assert.True(t, CanAdvance(chain[i], next))
	}
	_, ok := StatusCompleted.Next()
	assert.False(t, ok)
}

func TestCanAdvance_ForwardOnly(t *testing.T) {
	assert.False(t, CanAdvance(StatusCompleted, StatusReceived))
	assert.False(t, CanAdvance(StatusInProgress, StatusReceived))
	assert.False(t, CanAdvance(StatusReceived, StatusReceived))
	assert.False(t, CanAdvance(StatusReceived, StatusCompleted))
	assert.False(t, CanAdvance("bogus", StatusReceived))
}

package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	set := []Order{
		{Status: StatusReceived},
		{Status: StatusReceived},
		{Status: StatusInProgress},
		{Status: StatusCompleted},
		{Status: StatusPending},
	}
	assert.Equal(t, Stats{Total: 5, Received: 2, InProgress: 1, Completed: 1}, ComputeStats(set))
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

package commerceposts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLastDays(t *testing.T) {
	end := time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC)

	window := LastDays(end, 30)

	assert.Equal(t, time.Date(2024, 4, 21, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, end, window.End)
}

package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeImpl(t *testing.T) {
	start := time.Date(2018, time.March, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFakeImpl(start)

	require.Equal(t, start, clock.Now())
	clock.Advance(time.Hour)
	require.Equal(t, start.Add(time.Hour), clock.Now())
}

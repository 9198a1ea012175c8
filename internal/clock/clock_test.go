package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAdvanceFiresDueTimers(t *testing.T) {
	fc := NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	var fired []string
	fc.AfterFunc(3*time.Second, func() { fired = append(fired, "a") })
	fc.AfterFunc(time.Second, func() { fired = append(fired, "b") })
	fc.AfterFunc(time.Minute, func() { fired = append(fired, "c") })

	fc.Advance(3 * time.Second)
	assert.Equal(t, []string{"b", "a"}, fired)

	fc.Advance(57 * time.Second)
	assert.Equal(t, []string{"b", "a", "c"}, fired)
}

func TestFakeStopSuppressesTimer(t *testing.T) {
	fc := NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	fired := false
	stop := fc.AfterFunc(time.Second, func() { fired = true })
	stop()
	stop() // idempotent

	fc.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFakeSameDeadlineFiresInRegistrationOrder(t *testing.T) {
	fc := NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	var fired []int
	for i := 1; i <= 3; i++ {
		i := i
		fc.AfterFunc(time.Second, func() { fired = append(fired, i) })
	}
	fc.Advance(time.Second)
	require.Equal(t, []int{1, 2, 3}, fired)
}

func TestFakeNow(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	fc := NewFake(start)
	assert.Equal(t, start, fc.Now())

	fc.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), fc.Now())
}

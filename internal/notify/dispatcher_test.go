package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altamedia51-bot/LaundryMate/internal/clock"
	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

type recordingDesktop struct {
	mu     sync.Mutex
	pushes []string
}

func (d *recordingDesktop) Push(title, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, title+": "+body)
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(logWriter{t}, nil))
}

type logWriter struct{ t *testing.T }

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func snapshot(n int) []domain.Order {
	orders := make([]domain.Order, n)
	for i := range orders {
		// newest first, like the store feed
		orders[i] = domain.Order{
			ID:           fmt.Sprintf("ORD-%03d", n-i),
			CustomerName: "Siti Aminah",
			TotalPrice:   35000,
		}
	}
	return orders
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	d := NewDispatcher(fc, nil, testLogger(t))
	t.Cleanup(d.Close)
	return d, fc
}

func TestFirstDeliveryOnlyPrimes(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Observe(snapshot(3))
	assert.Empty(t, d.Active(), "initial load must not flood the queue")
}

func TestGrowthRaisesExactlyOne(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Observe(snapshot(3))
	d.Observe(snapshot(4))

	active := d.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "ORD-004", active[0].OrderID)
	assert.Contains(t, active[0].Message, "Siti Aminah")
	assert.Contains(t, active[0].Message, "ORD-004")
}

func TestNoGrowthNoNotification(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Observe(snapshot(3))
	d.Observe(snapshot(3)) // status change, same length
	d.Observe(snapshot(2)) // shrink
	assert.Empty(t, d.Active())
}

func TestGrowthFromEmptyFeed(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Observe(snapshot(0))
	d.Observe(snapshot(1))
	assert.Len(t, d.Active(), 1)
}

func TestAutoExpiry(t *testing.T) {
	d, fc := newTestDispatcher(t)

	d.Observe(snapshot(0))
	d.Observe(snapshot(1))
	require.Len(t, d.Active(), 1)

	fc.Advance(DefaultTTL)
	assert.Empty(t, d.Active())
}

func TestIndependentLifetimes(t *testing.T) {
	d, fc := newTestDispatcher(t)

	d.Observe(snapshot(0))
	d.Observe(snapshot(1))
	fc.Advance(3 * time.Second)
	d.Observe(snapshot(2))
	require.Len(t, d.Active(), 2)

	// first notification expires, the younger one keeps its remaining time
	fc.Advance(3 * time.Second)
	remaining := d.Active()
	require.Len(t, remaining, 1)
	assert.Equal(t, "ORD-002", remaining[0].OrderID)

	fc.Advance(3 * time.Second)
	assert.Empty(t, d.Active())
}

func TestManualDismiss(t *testing.T) {
	d, fc := newTestDispatcher(t)

	d.Observe(snapshot(0))
	d.Observe(snapshot(1))
	fc.Advance(time.Second)
	d.Observe(snapshot(2))
	require.Len(t, d.Active(), 2)

	older := d.Active()[1]
	d.Dismiss(older.ID)

	remaining := d.Active()
	require.Len(t, remaining, 1)
	assert.NotEqual(t, older.ID, remaining[0].ID)

	// dismissing an unknown id is harmless
	d.Dismiss("nope")
	assert.Len(t, d.Active(), 1)
}

func TestDesktopSideChannel(t *testing.T) {
	fc := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	desktop := &recordingDesktop{}
	d := NewDispatcher(fc, desktop, testLogger(t))
	defer d.Close()

	d.Observe(snapshot(0))
	d.Observe(snapshot(1))

	assert.Eventually(t, func() bool {
		desktop.mu.Lock()
		defer desktop.mu.Unlock()
		return len(desktop.pushes) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCloseCancelsTimersAndQueue(t *testing.T) {
	d, fc := newTestDispatcher(t)

	d.Observe(snapshot(0))
	d.Observe(snapshot(1))
	d.Close()

	assert.Empty(t, d.Active())
	fc.Advance(time.Minute) // expiries were cancelled, nothing to fire
}

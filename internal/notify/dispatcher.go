// Package notify maintains the transient in-app alert queue for the admin
// viewer, driven by the order store's live feed.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/altamedia51-bot/LaundryMate/internal/clock"
	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

// DefaultTTL is how long a notification stays in the queue before it is
// auto-dismissed.
const DefaultTTL = 6 * time.Second

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}

// DesktopNotifier is a best-effort side channel (native desktop alerts).
// Pushes run on their own goroutine and are never a dependency for the
// in-app queue.
type DesktopNotifier interface {
	Push(title, body string)
}

// Dispatcher compares each delivered order snapshot against the previous
// one's length and raises one alert per newly observed order. The very first
// delivery after subscribing only primes the counter, so an initial load of
// N orders raises nothing.
type Dispatcher struct {
	clock   clock.Clock
	ttl     time.Duration
	desktop DesktopNotifier
	logger  *slog.Logger

	mu        sync.Mutex
	closed    bool
	primed    bool
	prevCount int
	queue     []Notification
	expiries  map[string]func()
}

func NewDispatcher(c clock.Clock, desktop DesktopNotifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		clock:    c,
		ttl:      DefaultTTL,
		desktop:  desktop,
		logger:   logger,
		expiries: make(map[string]func()),
	}
}

// Observe is the order-feed callback. Snapshots arrive newest-first, so a
// growth in length means orders[0] is the new arrival.
func (d *Dispatcher) Observe(orders []domain.Order) {
	d.mu.Lock()
	wasPrimed, prev := d.primed, d.prevCount
	d.primed = true
	d.prevCount = len(orders)
	d.mu.Unlock()

	if !wasPrimed || len(orders) <= prev || len(orders) == 0 {
		return
	}
	d.raise(orders[0])
}

func (d *Dispatcher) raise(order domain.Order) {
	n := Notification{
		ID:        uuid.NewString(),
		Title:     "Pesanan Masuk!",
		Message:   fmt.Sprintf("%s membuat pesanan %s.", order.CustomerName, order.ID),
		OrderID:   order.ID,
		Action:    "transactions",
		CreatedAt: d.clock.Now(),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append([]Notification{n}, d.queue...)
	// each notification expires on its own timer; dismissing one leaves
	// the others' lifetimes untouched
	d.expiries[n.ID] = d.clock.AfterFunc(d.ttl, func() { d.Dismiss(n.ID) })
	d.mu.Unlock()

	d.logger.Info("new order notification", "order", order.ID, "customer", order.CustomerName)
	if d.desktop != nil {
		go d.desktop.Push(n.Title, fmt.Sprintf("%s - Rp %d", order.CustomerName, order.TotalPrice))
	}
}

// Active returns the queued notifications, newest first.
func (d *Dispatcher) Active() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notification(nil), d.queue...)
}

// Dismiss removes exactly the matching notification, whether triggered by
// the user or by expiry.
func (d *Dispatcher) Dismiss(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if stop, ok := d.expiries[id]; ok {
		stop()
		delete(d.expiries, id)
	}
	for i, n := range d.queue {
		if n.ID == id {
			d.queue = append(d.queue[:i], d.queue[i+1:]...)
			break
		}
	}
}

// Close drops the queue and cancels every pending expiry timer.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, stop := range d.expiries {
		stop()
		delete(d.expiries, id)
	}
	d.queue = nil
}

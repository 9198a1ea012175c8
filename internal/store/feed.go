package store

import (
	"sync"

	"github.com/samber/lo"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

// feed fans order and settings snapshots out to subscribers. Deliveries for
// a given subscription are strictly sequential: publish holds the feed lock
// while invoking callbacks, and a disposer that has returned guarantees no
// further invocation. Callbacks must therefore be quick and must not call
// back into the feed.
type feed struct {
	mu           sync.Mutex
	nextID       int
	orderSubs    map[int]*orderSub
	settingsSubs map[int]func(domain.SiteSettings)
}

type orderSub struct {
	customerID string // empty means all orders
	fn         func([]domain.Order)
}

func newFeed() *feed {
	return &feed{
		orderSubs:    make(map[int]*orderSub),
		settingsSubs: make(map[int]func(domain.SiteSettings)),
	}
}

// subscribeOrders registers fn and synchronously delivers the given initial
// snapshot before returning.
func (f *feed) subscribeOrders(customerID string, fn func([]domain.Order), initial []domain.Order) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.orderSubs[id] = &orderSub{customerID: customerID, fn: fn}
	fn(filterOrders(initial, customerID))
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.orderSubs, id)
		f.mu.Unlock()
	}
}

func (f *feed) publishOrders(orders []domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.orderSubs {
		sub.fn(filterOrders(orders, sub.customerID))
	}
}

func (f *feed) subscribeSettings(fn func(domain.SiteSettings), initial domain.SiteSettings) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.settingsSubs[id] = fn
	fn(initial)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.settingsSubs, id)
		f.mu.Unlock()
	}
}

func (f *feed) publishSettings(settings domain.SiteSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fn := range f.settingsSubs {
		fn(settings)
	}
}

func filterOrders(orders []domain.Order, customerID string) []domain.Order {
	if customerID == "" {
		return append([]domain.Order(nil), orders...)
	}
	return lo.Filter(orders, func(o domain.Order, _ int) bool {
		return o.CustomerID == customerID
	})
}

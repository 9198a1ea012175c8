package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
	"github.com/altamedia51-bot/LaundryMate/internal/store"
)

const defaultConfirmDelay = 3 * time.Second

// PaymentSession is the ephemeral view handed to the caller after order
// creation: the persisted order plus the gateway payment URL. A confirmation
// watcher simulating the provider webhook fires after the configured delay
// and marks the order paid.
//
// Payment confirmation touches paymentStatus only; it never rewinds or
// advances the fulfillment status.
type PaymentSession struct {
	Order      domain.Order
	PaymentURL string

	store  store.OrderStore
	svc    *OrderService
	mu     sync.Mutex
	closed bool
	done   bool
	stop   func()
	paidCh chan struct{}
}

func (s *OrderService) newSession(order domain.Order) *PaymentSession {
	p := &PaymentSession{
		Order:      order,
		PaymentURL: order.PaymentURL,
		store:      s.Store,
		svc:        s,
		paidCh:     make(chan struct{}),
	}
	delay := s.ConfirmDelay
	if delay <= 0 {
		delay = defaultConfirmDelay
	}
	p.stop = s.Clock.AfterFunc(delay, p.Confirm)
	return p
}

// Confirm marks the order paid. It is idempotent, and a no-op once the
// session is closed, so a late watcher firing after teardown cannot
// resurrect the session.
func (p *PaymentSession) Confirm() {
	p.mu.Lock()
	if p.closed || p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()

	if err := p.store.UpdatePaymentStatus(context.Background(), p.Order.ID, domain.PaymentPaid); err != nil {
		p.svc.Logger.Error("payment confirmation write failed", "order", p.Order.ID, "err", err)
	}
	close(p.paidCh)
	p.Close()
}

// Paid is closed once the confirmation has been recorded.
func (p *PaymentSession) Paid() <-chan struct{} { return p.paidCh }

// Close tears the session down and suppresses a pending confirmation
// watcher. Safe to call more than once.
func (p *PaymentSession) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	stop := p.stop
	p.mu.Unlock()

	if stop != nil {
		stop()
	}
}

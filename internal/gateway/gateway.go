// Package gateway abstracts the payment provider. The provider wire formats
// (Tripay/Duitku) live behind CreateTransaction; this module only deals in
// the abstract lifecycle: initiate a transaction, hand back a scannable
// payment endpoint.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

type Gateway interface {
	// CreateTransaction registers the order with the provider and returns
	// the payment URL (a QR endpoint the customer scans).
	CreateTransaction(ctx context.Context, order domain.Order) (string, error)
}

const defaultQRBase = "https://api.qrserver.com/v1/create-qr-code/"

// Mock stands in for a real provider integration. It mints a transaction
// reference and returns a QR code endpoint carrying the order id and amount.
type Mock struct {
	BaseURL string
	Delay   time.Duration // simulated provider latency
}

func (m *Mock) CreateTransaction(ctx context.Context, order domain.Order) (string, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	base := m.BaseURL
	if base == "" {
		base = defaultQRBase
	}
	ref := uuid.NewString()
	return fmt.Sprintf("%s?size=300x300&data=LAUNDRYMATE-%s-%d-%s", base, order.ID, order.TotalPrice, ref), nil
}

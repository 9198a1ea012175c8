package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/altamedia51-bot/LaundryMate/internal/clock"
)

const (
	tipCacheTTL      = 24 * time.Hour
	tipErrorCooldown = time.Hour
)

var fallbackTips = []string{
	"Pisahkan pakaian putih dan berwarna agar tidak luntur!",
	"Gunakan air dingin untuk menjaga serat kain tetap awet.",
	"Balik pakaian sebelum mencuci untuk melindungi warna bagian luar.",
	"Jangan mengisi mesin cuci terlalu penuh agar pembersihan maksimal.",
	"Gunakan deterjen secukupnya; terlalu banyak busa sulit dibilas.",
	"Segera gantung pakaian setelah dicuci agar tidak bau apek.",
	"Gunakan cuka putih untuk menghilangkan bau keringat yang membandel.",
	"Cuci handuk secara terpisah agar seratnya tetap lembut dan menyerap.",
}

// TipSupplier produces one laundry-care tip. Implementations may be slow or
// flaky; TipService owns the caching and cooldown around them.
type TipSupplier interface {
	FetchTip(ctx context.Context) (string, error)
}

// TipService serves a cached tip for 24 hours. After a supplier error it
// stops calling the supplier for an hour and serves fallback tips instead.
// The tip is decorative, so supplier failures degrade silently.
type TipService struct {
	Supplier TipSupplier
	Clock    clock.Clock
	Logger   *slog.Logger

	mu       sync.Mutex
	cached   string
	cachedAt time.Time
	errorAt  time.Time
}

func (s *TipService) Tip(ctx context.Context) string {
	now := s.Clock.Now()

	s.mu.Lock()
	if s.cached != "" && now.Sub(s.cachedAt) < tipCacheTTL {
		tip := s.cached
		s.mu.Unlock()
		return tip
	}
	if s.Supplier == nil || (!s.errorAt.IsZero() && now.Sub(s.errorAt) < tipErrorCooldown) {
		s.mu.Unlock()
		return fallbackTip()
	}
	s.mu.Unlock()

	tip, err := s.Supplier.FetchTip(ctx)
	if err != nil || strings.TrimSpace(tip) == "" {
		if err != nil {
			s.Logger.Warn("tip supplier failed, entering cooldown", "err", err)
		}
		s.mu.Lock()
		s.errorAt = now
		s.mu.Unlock()
		return fallbackTip()
	}

	s.mu.Lock()
	s.cached = tip
	s.cachedAt = now
	s.mu.Unlock()
	return tip
}

func fallbackTip() string {
	return lo.Sample(fallbackTips)
}

// HTTPTipSupplier fetches a plain-text tip from a configured endpoint.
type HTTPTipSupplier struct {
	URL  string
	HTTP *http.Client
}

func (h *HTTPTipSupplier) FetchTip(ctx context.Context) (string, error) {
	hc := h.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("tip endpoint status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

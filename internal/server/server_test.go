package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altamedia51-bot/LaundryMate/internal/clock"
	"github.com/altamedia51-bot/LaundryMate/internal/config"
	"github.com/altamedia51-bot/LaundryMate/internal/domain"
	"github.com/altamedia51-bot/LaundryMate/internal/notify"
	"github.com/altamedia51-bot/LaundryMate/internal/store"
	"github.com/altamedia51-bot/LaundryMate/internal/usecase"
)

type testEnv struct {
	srv   *Server
	store store.Store
	auth  *usecase.AuthService
	clock *clock.Fake
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(logWriter{t}, nil))
	st, err := store.NewLocal(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	fc := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	auth := &usecase.AuthService{JWTSecret: "test-secret", Logger: logger}
	orders := &usecase.OrderService{
		Store:        st,
		Gateway:      stubGateway{},
		Clock:        fc,
		ConfirmDelay: 3 * time.Second,
		Logger:       logger,
	}
	tips := &usecase.TipService{Clock: fc, Logger: logger}
	dispatcher := notify.NewDispatcher(fc, nil, logger)
	t.Cleanup(dispatcher.Close)
	t.Cleanup(st.SubscribeOrders(dispatcher.Observe))

	cfg := config.Default()
	srv := New(cfg, st, orders, auth, tips, dispatcher, logger)
	return &testEnv{srv: srv, store: st, auth: auth, clock: fc}
}

type stubGateway struct{}

func (stubGateway) CreateTransaction(_ context.Context, order domain.Order) (string, error) {
	return "https://pay.example/qr/" + order.ID, nil
}

type logWriter struct{ t *testing.T }

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func (e *testEnv) token(t *testing.T, role domain.UserRole) string {
	t.Helper()
	token, _, err := e.auth.Login(role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/login", "", gin.H{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}](t, rec)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)

	user, err := env.auth.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/login", "", gin.H{"role": "ROOT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListOrders(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, domain.RoleCustomer)

	rec := env.do(t, http.MethodPost, "/api/orders", token, gin.H{
		"items": []gin.H{{"serviceId": "1", "quantity": 5}},
		"notes": "jemput sore",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[struct {
		Order      domain.Order `json:"order"`
		PaymentURL string       `json:"paymentUrl"`
	}](t, rec)
	assert.Equal(t, 35000, created.Order.TotalPrice)
	assert.Equal(t, domain.StatusPending, created.Order.Status)
	assert.NotEmpty(t, created.PaymentURL)

	rec = env.do(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]domain.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, created.Order.ID, orders[0].ID)
}

func TestCreateOrderEmptySelection(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, domain.RoleCustomer)

	rec := env.do(t, http.MethodPost, "/api/orders", token, gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomersSeeOnlyTheirOrders(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, domain.RoleCustomer)
	bob := env.token(t, domain.RoleCustomer)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/orders", alice, gin.H{
		"items": []gin.H{{"serviceId": "1", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Order](t, rec))

	rec = env.do(t, http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Order](t, rec), 1)
}

func TestUpdateStatusAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	customer := env.token(t, domain.RoleCustomer)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/orders", customer, gin.H{
		"items": []gin.H{{"serviceId": "1", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[struct {
		Order domain.Order `json:"order"`
	}](t, rec)
	id := created.Order.ID

	rec = env.do(t, http.MethodPatch, "/api/orders/"+id+"/status", customer, gin.H{"status": "DICUCI"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/orders/"+id+"/status", admin, gin.H{"status": "DICUCI"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/orders/"+id+"/status", admin, gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/orders/ORD-MISSING/status", admin, gin.H{"status": "DICUCI"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsReadPublicWriteAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[domain.SiteSettings](t, rec)
	require.NotEmpty(t, settings.Services)

	customer := env.token(t, domain.RoleCustomer)
	settings.Hero.Title = "Laundry Kilat"
	rec = env.do(t, http.MethodPut, "/api/settings", customer, settings)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := env.token(t, domain.RoleAdmin)
	rec = env.do(t, http.MethodPut, "/api/settings", admin, settings)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Laundry Kilat", decode[domain.SiteSettings](t, rec).Hero.Title)
}

func TestSummaryReflectsPayments(t *testing.T) {
	env := newTestEnv(t)
	customer := env.token(t, domain.RoleCustomer)
	admin := env.token(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/orders", customer, gin.H{
		"items": []gin.H{{"serviceId": "1", "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// the simulated payment settles after the watcher delay
	env.clock.Advance(3 * time.Second)

	rec = env.do(t, http.MethodGet, "/api/summary", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[struct {
		Orders      int `json:"orders"`
		PaidTotal   int `json:"paidTotal"`
		UnpaidTotal int `json:"unpaidTotal"`
	}](t, rec)
	assert.Equal(t, 1, summary.Orders)
	assert.Equal(t, 35000, summary.PaidTotal)
	assert.Zero(t, summary.UnpaidTotal)
}

func TestNotificationsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	customer := env.token(t, domain.RoleCustomer)
	admin := env.token(t, domain.RoleAdmin)

	// the dispatcher was primed by the empty snapshot on subscribe, so the
	// first order grows the feed and raises one alert
	rec := env.do(t, http.MethodPost, "/api/orders", customer, gin.H{
		"items": []gin.H{{"serviceId": "1", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/notifications", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode[[]notify.Notification](t, rec)
	require.Len(t, active, 1)

	rec = env.do(t, http.MethodDelete, "/api/notifications/"+active[0].ID, admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/notifications", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]notify.Notification](t, rec))

	rec = env.do(t, http.MethodGet, "/api/notifications", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTipEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/tip", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Tip string `json:"tip"`
	}](t, rec)
	assert.NotEmpty(t, resp.Tip)
}

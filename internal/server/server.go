package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/altamedia51-bot/LaundryMate/internal/config"
	"github.com/altamedia51-bot/LaundryMate/internal/domain"
	"github.com/altamedia51-bot/LaundryMate/internal/notify"
	"github.com/altamedia51-bot/LaundryMate/internal/store"
	"github.com/altamedia51-bot/LaundryMate/internal/usecase"
)

const userKey = "laundry.user"

type Server struct {
	cfg      config.Config
	store    store.Store
	orders   *usecase.OrderService
	auth     *usecase.AuthService
	tips     *usecase.TipService
	notifier *notify.Dispatcher
	logger   *slog.Logger
	engine   *gin.Engine
}

func New(cfg config.Config, st store.Store, orders *usecase.OrderService, auth *usecase.AuthService,
	tips *usecase.TipService, notifier *notify.Dispatcher, logger *slog.Logger) *Server {

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:      cfg,
		store:    st,
		orders:   orders,
		auth:     auth,
		tips:     tips,
		notifier: notifier,
		logger:   logger,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.POST("/login", s.handleLogin)
	api.GET("/settings", s.handleGetSettings)
	api.GET("/tip", s.handleTip)

	authed := api.Group("", s.authRequired())
	authed.PUT("/settings", s.adminOnly(), s.handleUpdateSettings)
	authed.POST("/profile", s.handleSaveProfile)
	authed.POST("/orders", s.handleCreateOrder)
	authed.GET("/orders", s.handleListOrders)
	authed.GET("/orders/stream", s.handleOrderStream)
	authed.PATCH("/orders/:id/status", s.adminOnly(), s.handleUpdateStatus)
	authed.GET("/summary", s.adminOnly(), s.handleSummary)
	authed.GET("/notifications", s.adminOnly(), s.handleNotifications)
	authed.DELETE("/notifications/:id", s.adminOnly(), s.handleDismissNotification)
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		user, err := s.auth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	u, _ := c.Get(userKey)
	user, _ := u.(domain.User)
	return user
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role required"})
		return
	}
	token, user, err := s.auth.Login(domain.UserRole(req.Role))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.store.Settings(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var settings domain.SiteSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}
	if err := s.store.UpdateSettings(c.Request.Context(), settings); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleSaveProfile(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}
	u.ID = currentUser(c).ID
	if err := s.auth.SaveProfile(u); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleTip(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tip": s.tips.Tip(c.Request.Context())})
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req struct {
		Items []usecase.Selection `json:"items"`
		Notes string              `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}
	session, err := s.orders.PlaceOrder(c.Request.Context(), currentUser(c), req.Items, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": session.Order, "paymentUrl": session.PaymentURL})
}

func (s *Server) handleListOrders(c *gin.Context) {
	orders, err := s.store.ListOrders(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	user := currentUser(c)
	if user.Role != domain.RoleAdmin {
		orders = lo.Filter(orders, func(o domain.Order, _ int) bool {
			return o.CustomerID == user.ID
		})
	}
	c.JSON(http.StatusOK, orders)
}

// handleOrderStream pushes order snapshots over SSE: admins see the full
// feed, customers only their own orders. The subscription is released when
// the client disconnects.
func (s *Server) handleOrderStream(c *gin.Context) {
	// latest-wins bridge so a slow client never blocks the store's feed
	ch := make(chan []domain.Order, 1)
	push := func(orders []domain.Order) {
		for {
			select {
			case ch <- orders:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}

	user := currentUser(c)
	var cancel func()
	if user.Role == domain.RoleAdmin {
		cancel = s.store.SubscribeOrders(push)
	} else {
		cancel = s.store.SubscribeCustomerOrders(user.ID, push)
	}
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case orders := <-ch:
			c.SSEvent("orders", orders)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	if err := s.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

func (s *Server) handleSummary(c *gin.Context) {
	orders, err := s.store.ListOrders(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	paid, unpaid := usecase.RevenueSummary(orders)
	c.JSON(http.StatusOK, gin.H{
		"orders":      len(orders),
		"paidTotal":   paid,
		"unpaidTotal": unpaid,
	})
}

func (s *Server) handleNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.notifier.Active())
}

func (s *Server) handleDismissNotification(c *gin.Context) {
	s.notifier.Dismiss(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// fail maps domain error kinds onto HTTP statuses and logs the trace.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		notFound  store.ErrNotFound
		empty     usecase.ErrEmptySelection
		gw        usecase.ErrGateway
		backendNA store.ErrBackendUnavailable
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &empty), errors.Is(err, domain.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.As(err, &gw):
		status = http.StatusBadGateway
	case errors.As(err, &backendNA):
		status = http.StatusServiceUnavailable
	}
	s.logger.Error("request failed", "path", c.FullPath(), "status", status, "err", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

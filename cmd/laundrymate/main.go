package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/altamedia51-bot/LaundryMate/internal/clock"
	"github.com/altamedia51-bot/LaundryMate/internal/config"
	"github.com/altamedia51-bot/LaundryMate/internal/env"
	"github.com/altamedia51-bot/LaundryMate/internal/gateway"
	"github.com/altamedia51-bot/LaundryMate/internal/notify"
	"github.com/altamedia51-bot/LaundryMate/internal/server"
	"github.com/altamedia51-bot/LaundryMate/internal/store"
	"github.com/altamedia51-bot/LaundryMate/internal/usecase"
)

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	dataDir := flag.String("data-dir", envDefaults.DataDir, "")
	databaseURL := flag.String("database-url", envDefaults.DatabaseURL, "")
	jwtSecret := flag.String("jwt-secret", envDefaults.JWTSecret, "")
	logJSON := flag.Bool("log-json", envDefaults.LogJSON, "")
	tipURL := flag.String("tip-url", envDefaults.TipURL, "")
	flag.Parse()

	cfg := config.Config{
		Env:          *envName,
		Port:         *port,
		DataDir:      *dataDir,
		DatabaseURL:  *databaseURL,
		JWTSecret:    *jwtSecret,
		LogJSON:      *logJSON,
		ConfirmDelay: envDefaults.ConfirmDelay,
		TipURL:       *tipURL,
	}

	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	logger := slog.New(handler)

	st, err := store.Open(cfg.DatabaseURL, cfg.DataDir, logger)
	if err != nil {
		logger.Error("store init failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	sysClock := clock.System()
	auth := &usecase.AuthService{JWTSecret: cfg.JWTSecret, Logger: logger}
	orders := &usecase.OrderService{
		Store:        st,
		Gateway:      &gateway.Mock{},
		Clock:        sysClock,
		ConfirmDelay: cfg.ConfirmDelay,
		Logger:       logger,
	}
	tips := &usecase.TipService{Clock: sysClock, Logger: logger}
	if cfg.TipURL != "" {
		tips.Supplier = &usecase.HTTPTipSupplier{URL: cfg.TipURL}
	}

	dispatcher := notify.NewDispatcher(sysClock, logNotifier{logger}, logger)
	unsubscribe := st.SubscribeOrders(dispatcher.Observe)
	defer unsubscribe()
	defer dispatcher.Close()

	srv := server.New(cfg, st, orders, auth, tips, dispatcher, logger)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("listening", "addr", httpSrv.Addr, "env", cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// logNotifier stands in for a native desktop channel on headless deployments.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Push(title, body string) {
	n.logger.Info("desktop notification", "title", title, "body", body)
}

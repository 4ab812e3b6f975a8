package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cludbox/control-plane/internal/auth"
	"github.com/cludbox/control-plane/internal/bootstrap"
	"github.com/cludbox/control-plane/internal/db"
	"github.com/cludbox/control-plane/internal/db/sqlc"
	"github.com/cludbox/control-plane/internal/forwardproxy"
	"github.com/cludbox/control-plane/internal/gatewayproxy"
	"github.com/cludbox/control-plane/internal/monitor"
	"github.com/cludbox/control-plane/internal/provider"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("cludbox control plane starting", "version", AppVersion)

	if err := db.RunMigrations(config.DB.URL, config.DB.Schema); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.InitDB(ctx, config.DB.URL, config.DB.Schema)
	if err != nil {
		slog.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := sqlc.New(pool)

	providers, err := provider.BuildRegistry()
	if err != nil {
		slog.Error("no VPS providers configured", "error", err)
		os.Exit(1)
	}
	slog.Info("VPS providers registered", "providers", providers.Available())

	tokenConfig := auth.Config{Secret: config.Auth.JWTSecret, DefaultTTL: config.Auth.DefaultTTL()}
	sessions := auth.NewSessionLookup(queries)

	forwardSrv := forwardproxy.NewServer(queries, config.ForwardProxy.Addr)
	gatewaySrv := gatewayproxy.NewServer(queries, tokenConfig, sessions)
	bootstrapSrv := bootstrap.NewServer(queries)
	mon := monitor.New(queries, monitor.StubCollector{}, providers, config.Monitor.Interval())

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	engine.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	gatewaySrv.RegisterRoutes(engine)
	bootstrapSrv.RegisterRoutes(engine, config.Admin.APIKeyHash)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.HTTP.Port),
		Handler: engine,
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go mon.Run(monitorCtx)

	errChan := make(chan error, 2)
	go func() {
		slog.Info("starting gateway/admin HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("gateway HTTP server error: %w", err)
		}
	}()

	proxyCtx, stopProxy := context.WithCancel(context.Background())
	defer stopProxy()
	go func() {
		if err := forwardSrv.ListenAndServe(proxyCtx); err != nil {
			errChan <- fmt.Errorf("forward proxy error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("server error", "error", err)
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	}

	slog.Info("shutting down")
	stopMonitor()
	stopProxy()

	var wg sync.WaitGroup
	shutdownTimeout := 10 * time.Second

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("gateway HTTP server shutdown error", "error", err)
		} else {
			slog.Info("gateway HTTP server stopped")
		}
	}()

	wg.Wait()
	slog.Info("shutdown complete")
}

// Package forwardproxy implements the outbound HTTP/CONNECT proxy VPSes use
// to reach the public internet. Every connection is authenticated as a
// specific agent, metered, and — for elastically-billed providers — gated
// against the owning user's plan and overage budget before it opens.
package forwardproxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cludbox/control-plane/internal/billing"
	"github.com/cludbox/control-plane/internal/db/sqlc"
	"github.com/cludbox/control-plane/internal/provider"
)

// Server is the forward proxy's listener and request handler.
type Server struct {
	queries    *sqlc.Queries
	httpClient *http.Client
	addr       string
}

func NewServer(queries *sqlc.Queries, addr string) *Server {
	return &Server{
		queries: queries,
		addr:    addr,
		httpClient: &http.Client{
			Timeout: 0, // CONNECT tunnels and long upstream bodies are legitimate; no blanket deadline.
			Transport: &http.Transport{
				Proxy:               nil,
				MaxIdleConnsPerHost: 32,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
			},
		},
	}
}

// ListenAndServe blocks serving forward-proxy connections until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: http.HandlerFunc(s.handle),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("forward proxy listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("forward proxy listener: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	agent, err := s.authenticate(r)
	if err != nil {
		proxyAuthRequired(w)
		return
	}

	if !agent.VpsID.Valid {
		http.Error(w, "agent has no VPS", http.StatusForbidden)
		return
	}

	vps, err := s.queries.GetVpsByID(r.Context(), agent.VpsID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metered := provider.MeteredResourcesFor(vps.Provider)
	if metered.CPU || metered.Memory {
		if err := s.checkUsage(r.Context(), vps); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
	}

	if r.Method == http.MethodConnect {
		s.handleConnect(w, r, vps.ID)
		return
	}
	s.handlePlainHTTP(w, r, vps.ID)
}

// checkUsage is only consulted for elastic providers; traffic from
// fixed-resource providers is counted but never refused here, and the
// monitor's enforcement pass does not stop those VPSes either.
func (s *Server) checkUsage(ctx context.Context, vps sqlc.Vps) error {
	user, err := s.queries.GetUserByID(ctx, vps.UserID)
	if err != nil {
		return fmt.Errorf("internal error")
	}
	if !user.PlanID.Valid {
		return fmt.Errorf("no plan")
	}

	plan, err := s.queries.GetPlanByID(ctx, user.PlanID)
	if err != nil {
		return fmt.Errorf("internal error")
	}

	agg, err := s.queries.GetUserAggregateUsage(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("internal error")
	}
	usage := billing.FromAggregate(agg)

	withinPlan := agg.BandwidthBytes <= plan.MaxBandwidthBytes &&
		agg.CpuUsedMs <= plan.MaxCpuMs &&
		agg.MemoryUsedMbSeconds <= plan.MaxMemoryMbSeconds
	if withinPlan {
		return nil
	}

	budget, err := s.queries.GetCurrentOverageBudget(ctx, user.ID)
	if err != nil {
		budget = sqlc.OverageBudget{}
	}

	if !billing.WithinBudget(plan, usage, budget.BudgetCents) {
		return fmt.Errorf("usage limit exceeded (overage budget exhausted)")
	}
	return nil
}

func proxyAuthRequired(w http.ResponseWriter) {
	w.Header().Set("Proxy-Authenticate", `Basic realm="cludbox"`)
	http.Error(w, "Proxy authentication required", http.StatusProxyAuthRequired)
}

package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

func pathUUID(c *gin.Context, name string) (pgtype.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a valid UUID"})
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: id, Valid: true}, true
}

// ── Plans ─────────────────────────────────────────────────────────────

type createPlanRequest struct {
	Name                            string `json:"name" binding:"required"`
	MaxAgents                       int32  `json:"max_agents"`
	MaxVpses                        int32  `json:"max_vpses"`
	MaxBandwidthBytes               int64  `json:"max_bandwidth_bytes"`
	MaxStorageBytes                 int64  `json:"max_storage_bytes"`
	MaxCpuMs                        int64  `json:"max_cpu_ms"`
	MaxMemoryMbSeconds              int64  `json:"max_memory_mb_seconds"`
	OverageBandwidthCostPerGbCents  int64  `json:"overage_bandwidth_cost_per_gb_cents"`
	OverageCpuCostPerHourCents      int64  `json:"overage_cpu_cost_per_hour_cents"`
	OverageMemoryCostPerGbHourCents int64  `json:"overage_memory_cost_per_gb_hour_cents"`
}

func (s *Server) createPlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := s.queries.CreatePlan(c.Request.Context(), sqlc.CreatePlanParams{
		Name:                            req.Name,
		MaxAgents:                       req.MaxAgents,
		MaxVpses:                        req.MaxVpses,
		MaxBandwidthBytes:               req.MaxBandwidthBytes,
		MaxStorageBytes:                 req.MaxStorageBytes,
		MaxCpuMs:                        req.MaxCpuMs,
		MaxMemoryMbSeconds:              req.MaxMemoryMbSeconds,
		OverageBandwidthCostPerGbCents:  req.OverageBandwidthCostPerGbCents,
		OverageCpuCostPerHourCents:      req.OverageCpuCostPerHourCents,
		OverageMemoryCostPerGbHourCents: req.OverageMemoryCostPerGbHourCents,
	})
	if err != nil {
		slog.Error("failed to create plan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (s *Server) listPlans(c *gin.Context) {
	plans, err := s.queries.ListPlans(c.Request.Context())
	if err != nil {
		slog.Error("failed to list plans", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// ── VPS configs ───────────────────────────────────────────────────────

type createVpsConfigRequest struct {
	Name          string `json:"name" binding:"required"`
	Provider      string `json:"provider" binding:"required"`
	Image         string `json:"image" binding:"required"`
	CpuMillicores int32  `json:"cpu_millicores" binding:"required"`
	MemoryMb      int32  `json:"memory_mb" binding:"required"`
	DiskGb        int32  `json:"disk_gb" binding:"required"`
}

func (s *Server) createVpsConfig(c *gin.Context) {
	var req createVpsConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := s.queries.CreateVpsConfig(c.Request.Context(), sqlc.CreateVpsConfigParams{
		Name:          req.Name,
		Provider:      req.Provider,
		Image:         req.Image,
		CpuMillicores: req.CpuMillicores,
		MemoryMb:      req.MemoryMb,
		DiskGb:        req.DiskGb,
	})
	if err != nil {
		slog.Error("failed to create vps config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vps config"})
		return
	}

	c.JSON(http.StatusCreated, cfg)
}

// ── Users ─────────────────────────────────────────────────────────────

type createUserRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := pgtype.Text{}
	if req.Name != "" {
		name = pgtype.Text{String: req.Name, Valid: true}
	}

	user, err := s.queries.CreateUser(c.Request.Context(), req.Email, name)
	if err != nil {
		slog.Error("failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

type setUserPlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

func (s *Server) setUserPlan(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	var req setUserPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id must be a valid UUID"})
		return
	}

	if err := s.queries.SetUserPlan(c.Request.Context(), userID, pgtype.UUID{Bytes: planID, Valid: true}); err != nil {
		slog.Error("failed to set user plan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set user plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ── Agents ────────────────────────────────────────────────────────────

type createAgentRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

func (s *Server) createAgent(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}

	token, err := sqlc.GenerateGatewayToken()
	if err != nil {
		slog.Error("failed to generate gateway token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
		return
	}

	agent, err := s.queries.CreateAgent(c.Request.Context(), pgtype.UUID{Bytes: userID, Valid: true}, req.Name, token)
	if err != nil {
		slog.Error("failed to create agent", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
		return
	}

	c.JSON(http.StatusCreated, agent)
}

func (s *Server) listAgents(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	agents, err := s.queries.ListAgentsForUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to list agents", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list agents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (s *Server) rotateAgentToken(c *gin.Context) {
	agentID, ok := pathUUID(c, "agent_id")
	if !ok {
		return
	}

	token, err := s.queries.RotateGatewayToken(c.Request.Context(), agentID)
	if err != nil {
		slog.Error("failed to rotate gateway token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate gateway token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gateway_token": token})
}

// ── VPSes ─────────────────────────────────────────────────────────────

type createVpsRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	VpsConfigID string `json:"vps_config_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
}

func (s *Server) createVps(c *gin.Context) {
	var req createVpsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}
	vpsConfigID, err := uuid.Parse(req.VpsConfigID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vps_config_id must be a valid UUID"})
		return
	}

	vps, err := s.queries.CreateVps(c.Request.Context(), sqlc.CreateVpsParams{
		UserID:      pgtype.UUID{Bytes: userID, Valid: true},
		VpsConfigID: pgtype.UUID{Bytes: vpsConfigID, Valid: true},
		Name:        req.Name,
		Provider:    req.Provider,
	})
	if err != nil {
		slog.Error("failed to create vps", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vps"})
		return
	}

	c.JSON(http.StatusCreated, vps)
}

func (s *Server) listVpses(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	vpses, err := s.queries.ListVpsForUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to list vpses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vpses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vpses": vpses})
}

type setVpsStateRequest struct {
	State string `json:"state" binding:"required"`
}

func (s *Server) setVpsState(c *gin.Context) {
	vpsID, ok := pathUUID(c, "vps_id")
	if !ok {
		return
	}

	var req setVpsStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := sqlc.VpsState(req.State)
	switch state {
	case sqlc.VpsStateProvisioning, sqlc.VpsStateRunning, sqlc.VpsStateStopped, sqlc.VpsStateDestroyed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	if err := s.queries.SetVpsState(c.Request.Context(), vpsID, state); err != nil {
		slog.Error("failed to set vps state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set vps state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ── Overage budgets ───────────────────────────────────────────────────

type setOverageBudgetRequest struct {
	BudgetCents int64 `json:"budget_cents"`
}

func (s *Server) setOverageBudget(c *gin.Context) {
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	var req setOverageBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := s.queries.SetOverageBudget(c.Request.Context(), userID, req.BudgetCents)
	if err != nil {
		slog.Error("failed to set overage budget", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set overage budget"})
		return
	}
	c.JSON(http.StatusOK, budget)
}

package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

// Server holds the admin surface's dependencies.
type Server struct {
	queries *sqlc.Queries
}

func NewServer(queries *sqlc.Queries) *Server {
	return &Server{queries: queries}
}

// RegisterRoutes mounts the admin surface under /admin, protected by
// adminKeyHash.
func (s *Server) RegisterRoutes(engine *gin.Engine, adminKeyHash string) {
	admin := engine.Group("/admin", APIKeyAuth(adminKeyHash))

	admin.POST("/plans", s.createPlan)
	admin.GET("/plans", s.listPlans)

	admin.POST("/vps-configs", s.createVpsConfig)

	admin.POST("/users", s.createUser)
	admin.POST("/users/:user_id/plan", s.setUserPlan)

	admin.POST("/agents", s.createAgent)
	admin.GET("/users/:user_id/agents", s.listAgents)
	admin.POST("/agents/:agent_id/rotate-token", s.rotateAgentToken)

	admin.POST("/vpses", s.createVps)
	admin.GET("/users/:user_id/vpses", s.listVpses)
	admin.POST("/vpses/:vps_id/state", s.setVpsState)

	admin.PUT("/users/:user_id/overage-budget", s.setOverageBudget)
}

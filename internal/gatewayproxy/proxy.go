// Package gatewayproxy exposes each agent's on-VPS control surface to its
// owning user without ever revealing the VPS address or gateway token to
// the browser, and while denying a fixed set of RPC methods that would let
// a user reconfigure the on-VPS agent out from under the platform's policy.
package gatewayproxy

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cludbox/control-plane/internal/auth"
	"github.com/cludbox/control-plane/internal/db/sqlc"
)

// gatewayPort is the fixed port the on-VPS control backend listens on.
const gatewayPort = 18789

// Server holds the dependencies the gateway proxy's HTTP and WebSocket
// handlers share.
type Server struct {
	queries     *sqlc.Queries
	tokenConfig auth.Config
	sessions    *auth.SessionLookup
	httpClient  *http.Client
}

func NewServer(queries *sqlc.Queries, tokenConfig auth.Config, sessions *auth.SessionLookup) *Server {
	return &Server{
		queries:     queries,
		tokenConfig: tokenConfig,
		sessions:    sessions,
		httpClient: &http.Client{
			Timeout: 0,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
		},
	}
}

// RegisterRoutes mounts the gateway proxy's routes on engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/agents/:agent_id/gateway/ws", s.serveWS)
	engine.Any("/agents/:agent_id/gateway/*path", s.servePath)
}

func parseAgentID(c *gin.Context) (pgtype.UUID, bool) {
	id, err := uuidFromString(c.Param("agent_id"))
	if err != nil {
		c.Writer.WriteHeader(http.StatusNotFound)
		return pgtype.UUID{}, false
	}
	return id, true
}

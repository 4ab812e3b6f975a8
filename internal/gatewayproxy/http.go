package gatewayproxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxRequestBody caps buffered request bodies forwarded through the HTTP
// path proxy. The path proxy (unlike the forward proxy's tunnels) buffers
// wholesale to rewrite the Authorization header and tally bandwidth, so an
// explicit cap is required.
const maxRequestBody = 10 * 1024 * 1024

// hopByHopRequestHeaders are stripped before forwarding upstream: host and
// cookie are meaningless off-tenant, authorization is overwritten with the
// gateway token, and connection/transfer-encoding are connection-scoped.
var hopByHopRequestHeaders = map[string]bool{
	"Host":              true,
	"Cookie":            true,
	"Authorization":     true,
	"Connection":        true,
	"Transfer-Encoding": true,
}

var hopByHopResponseHeaders = map[string]bool{
	"Transfer-Encoding": true,
	"Connection":        true,
}

// servePath handles any method on /agents/:agent_id/gateway/*path (except
// POST tools/invoke, which it refuses) and forwards the request to
// the on-VPS backend with the gateway token injected in place of the
// caller's own Authorization header.
func (s *Server) servePath(c *gin.Context) {
	agentID, ok := parseAgentID(c)
	if !ok {
		return
	}

	tgt, err := s.resolveTarget(c.Request.Context(), c.Request, agentID)
	if err != nil {
		writeError(c.Writer, err)
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")
	if c.Request.Method == http.MethodPost && path == "tools/invoke" {
		c.Writer.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(c.Writer, "tools/invoke is blocked through the gateway proxy")
		return
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody+1))
	if err != nil {
		http.Error(c.Writer, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(bodyBytes) > maxRequestBody {
		http.Error(c.Writer, "request body too large (max 10MB)", http.StatusBadRequest)
		return
	}

	upstreamURL := fmt.Sprintf("http://%s:%d/%s", tgt.vps.Address.String, gatewayPort, path)
	if c.Request.URL.RawQuery != "" {
		upstreamURL += "?" + c.Request.URL.RawQuery
	}

	upstreamReq, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, upstreamURL, strings.NewReader(string(bodyBytes)))
	if err != nil {
		http.Error(c.Writer, "internal error", http.StatusInternalServerError)
		return
	}
	for name, values := range c.Request.Header {
		if hopByHopRequestHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		for _, v := range values {
			upstreamReq.Header.Add(name, v)
		}
	}
	upstreamReq.Header.Set("Authorization", "Bearer "+tgt.agent.GatewayToken)

	resp, err := s.httpClient.Do(upstreamReq)
	if err != nil {
		slog.Warn("gateway upstream request failed", "agent_id", tgt.agent.ID, "error", err)
		http.Error(c.Writer, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		if hopByHopResponseHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	c.Writer.WriteHeader(resp.StatusCode)

	respBytes, _ := io.ReadAll(resp.Body)
	c.Writer.Write(respBytes)

	total := int64(len(bodyBytes) + len(respBytes))
	if total > 0 {
		if err := s.queries.AddBandwidth(context.Background(), tgt.vps.ID, total); err != nil {
			slog.Error("failed to flush gateway byte counts", "vps_id", tgt.vps.ID, "error", err)
		}
	}
}

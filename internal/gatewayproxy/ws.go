package gatewayproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// rpcEnvelope is only used to sniff the "method" field of a text frame; the
// original bytes are always forwarded or dropped verbatim, never
// re-marshaled (aside from the one handshake rewrite).
type rpcEnvelope struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// serveWS handles GET /agents/:agent_id/gateway/ws. It authenticates the
// caller, opens a second WebSocket to the on-VPS backend, rewrites the
// first client frame to carry the real gateway token, and then relays
// frames bidirectionally, filtering blocked RPC methods out of the
// client-to-backend direction.
func (s *Server) serveWS(c *gin.Context) {
	agentID, ok := parseAgentID(c)
	if !ok {
		return
	}

	tgt, err := s.resolveTarget(c.Request.Context(), c.Request, agentID)
	if err != nil {
		writeError(c.Writer, err)
		return
	}

	upstreamURL := fmt.Sprintf("ws://%s:%d/", tgt.vps.Address.String, gatewayPort)
	upstreamConn, _, err := websocket.DefaultDialer.Dial(upstreamURL, nil)
	if err != nil {
		slog.Warn("gateway upstream websocket dial failed", "agent_id", tgt.agent.ID, "error", err)
		http.Error(c.Writer, "upstream unreachable", http.StatusBadGateway)
		return
	}

	clientConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		upstreamConn.Close()
		slog.Warn("gateway websocket upgrade failed", "agent_id", tgt.agent.ID, "error", err)
		return
	}

	s.relayWS(clientConn, upstreamConn, tgt)
}

func (s *Server) relayWS(clientConn, upstreamConn *websocket.Conn, tgt target) {
	defer clientConn.Close()
	defer upstreamConn.Close()

	var bandwidth int64
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		s.relayUpstreamToClient(clientConn, upstreamConn, &bandwidth)
	}()
	go func() {
		defer func() { done <- struct{}{} }()
		s.relayClientToUpstream(clientConn, upstreamConn, tgt.agent.GatewayToken, &bandwidth)
	}()

	<-done
	clientConn.Close()
	upstreamConn.Close()
	<-done

	total := atomic.LoadInt64(&bandwidth)
	if total > 0 {
		if err := s.queries.AddBandwidth(context.Background(), tgt.vps.ID, total); err != nil {
			slog.Error("failed to flush gateway websocket byte counts", "vps_id", tgt.vps.ID, "error", err)
		}
	}
}

// relayUpstreamToClient forwards backend frames to the client unfiltered.
func (s *Server) relayUpstreamToClient(clientConn, upstreamConn *websocket.Conn, bandwidth *int64) {
	for {
		msgType, data, err := upstreamConn.ReadMessage()
		if err != nil {
			clientConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(1011, "upstream closed"))
			return
		}
		atomic.AddInt64(bandwidth, int64(len(data)))
		if err := clientConn.WriteMessage(msgType, data); err != nil {
			return
		}
	}
}

// relayClientToUpstream forwards client frames to the backend, rewriting
// the first text frame's handshake auth and filtering blocked RPC methods
// out of every frame after it.
func (s *Server) relayClientToUpstream(clientConn, upstreamConn *websocket.Conn, gatewayToken string, bandwidth *int64) {
	handshakeDone := false

	for {
		msgType, data, err := clientConn.ReadMessage()
		if err != nil {
			upstreamConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
		atomic.AddInt64(bandwidth, int64(len(data)))

		if msgType != websocket.TextMessage {
			if err := upstreamConn.WriteMessage(msgType, data); err != nil {
				return
			}
			continue
		}

		if !handshakeDone {
			rewritten, err := rewriteConnectFrame(data, gatewayToken)
			handshakeDone = true
			if err != nil {
				// Unparsable first frame: forward as-is, let the backend reject it.
				if err := upstreamConn.WriteMessage(msgType, data); err != nil {
					return
				}
				continue
			}
			if err := upstreamConn.WriteMessage(msgType, rewritten); err != nil {
				return
			}
			continue
		}

		var env rpcEnvelope
		if err := json.Unmarshal(data, &env); err == nil && env.Method != "" && isBlockedMethod(env.Method) {
			errFrame := blockedMethodResponse(env.ID, env.Method)
			if err := clientConn.WriteMessage(websocket.TextMessage, errFrame); err != nil {
				return
			}
			continue
		}

		if err := upstreamConn.WriteMessage(msgType, data); err != nil {
			return
		}
	}
}

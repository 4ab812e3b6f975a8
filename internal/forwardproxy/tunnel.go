package forwardproxy

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// handleConnect establishes a tunnel to the requested origin and relays
// bytes bidirectionally until either side closes. Byte counts from both
// directions are flushed as a single upsert after the tunnel ends.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request, vpsID pgtype.UUID) {
	target, err := net.DialTimeout("tcp", r.Host, 10*time.Second)
	if err != nil {
		slog.Warn("CONNECT target unreachable", "host", r.Host, "error", err)
		http.Error(w, "target unreachable", http.StatusBadGateway)
		return
	}
	defer target.Close()

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	client, _, err := hijacker.Hijack()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer client.Close()

	if _, err := client.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n")); err != nil {
		return
	}

	total := s.relay(client, target)
	if total > 0 {
		if err := s.queries.AddBandwidth(context.Background(), vpsID, total); err != nil {
			slog.Error("failed to flush proxy byte counts", "vps_id", vpsID, "error", err)
		}
	}
}

// relay performs a bidirectional byte-for-byte copy between client and
// target, returning the sum of bytes moved in both directions. As soon as
// either direction ends, both connections are closed to unblock the other
// copy — mirroring a select-on-first-completion rather than waiting for
// both sides to finish independently.
func (s *Server) relay(client, target net.Conn) int64 {
	var bytesOut, bytesIn int64
	done := make(chan struct{}, 2)

	go func() {
		n, _ := io.Copy(target, client)
		atomic.AddInt64(&bytesOut, n)
		done <- struct{}{}
	}()
	go func() {
		n, _ := io.Copy(client, target)
		atomic.AddInt64(&bytesIn, n)
		done <- struct{}{}
	}()

	<-done
	client.Close()
	target.Close()
	<-done

	return atomic.LoadInt64(&bytesOut) + atomic.LoadInt64(&bytesIn)
}

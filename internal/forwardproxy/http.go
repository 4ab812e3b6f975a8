package forwardproxy

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
)

// countingReader tallies bytes as they are read, so the request body's size
// is known without buffering it wholesale.
type countingReader struct {
	io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.n += int64(n)
	return n, err
}

// handlePlainHTTP forwards an absolute-form HTTP request to its origin,
// stripping Proxy-Authorization, and streams the response back without
// buffering either body wholesale.
func (s *Server) handlePlainHTTP(w http.ResponseWriter, r *http.Request, vpsID pgtype.UUID) {
	outReq := r.Clone(r.Context())
	outReq.RequestURI = ""
	outReq.Header.Del("Proxy-Authorization")

	reqBody := &countingReader{Reader: r.Body}
	outReq.Body = io.NopCloser(reqBody)

	resp, err := s.httpClient.Do(outReq)
	if err != nil {
		slog.Warn("plain HTTP forward failed", "uri", r.URL.String(), "error", err)
		http.Error(w, "target unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	respBody := &countingReader{Reader: resp.Body}
	io.Copy(w, respBody)

	total := reqBody.n + respBody.n
	if total > 0 {
		if err := s.queries.AddBandwidth(context.Background(), vpsID, total); err != nil {
			slog.Error("failed to flush proxy byte counts", "vps_id", vpsID, "error", err)
		}
	}
}

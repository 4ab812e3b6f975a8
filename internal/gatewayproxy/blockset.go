package gatewayproxy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// isBlockedMethod reports whether an on-VPS RPC method must never reach the
// backend through this proxy. Blocked methods would let a user reconfigure
// or restart the on-VPS agent out from under the platform's own policy.
func isBlockedMethod(method string) bool {
	return strings.HasPrefix(method, "config.") ||
		strings.HasPrefix(method, "exec.approvals.") ||
		method == "exec.approval.resolve" ||
		method == "update.run"
}

// blockedMethodResponse synthesizes a JSON-RPC "method not found" style
// error frame carrying the original request's id, so the client's pending
// call resolves instead of hanging.
func blockedMethodResponse(id json.RawMessage, method string) []byte {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	out, _ := json.Marshal(struct {
		ID    json.RawMessage `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{
		ID: id,
		Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}{
			Code:    -32601,
			Message: fmt.Sprintf("method '%s' is blocked", method),
		},
	})
	return out
}

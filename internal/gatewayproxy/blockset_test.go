package gatewayproxy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlockedMethod(t *testing.T) {
	cases := map[string]bool{
		"config.set":              true,
		"config.get":               true,
		"exec.approvals.list":      true,
		"exec.approval.resolve":    true,
		"update.run":               true,
		"connect":                  false,
		"exec.run":                 false,
		"exec.approval.something":  false,
		"tools.invoke":             false,
	}
	for method, want := range cases {
		assert.Equal(t, want, isBlockedMethod(method), method)
	}
}

func TestBlockedMethodResponse(t *testing.T) {
	resp := blockedMethodResponse(json.RawMessage(`42`), "config.set")

	var decoded struct {
		ID    json.RawMessage `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require := assert.New(t)
	require.NoError(json.Unmarshal(resp, &decoded))
	require.Equal(json.RawMessage(`42`), decoded.ID)
	require.Equal(-32601, decoded.Error.Code)
	require.Contains(decoded.Error.Message, "config.set")
}

func TestBlockedMethodResponseNilID(t *testing.T) {
	resp := blockedMethodResponse(nil, "update.run")
	var decoded map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(resp, &decoded))
	assert.JSONEq(t, "null", string(decoded["id"]))
}

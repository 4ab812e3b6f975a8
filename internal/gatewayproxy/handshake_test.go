package gatewayproxy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignNonce(t *testing.T) {
	sig1 := signNonce("abc", "token-a")
	sig2 := signNonce("abc", "token-a")
	sig3 := signNonce("abc", "token-b")

	assert.Equal(t, sig1, sig2)
	assert.NotEqual(t, sig1, sig3)
	assert.Len(t, sig1, 64) // hex-encoded SHA-256
}

func TestRewriteConnectFrameInjectsToken(t *testing.T) {
	frame := []byte(`{"type":"req","id":"1","method":"connect","params":{"auth":{"token":"browser-should-not-see-this"},"nonce":"n-123"}}`)

	out, err := rewriteConnectFrame(frame, "real-gateway-token")
	require.NoError(t, err)

	var decoded struct {
		Params struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
			Nonce       string `json:"nonce"`
			SignedNonce string `json:"signedNonce"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "real-gateway-token", decoded.Params.Auth.Token)
	assert.Equal(t, signNonce("n-123", "real-gateway-token"), decoded.Params.SignedNonce)
}

func TestRewriteConnectFrameWithoutAuthObject(t *testing.T) {
	frame := []byte(`{"method":"connect","params":{"nonce":"xyz"}}`)

	out, err := rewriteConnectFrame(frame, "tok")
	require.NoError(t, err)

	var decoded struct {
		Params struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
			SignedNonce string `json:"signedNonce"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "tok", decoded.Params.Auth.Token)
	assert.Equal(t, signNonce("xyz", "tok"), decoded.Params.SignedNonce)
}

func TestRewriteConnectFrameWithoutNonce(t *testing.T) {
	frame := []byte(`{"method":"connect","params":{"auth":{}}}`)

	out, err := rewriteConnectFrame(frame, "tok")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "signedNonce")
}

func TestRewriteConnectFrameMalformedJSON(t *testing.T) {
	_, err := rewriteConnectFrame([]byte("not json"), "tok")
	assert.Error(t, err)
}

func TestRewriteConnectFrameWithoutParams(t *testing.T) {
	frame := []byte(`{"method":"connect"}`)
	out, err := rewriteConnectFrame(frame, "tok")
	require.NoError(t, err)
	assert.Equal(t, frame, out)
}

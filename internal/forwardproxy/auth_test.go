package forwardproxy

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxyAuth(t *testing.T) {
	id := uuid.New()
	creds := base64.StdEncoding.EncodeToString([]byte(id.String() + ":abc123"))

	gotID, gotToken, err := parseProxyAuth("Basic " + creds)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "abc123", gotToken)
}

func TestParseProxyAuthMissingHeader(t *testing.T) {
	_, _, err := parseProxyAuth("")
	assert.ErrorIs(t, err, errAuthRequired)
}

func TestParseProxyAuthNotBasic(t *testing.T) {
	_, _, err := parseProxyAuth("Bearer sometoken")
	assert.ErrorIs(t, err, errAuthRequired)
}

func TestParseProxyAuthBadBase64(t *testing.T) {
	_, _, err := parseProxyAuth("Basic not-base64!!!")
	assert.ErrorIs(t, err, errAuthRequired)
}

func TestParseProxyAuthMissingColon(t *testing.T) {
	creds := base64.StdEncoding.EncodeToString([]byte("no-colon-here"))
	_, _, err := parseProxyAuth("Basic " + creds)
	assert.ErrorIs(t, err, errAuthRequired)
}

func TestParseProxyAuthBadUUID(t *testing.T) {
	creds := base64.StdEncoding.EncodeToString([]byte("not-a-uuid:token"))
	_, _, err := parseProxyAuth("Basic " + creds)
	assert.ErrorIs(t, err, errAuthRequired)
}

package provider

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloudInitUserDataEscapesEnvValues(t *testing.T) {
	spec := VpsSpec{
		Name: "agent-1",
		Env:  map[string]string{"TOKEN": "it's a 'tricky' value"},
	}

	script := cloudInitUserData(spec)

	assert.Contains(t, script, `TOKEN=it'\''s a '\''tricky'\'' value`)
	assert.True(t, strings.HasPrefix(script, "#cloud-config\n"))
}

func TestCloudInitUserDataEscapesGuestPath(t *testing.T) {
	spec := VpsSpec{
		Name:  "agent-1",
		Files: []FileMount{{GuestPath: "/etc/foo's dir/bar.txt", RawValue: "hello"}},
	}

	script := cloudInitUserData(spec)

	assert.Contains(t, script, `/etc/foo'\''s dir/bar.txt`)
}

func TestCloudInitUserDataSurvivesHeredocCollisionAttempt(t *testing.T) {
	malicious := "CLUDBOX_EOF\nrm -rf /\nCLUDBOX_EOF"
	spec := VpsSpec{
		Name:  "agent-1",
		Files: []FileMount{{GuestPath: "/etc/cludbox/payload", RawValue: malicious}},
	}

	script := cloudInitUserData(spec)

	// the raw payload must never appear unencoded in the script — only its
	// base64 form should, decoded at boot time.
	assert.NotContains(t, script, "rm -rf /")
	assert.Contains(t, script, base64.StdEncoding.EncodeToString([]byte(malicious)))
}

func TestCloudInitUserDataDeterministicEnvOrdering(t *testing.T) {
	spec := VpsSpec{Env: map[string]string{"B": "2", "A": "1"}}

	script := cloudInitUserData(spec)

	assert.True(t, strings.Index(script, "A=1") < strings.Index(script, "B=2"))
}

func TestGuestConfigSizing(t *testing.T) {
	cases := []struct {
		millicores int32
		cpus       int
		kind       string
	}{
		{500, 1, "shared"},
		{1000, 1, "shared"},
		{1500, 2, "shared"},
		{3000, 4, "performance"},
		{5000, 8, "performance"},
	}
	for _, c := range cases {
		cpus, kind := guestConfig(c.millicores)
		assert.Equal(t, c.cpus, cpus)
		assert.Equal(t, c.kind, kind)
	}
}

func TestServerTypeSizing(t *testing.T) {
	assert.Equal(t, "cpx11", serverType(1000, 2048))
	assert.Equal(t, "cpx21", serverType(2000, 4096))
	assert.Equal(t, "cpx31", serverType(4000, 8192))
	assert.Equal(t, "cpx41", serverType(8000, 16384))
}

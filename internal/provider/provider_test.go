package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeteredResourcesFor(t *testing.T) {
	assert.Equal(t, MeteredBandwidthOnly, MeteredResourcesFor(ProviderMachine))
	assert.Equal(t, MeteredAll, MeteredResourcesFor(ProviderClassicalVM))
	assert.Equal(t, MeteredAll, MeteredResourcesFor("unknown-provider"))
}

func TestBuildRegistryEmptyWithoutEnv(t *testing.T) {
	t.Setenv("MACHINE_API_TOKEN", "")
	t.Setenv("CLASSICALVM_API_TOKEN", "")

	_, err := BuildRegistry()
	assert.ErrorIs(t, err, ErrEmptyRegistry)
}

func TestBuildRegistryWithOneProvider(t *testing.T) {
	t.Setenv("MACHINE_API_TOKEN", "test-token")
	t.Setenv("CLASSICALVM_API_TOKEN", "")

	reg, err := BuildRegistry()
	assert.NoError(t, err)
	assert.False(t, reg.IsEmpty())

	p, ok := reg.Get(ProviderMachine)
	assert.True(t, ok)
	assert.Equal(t, ProviderMachine, p.Name())

	_, ok = reg.Get(ProviderClassicalVM)
	assert.False(t, ok)
}

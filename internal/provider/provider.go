// Package provider abstracts VPS lifecycle management over concrete cloud
// backends, so the rest of the core only ever talks to a Provider by its
// registry tag.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrMissingEnv      = errors.New("missing required environment variable")
	ErrEmptyRegistry   = errors.New("no VPS providers configured")
	ErrUnknownProvider = errors.New("unknown provider")
)

// VpsState is the provider-reported lifecycle state, normalized across
// backends. It is distinct from sqlc.VpsState, which is the core's own
// persisted state machine; a provider's Starting has no direct core
// equivalent and collapses into Provisioning there.
type VpsState string

const (
	VpsStateStarting   VpsState = "starting"
	VpsStateRunning    VpsState = "running"
	VpsStateStopped    VpsState = "stopped"
	VpsStateDestroyed  VpsState = "destroyed"
	VpsStateUnknown    VpsState = "unknown"
)

// FileMount is a file to inject into the VPS at creation time.
type FileMount struct {
	GuestPath string
	RawValue  string
}

// VpsSpec specifies a VPS to create.
type VpsSpec struct {
	Name          string
	Image         string
	Location      string
	CpuMillicores int32
	MemoryMb      int32
	Env           map[string]string
	Files         []FileMount
}

// VpsInfo is the provider's view of a VPS's identity and status.
type VpsInfo struct {
	ID      string
	State   VpsState
	Address string
}

// MeteredResources describes which resource axes a provider meters on a
// usage basis. Fixed-allocation providers only meter bandwidth — the VPS
// gets dedicated CPU/memory outside the core's billing. Elastic providers
// meter all three.
type MeteredResources struct {
	Bandwidth bool
	CPU       bool
	Memory    bool
}

var (
	MeteredAll            = MeteredResources{Bandwidth: true, CPU: true, Memory: true}
	MeteredBandwidthOnly  = MeteredResources{Bandwidth: true, CPU: false, Memory: false}
)

// Provider is the backend-agnostic interface for managing agent VPSes. Each
// backend owns its own configuration, loaded from the environment at
// construction.
type Provider interface {
	CreateVps(ctx context.Context, spec VpsSpec) (VpsInfo, error)
	StartVps(ctx context.Context, id string) error
	StopVps(ctx context.Context, id string) error
	DestroyVps(ctx context.Context, id string) error
	GetVps(ctx context.Context, id string) (VpsInfo, error)
	Name() string
	MeteredResources() MeteredResources
}

// Registry holds all providers whose required configuration was present at
// boot. It is immutable after construction; lookups are lock-free.
type Registry struct {
	providers map[string]Provider
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

func (r *Registry) IsEmpty() bool {
	return len(r.providers) == 0
}

// MeteredResourcesFor returns the metering policy for a provider tag
// without requiring a live Provider instance. This is what the forward
// proxy and monitor use, since they only ever hold vps.provider (a
// string), never a constructed Registry.
//
// Unknown providers default to MeteredAll — over-enforce rather than
// under-enforce when a provider tag can't be classified.
func MeteredResourcesFor(name string) MeteredResources {
	switch name {
	case ProviderMachine:
		return MeteredBandwidthOnly
	case ProviderClassicalVM:
		return MeteredAll
	default:
		slog.Warn("unknown provider tag, defaulting to full metering", "provider", name)
		return MeteredAll
	}
}

// BuildRegistry constructs every provider whose required environment
// variables are present, skipping the rest with a debug log line. It
// errors only if no provider could be built at all.
func BuildRegistry() (*Registry, error) {
	providers := make(map[string]Provider)

	if p, err := NewMachineProviderFromEnv(); err == nil {
		slog.Info("registered machine-style VPS provider")
		providers[p.Name()] = p
	} else {
		slog.Debug("skipping machine-style provider", "error", err)
	}

	if p, err := NewClassicalVMProviderFromEnv(); err == nil {
		slog.Info("registered classical-VM VPS provider")
		providers[p.Name()] = p
	} else {
		slog.Debug("skipping classical-VM provider", "error", err)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: set MACHINE_API_TOKEN and/or CLASSICALVM_API_TOKEN", ErrEmptyRegistry)
	}

	return &Registry{providers: providers}, nil
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const ProviderMachine = "machine"

// MachineProvider drives a Fly Machines-style JSON REST API: one VM per
// agent, fixed CPU/memory allocation, billed by the core on bandwidth
// alone.
type MachineProvider struct {
	client  *http.Client
	baseURL string
	token   string
	app     string
	region  string
}

// NewMachineProviderFromEnv builds a MachineProvider from MACHINE_API_TOKEN
// (required), MACHINE_APP_NAME, MACHINE_REGION, and MACHINE_API_BASE_URL.
func NewMachineProviderFromEnv() (*MachineProvider, error) {
	token := os.Getenv("MACHINE_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: MACHINE_API_TOKEN", ErrMissingEnv)
	}

	app := os.Getenv("MACHINE_APP_NAME")
	if app == "" {
		app = "cludbox-agents"
	}
	region := os.Getenv("MACHINE_REGION")
	if region == "" {
		region = "iad"
	}
	baseURL := os.Getenv("MACHINE_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.machines.dev/v1"
	}

	return &MachineProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		token:   token,
		app:     app,
		region:  region,
	}, nil
}

func (p *MachineProvider) Name() string { return ProviderMachine }

func (p *MachineProvider) MeteredResources() MeteredResources { return MeteredBandwidthOnly }

// guestConfig maps CPU millicores to a discrete machine size: the provider
// exposes only a handful of guest shapes, not arbitrary cores.
func guestConfig(cpuMillicores int32) (cpus int, kind string) {
	switch {
	case cpuMillicores <= 1000:
		return 1, "shared"
	case cpuMillicores <= 2000:
		return 2, "shared"
	case cpuMillicores <= 4000:
		return 4, "performance"
	default:
		return 8, "performance"
	}
}

type machineConfig struct {
	Image  string            `json:"image"`
	Env    map[string]string `json:"env,omitempty"`
	Guest  guestPayload      `json:"guest"`
	Files  []machineFile     `json:"files,omitempty"`
}

type guestPayload struct {
	CPUs     int    `json:"cpus"`
	CPUKind  string `json:"cpu_kind"`
	MemoryMb int32  `json:"memory_mb"`
}

type machineFile struct {
	GuestPath string `json:"guest_path"`
	RawValue  string `json:"raw_value"`
}

type createMachineRequest struct {
	Name   string        `json:"name"`
	Region string        `json:"region"`
	Config machineConfig `json:"config"`
}

type machineResponse struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	PrivateIP string `json:"private_ip"`
}

func parseMachineState(state string) VpsState {
	switch state {
	case "started":
		return VpsStateRunning
	case "starting":
		return VpsStateStarting
	case "stopped":
		return VpsStateStopped
	case "destroyed", "destroying":
		return VpsStateDestroyed
	default:
		return VpsStateUnknown
	}
}

func (p *MachineProvider) machineAddress(m machineResponse) string {
	if m.PrivateIP != "" {
		return m.PrivateIP
	}
	return fmt.Sprintf("%s.vm.%s.internal", m.ID, p.app)
}

func (p *MachineProvider) CreateVps(ctx context.Context, spec VpsSpec) (VpsInfo, error) {
	image := spec.Image
	if image == "" {
		image = "ubuntu:24.04"
	}
	cpus, kind := guestConfig(spec.CpuMillicores)

	files := make([]machineFile, 0, len(spec.Files))
	for _, f := range spec.Files {
		files = append(files, machineFile{GuestPath: f.GuestPath, RawValue: f.RawValue})
	}

	body := createMachineRequest{
		Name:   spec.Name,
		Region: p.region,
		Config: machineConfig{
			Image: image,
			Env:   spec.Env,
			Guest: guestPayload{CPUs: cpus, CPUKind: kind, MemoryMb: spec.MemoryMb},
			Files: files,
		},
	}

	var m machineResponse
	if err := p.do(ctx, http.MethodPost, fmt.Sprintf("/apps/%s/machines", p.app), body, &m); err != nil {
		return VpsInfo{}, fmt.Errorf("create machine: %w", err)
	}

	return VpsInfo{ID: m.ID, State: parseMachineState(m.State), Address: p.machineAddress(m)}, nil
}

func (p *MachineProvider) StartVps(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPost, fmt.Sprintf("/apps/%s/machines/%s/start", p.app, id), nil, nil)
}

func (p *MachineProvider) StopVps(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPost, fmt.Sprintf("/apps/%s/machines/%s/stop", p.app, id), nil, nil)
}

func (p *MachineProvider) DestroyVps(ctx context.Context, id string) error {
	err := p.do(ctx, http.MethodDelete, fmt.Sprintf("/apps/%s/machines/%s", p.app, id), nil, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (p *MachineProvider) GetVps(ctx context.Context, id string) (VpsInfo, error) {
	var m machineResponse
	if err := p.do(ctx, http.MethodGet, fmt.Sprintf("/apps/%s/machines/%s", p.app, id), nil, &m); err != nil {
		return VpsInfo{}, fmt.Errorf("get machine: %w", err)
	}
	return VpsInfo{ID: m.ID, State: parseMachineState(m.State), Address: p.machineAddress(m)}, nil
}

func (p *MachineProvider) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("machine api: unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

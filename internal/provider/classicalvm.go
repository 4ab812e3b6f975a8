package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const ProviderClassicalVM = "classicalvm"

// ClassicalVMProvider drives a Hetzner-style server REST API: one
// dedicated-but-resizable VM per agent, provisioned with cloud-init and
// billed elastically by the core on bandwidth, CPU, and memory.
type ClassicalVMProvider struct {
	client      *http.Client
	baseURL     string
	token       string
	location    string
	networkID   int64
	firewallID  int64
	sshKeyNames []string
}

// NewClassicalVMProviderFromEnv builds a ClassicalVMProvider from
// CLASSICALVM_API_TOKEN (required), CLASSICALVM_LOCATION,
// CLASSICALVM_NETWORK_ID, CLASSICALVM_FIREWALL_ID,
// CLASSICALVM_SSH_KEY_NAMES (comma-separated), and CLASSICALVM_API_BASE_URL.
func NewClassicalVMProviderFromEnv() (*ClassicalVMProvider, error) {
	token := os.Getenv("CLASSICALVM_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: CLASSICALVM_API_TOKEN", ErrMissingEnv)
	}

	location := os.Getenv("CLASSICALVM_LOCATION")
	if location == "" {
		location = "fsn1"
	}
	baseURL := os.Getenv("CLASSICALVM_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.hetzner.cloud/v1"
	}

	var networkID, firewallID int64
	if v := os.Getenv("CLASSICALVM_NETWORK_ID"); v != "" {
		networkID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := os.Getenv("CLASSICALVM_FIREWALL_ID"); v != "" {
		firewallID, _ = strconv.ParseInt(v, 10, 64)
	}

	var sshKeyNames []string
	for _, name := range strings.Split(os.Getenv("CLASSICALVM_SSH_KEY_NAMES"), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			sshKeyNames = append(sshKeyNames, name)
		}
	}

	return &ClassicalVMProvider{
		client:      &http.Client{Timeout: 15 * time.Second},
		baseURL:     baseURL,
		token:       token,
		location:    location,
		networkID:   networkID,
		firewallID:  firewallID,
		sshKeyNames: sshKeyNames,
	}, nil
}

func (p *ClassicalVMProvider) Name() string { return ProviderClassicalVM }

// MeteredResources is ALL, not BandwidthOnly: unlike the machine provider,
// capacity here is resized per VpsConfig rather than fixed, so CPU and
// memory are billed the same way bandwidth is.
func (p *ClassicalVMProvider) MeteredResources() MeteredResources { return MeteredAll }

// serverType maps CPU/memory requirements to a discrete server SKU.
func serverType(cpuMillicores, memoryMb int32) string {
	switch {
	case cpuMillicores <= 1000 && memoryMb <= 2048:
		return "cpx11"
	case cpuMillicores <= 2000 && memoryMb <= 4096:
		return "cpx21"
	case cpuMillicores <= 4000 && memoryMb <= 8192:
		return "cpx31"
	default:
		return "cpx41"
	}
}

type createServerRequest struct {
	Name            string   `json:"name"`
	ServerType      string   `json:"server_type"`
	Image           string   `json:"image"`
	Location        string   `json:"location,omitempty"`
	UserData        string   `json:"user_data,omitempty"`
	Networks        []int64  `json:"networks,omitempty"`
	Firewalls       []int64  `json:"firewalls,omitempty"`
	SSHKeys         []string `json:"ssh_keys,omitempty"`
	StartAfterCreate bool    `json:"start_after_create"`
}

type serverResponse struct {
	Server struct {
		ID         int64  `json:"id"`
		Status     string `json:"status"`
		PrivateNet []struct {
			IP string `json:"ip"`
		} `json:"private_net"`
	} `json:"server"`
}

func parseServerStatus(status string) VpsState {
	switch status {
	case "running":
		return VpsStateRunning
	case "initializing", "starting":
		return VpsStateStarting
	case "off", "stopping":
		return VpsStateStopped
	case "deleting":
		return VpsStateDestroyed
	default:
		return VpsStateUnknown
	}
}

func privateIP(resp serverResponse) string {
	if len(resp.Server.PrivateNet) == 0 {
		return ""
	}
	return resp.Server.PrivateNet[0].IP
}

func (p *ClassicalVMProvider) CreateVps(ctx context.Context, spec VpsSpec) (VpsInfo, error) {
	req := createServerRequest{
		Name:             spec.Name,
		ServerType:       serverType(spec.CpuMillicores, spec.MemoryMb),
		Image:            spec.Image,
		Location:         p.location,
		UserData:         cloudInitUserData(spec),
		SSHKeys:          p.sshKeyNames,
		StartAfterCreate: true,
	}
	if p.networkID != 0 {
		req.Networks = []int64{p.networkID}
	}
	if p.firewallID != 0 {
		req.Firewalls = []int64{p.firewallID}
	}

	var resp serverResponse
	if err := p.do(ctx, http.MethodPost, "/servers", req, &resp); err != nil {
		return VpsInfo{}, fmt.Errorf("create server: %w", err)
	}

	return VpsInfo{
		ID:      strconv.FormatInt(resp.Server.ID, 10),
		State:   parseServerStatus(resp.Server.Status),
		Address: privateIP(resp),
	}, nil
}

func (p *ClassicalVMProvider) StartVps(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%s/actions/poweron", id), nil, nil)
}

func (p *ClassicalVMProvider) StopVps(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%s/actions/shutdown", id), nil, nil)
}

func (p *ClassicalVMProvider) DestroyVps(ctx context.Context, id string) error {
	err := p.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%s", id), nil, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (p *ClassicalVMProvider) GetVps(ctx context.Context, id string) (VpsInfo, error) {
	var resp serverResponse
	if err := p.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%s", id), nil, &resp); err != nil {
		return VpsInfo{}, fmt.Errorf("get server: %w", err)
	}
	return VpsInfo{
		ID:      strconv.FormatInt(resp.Server.ID, 10),
		State:   parseServerStatus(resp.Server.Status),
		Address: privateIP(resp),
	}, nil
}

func (p *ClassicalVMProvider) do(ctx context.Context, method, path string, body, out any) error {
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
		return fmt.Errorf("classical-vm api: unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

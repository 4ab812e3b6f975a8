package sqlc

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type VpsState string

const (
	VpsStateProvisioning VpsState = "provisioning"
	VpsStateRunning      VpsState = "running"
	VpsStateStopped      VpsState = "stopped"
	VpsStateDestroyed    VpsState = "destroyed"
)

type Plan struct {
	ID                                 pgtype.UUID
	Name                               string
	MaxAgents                         int32
	MaxVpses                          int32
	MaxBandwidthBytes                 int64
	MaxStorageBytes                   int64
	MaxCpuMs                          int64
	MaxMemoryMbSeconds                int64
	OverageBandwidthCostPerGbCents    int64
	OverageCpuCostPerHourCents        int64
	OverageMemoryCostPerGbHourCents   int64
	CreatedAt                         pgtype.Timestamptz
	UpdatedAt                         pgtype.Timestamptz
}

type VpsConfig struct {
	ID            pgtype.UUID
	Name          string
	Provider      string
	Image         string
	CpuMillicores int32
	MemoryMb      int32
	DiskGb        int32
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type User struct {
	ID            pgtype.UUID
	Email         string
	Name          pgtype.Text
	PlanID        pgtype.UUID
	EmailVerified pgtype.Timestamptz
	Image         pgtype.Text
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type Session struct {
	ID           pgtype.UUID
	SessionToken string
	UserID       pgtype.UUID
	Expires      pgtype.Timestamptz
}

type Vps struct {
	ID                  pgtype.UUID
	UserID              pgtype.UUID
	VpsConfigID         pgtype.UUID
	Name                string
	Provider            string
	ProviderVmID        pgtype.Text
	Address             pgtype.Text
	State               VpsState
	StorageUsedBytes    int64
	CpuUsedMs           pgtype.Int8
	MemoryUsedMbSeconds pgtype.Int8
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}

type Agent struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	VpsID        pgtype.UUID
	Name         string
	GatewayToken string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type VpsUsagePeriod struct {
	VpsID               pgtype.UUID
	PeriodStart         pgtype.Date
	BandwidthBytes      int64
	CpuUsedMs           int64
	MemoryUsedMbSeconds int64
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}

type OverageBudget struct {
	UserID      pgtype.UUID
	PeriodStart pgtype.Date
	BudgetCents int64
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type AgentChannel struct {
	ID             pgtype.UUID
	AgentID        pgtype.UUID
	ChannelKind    string
	Credentials    []byte
	Enabled        bool
	WebhookSecret  string
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

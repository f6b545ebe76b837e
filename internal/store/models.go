package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is a human operator account.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    *time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at"`
}

// Session is a logged-in browser session. Multiple sessions per user are
// allowed; expired rows are filtered out at lookup time, never returned.
type Session struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"-"`
	UserAgent *string    `db:"user_agent" json:"user_agent"`
	IPAddress *string    `db:"ip_address" json:"ip_address"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt *time.Time `db:"created_at" json:"created_at"`
}

// Client is a monitored server identity. The token is the agent's credential
// and is immutable after registration.
type Client struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Token            string     `db:"token" json:"-"`
	Name             string     `db:"name" json:"name"`
	CpuName          string     `db:"cpu_name" json:"cpu_name"`
	Arch             string     `db:"arch" json:"arch"`
	CpuCores         int32      `db:"cpu_cores" json:"cpu_cores"`
	OS               string     `db:"os" json:"os"`
	KernelVersion    string     `db:"kernel_version" json:"kernel_version"`
	GpuName          string     `db:"gpu_name" json:"gpu_name"`
	Virtualization   string     `db:"virtualization" json:"virtualization"`
	IPv4             *string    `db:"ipv4" json:"ipv4"`
	IPv6             *string    `db:"ipv6" json:"ipv6"`
	Region           string     `db:"region" json:"region"`
	Remark           string     `db:"remark" json:"remark"`
	PublicRemark     string     `db:"public_remark" json:"public_remark"`
	MemTotal         int64      `db:"mem_total" json:"mem_total"`
	SwapTotal        int64      `db:"swap_total" json:"swap_total"`
	DiskTotal        int64      `db:"disk_total" json:"disk_total"`
	Version          string     `db:"version" json:"version"`
	Weight           int32      `db:"weight" json:"weight"`
	GroupName        string     `db:"group_name" json:"group_name"`
	Tags             string     `db:"tags" json:"tags"`
	Hidden           bool       `db:"hidden" json:"hidden"`
	TrafficLimit     int64      `db:"traffic_limit" json:"traffic_limit"`
	TrafficLimitType string     `db:"traffic_limit_type" json:"traffic_limit_type"`
	Online           bool       `db:"online" json:"online"`
	LastSeenAt       *time.Time `db:"last_seen_at" json:"last_seen_at"`
	CreatedAt        *time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at"`
}

// Record is one stored measurement sample. Rows are insert-only.
type Record struct {
	ID             int64      `db:"id" json:"id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	Time           *time.Time `db:"time" json:"time"`
	Cpu            float32    `db:"cpu" json:"cpu"`
	Gpu            float32    `db:"gpu" json:"gpu"`
	Ram            int64      `db:"ram" json:"ram"`
	RamTotal       int64      `db:"ram_total" json:"ram_total"`
	Swap           int64      `db:"swap" json:"swap"`
	SwapTotal      int64      `db:"swap_total" json:"swap_total"`
	Load           float32    `db:"load" json:"load"`
	Temp           float32    `db:"temp" json:"temp"`
	Disk           int64      `db:"disk" json:"disk"`
	DiskTotal      int64      `db:"disk_total" json:"disk_total"`
	NetIn          int64      `db:"net_in" json:"net_in"`
	NetOut         int64      `db:"net_out" json:"net_out"`
	NetTotalUp     int64      `db:"net_total_up" json:"net_total_up"`
	NetTotalDown   int64      `db:"net_total_down" json:"net_total_down"`
	Process        int32      `db:"process" json:"process"`
	Connections    int32      `db:"connections" json:"connections"`
	ConnectionsUdp int32      `db:"connections_udp" json:"connections_udp"`
	Uptime         int64      `db:"uptime" json:"uptime"`
}

// RecordInput is one measurement sample as reported by an agent. Optional
// gauges default to zero; no range validation happens at this layer.
type RecordInput struct {
	Cpu            float32 `json:"cpu"`
	Gpu            float32 `json:"gpu"`
	Ram            int64   `json:"ram"`
	RamTotal       int64   `json:"ram_total"`
	Swap           int64   `json:"swap"`
	SwapTotal      int64   `json:"swap_total"`
	Load           float32 `json:"load"`
	Temp           float32 `json:"temp"`
	Disk           int64   `json:"disk"`
	DiskTotal      int64   `json:"disk_total"`
	NetIn          int64   `json:"net_in"`
	NetOut         int64   `json:"net_out"`
	NetTotalUp     int64   `json:"net_total_up"`
	NetTotalDown   int64   `json:"net_total_down"`
	Process        int32   `json:"process"`
	Connections    int32   `json:"connections"`
	ConnectionsUdp int32   `json:"connections_udp"`
	Uptime         int64   `json:"uptime"`
}

// Notification is a configured notification provider.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Provider  string          `db:"provider" json:"provider"`
	Config    json.RawMessage `db:"config" json:"config"`
	Enabled   bool            `db:"enabled" json:"enabled"`
	CreatedAt *time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time      `db:"updated_at" json:"updated_at"`
}

// OfflineNotification binds a client to a notification provider that fires
// when the client drops offline.
type OfflineNotification struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ClientID         uuid.UUID  `db:"client_id" json:"client_id"`
	NotificationID   *uuid.UUID `db:"notification_id" json:"notification_id"`
	Enabled          bool       `db:"enabled" json:"enabled"`
	ThresholdSeconds int32      `db:"threshold_seconds" json:"threshold_seconds"`
	CreatedAt        *time.Time `db:"created_at" json:"created_at"`
}

// PingTask is a scheduled reachability probe.
type PingTask struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Target          string     `db:"target" json:"target"`
	IntervalSeconds int32      `db:"interval_seconds" json:"interval_seconds"`
	TimeoutSeconds  int32      `db:"timeout_seconds" json:"timeout_seconds"`
	Enabled         bool       `db:"enabled" json:"enabled"`
	CreatedAt       *time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

// PingRecord is one probe outcome.
type PingRecord struct {
	ID        int64      `db:"id" json:"id"`
	TaskID    uuid.UUID  `db:"task_id" json:"task_id"`
	ClientID  *uuid.UUID `db:"client_id" json:"client_id"`
	Time      *time.Time `db:"time" json:"time"`
	LatencyMs *float32   `db:"latency_ms" json:"latency_ms"`
	Success   bool       `db:"success" json:"success"`
}

// Setting is one key-value settings row.
type Setting struct {
	Key       string          `db:"key" json:"key"`
	Value     json.RawMessage `db:"value" json:"value"`
	UpdatedAt *time.Time      `db:"updated_at" json:"updated_at"`
}

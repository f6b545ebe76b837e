package dto

import (
	"time"

	"github.com/vanmoi/vanmoi/internal/store"
)

// ClientPublic is the field subset of a client that anonymous dashboard
// callers may see. Token and internal remark never leave the server.
type ClientPublic struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	CpuName      string     `json:"cpu_name"`
	Arch         string     `json:"arch"`
	CpuCores     int32      `json:"cpu_cores"`
	OS           string     `json:"os"`
	Region       string     `json:"region"`
	PublicRemark string     `json:"public_remark"`
	MemTotal     int64      `json:"mem_total"`
	DiskTotal    int64      `json:"disk_total"`
	GroupName    string     `json:"group_name"`
	Online       bool       `json:"online"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
}

func NewClientPublic(c store.Client) ClientPublic {
	return ClientPublic{
		ID:           c.ID.String(),
		Name:         c.Name,
		CpuName:      c.CpuName,
		Arch:         c.Arch,
		CpuCores:     c.CpuCores,
		OS:           c.OS,
		Region:       c.Region,
		PublicRemark: c.PublicRemark,
		MemTotal:     c.MemTotal,
		DiskTotal:    c.DiskTotal,
		GroupName:    c.GroupName,
		Online:       c.Online,
		LastSeenAt:   c.LastSeenAt,
	}
}

// ClientStatus is the latest sample summary shown next to an online client.
type ClientStatus struct {
	Cpu       float32 `json:"cpu"`
	Ram       int64   `json:"ram"`
	RamTotal  int64   `json:"ram_total"`
	Disk      int64   `json:"disk"`
	DiskTotal int64   `json:"disk_total"`
	NetIn     int64   `json:"net_in"`
	NetOut    int64   `json:"net_out"`
	Load      float32 `json:"load"`
	Uptime    int64   `json:"uptime"`
}

type ClientWithStatus struct {
	ClientPublic
	Status *ClientStatus `json:"status,omitempty"`
}

type ClientsResponse struct {
	Clients []ClientWithStatus `json:"clients"`
}

type NodeInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Online bool   `json:"online"`
}

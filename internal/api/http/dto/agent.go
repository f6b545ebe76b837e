package dto

type RegisterRequest struct {
	Name string `json:"name"`
}

type RegisterResponse struct {
	UUID  string `json:"uuid"`
	Token string `json:"token"`
}

type BasicInfoRequest struct {
	CpuName        string  `json:"cpu_name"`
	Arch           string  `json:"arch"`
	CpuCores       int32   `json:"cpu_cores"`
	OS             string  `json:"os"`
	KernelVersion  string  `json:"kernel_version"`
	GpuName        string  `json:"gpu_name"`
	Virtualization string  `json:"virtualization"`
	MemTotal       int64   `json:"mem_total"`
	SwapTotal      int64   `json:"swap_total"`
	DiskTotal      int64   `json:"disk_total"`
	Version        string  `json:"version"`
	IPv4           *string `json:"ipv4"`
	IPv6           *string `json:"ipv6"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

var StatusOK = StatusResponse{Status: "ok"}

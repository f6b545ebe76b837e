// Package agent implements the monitoring agent that runs on each measured
// server: hardware inventory collection, sampling, and the reporting loop
// back to the aggregation server.
package agent

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/vanmoi/vanmoi/internal/api/http/dto"
	"github.com/vanmoi/vanmoi/internal/store"
)

// Collector reads system state. It keeps the previous network counters so
// consecutive samples carry per-second rates instead of raw totals.
type Collector struct {
	lastNet  *gnet.IOCountersStat
	lastTime time.Time
}

func NewCollector() *Collector {
	return &Collector{}
}

// BasicInfo gathers the slow-changing hardware inventory. Individual probe
// failures leave the corresponding field empty rather than failing the whole
// report.
func (c *Collector) BasicInfo(version string) dto.BasicInfoRequest {
	info := dto.BasicInfoRequest{Version: version}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CpuName = cpus[0].ModelName
	}
	if cores, err := cpu.Counts(true); err == nil {
		info.CpuCores = int32(cores)
	}
	if hostInfo, err := host.Info(); err == nil {
		info.Arch = hostInfo.KernelArch
		info.OS = hostInfo.Platform + " " + hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
		info.Virtualization = hostInfo.VirtualizationSystem
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		info.MemTotal = int64(memStat.Total)
	}
	if swapStat, err := mem.SwapMemory(); err == nil {
		info.SwapTotal = int64(swapStat.Total)
	}
	if diskStat, err := disk.Usage("/"); err == nil {
		info.DiskTotal = int64(diskStat.Total)
	}

	return info
}

// Sample takes one measurement. Gauges that cannot be read stay zero.
func (c *Collector) Sample() store.RecordInput {
	var rec store.RecordInput

	if cpuPercents, err := cpu.Percent(0, false); err == nil && len(cpuPercents) > 0 {
		rec.Cpu = float32(cpuPercents[0])
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		rec.Ram = int64(memStat.Used)
		rec.RamTotal = int64(memStat.Total)
	}
	if swapStat, err := mem.SwapMemory(); err == nil {
		rec.Swap = int64(swapStat.Used)
		rec.SwapTotal = int64(swapStat.Total)
	}
	if loadStat, err := load.Avg(); err == nil {
		rec.Load = float32(loadStat.Load1)
	}
	if diskStat, err := disk.Usage("/"); err == nil {
		rec.Disk = int64(diskStat.Used)
		rec.DiskTotal = int64(diskStat.Total)
	}
	if hostInfo, err := host.Info(); err == nil {
		rec.Uptime = int64(hostInfo.Uptime)
		rec.Process = int32(hostInfo.Procs)
	}
	if conns, err := gnet.Connections("tcp"); err == nil {
		rec.Connections = int32(len(conns))
	}
	if conns, err := gnet.Connections("udp"); err == nil {
		rec.ConnectionsUdp = int32(len(conns))
	}

	if netStats, err := gnet.IOCounters(false); err == nil && len(netStats) > 0 {
		now := time.Now()
		current := netStats[0]
		elapsed := now.Sub(c.lastTime).Seconds()

		if c.lastNet != nil && elapsed > 0 {
			rec.NetIn = int64(float64(current.BytesRecv-c.lastNet.BytesRecv) / elapsed)
			rec.NetOut = int64(float64(current.BytesSent-c.lastNet.BytesSent) / elapsed)
		}
		rec.NetTotalDown = int64(current.BytesRecv)
		rec.NetTotalUp = int64(current.BytesSent)

		c.lastNet = &current
		c.lastTime = now
	}

	return rec
}

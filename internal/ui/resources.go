package ui

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceStats holds host and supervised process resource information
type ResourceStats struct {
	CPUPercent float64
	MemPercent float64
	CPUTemp    float64 // in Celsius, -1 if unavailable

	// Supervised process tree; zero when nothing is running.
	ProcCPU   float64
	ProcRSS   uint64
	ProcCount int
}

// GetResourceStats fetches host statistics and, when pid is positive, the
// CPU and memory used by pid and its descendants.
func GetResourceStats(pid int32) ResourceStats {
	stats := ResourceStats{CPUTemp: -1}

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		stats.CPUPercent = cpuPercent[0]
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		stats.MemPercent = memInfo.UsedPercent
	}
	stats.CPUTemp = getCPUTemperature()

	if pid > 0 {
		stats.ProcCPU, stats.ProcRSS, stats.ProcCount = processTreeStats(pid)
	}
	return stats
}

func processTreeStats(pid int32) (cpuPercent float64, rss uint64, count int) {
	root, err := process.NewProcess(pid)
	if err != nil {
		return 0, 0, 0
	}

	queue := []*process.Process{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		count++

		if c, err := p.CPUPercent(); err == nil {
			cpuPercent += c
		}
		if m, err := p.MemoryInfo(); err == nil && m != nil {
			rss += m.RSS
		}
		if children, err := p.Children(); err == nil {
			queue = append(queue, children...)
		}
	}
	return cpuPercent, rss, count
}

// getCPUTemperature attempts to get CPU temperature
// This is platform-specific and may not work on all systems
func getCPUTemperature() float64 {
	temps, err := host.SensorsTemperatures()
	if err != nil {
		return -1
	}

	for _, temp := range temps {
		key := strings.ToLower(temp.SensorKey)
		if strings.Contains(key, "cpu") || strings.Contains(key, "coretemp") || strings.Contains(key, "k10temp") {
			if temp.Temperature > 0 {
				return temp.Temperature
			}
		}
	}

	// If no CPU sensor found, try to return any reasonable temperature
	for _, temp := range temps {
		if temp.Temperature > 0 && temp.Temperature < 120 {
			return temp.Temperature
		}
	}
	return -1
}

// FormatBytes formats bytes into a human-readable string
func FormatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

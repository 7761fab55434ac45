package handlers

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"

	"github.com/scdlbot/scdl/pkg/core/cache"
	"github.com/scdlbot/scdl/pkg/core/db"
)

// AppStats holds a snapshot of app and system level resource usage.
type AppStats struct {
	Uptime          string
	ProcessID       int32
	NumGoroutines   int
	CPUPercent      float64
	MemUsed         string
	MemLimit        string
	MemPerc         float64
	GoVersion       string
	Arch            string
	OS              string
	SystemCPUUsage  float64
	SystemMemUsed   string
	SystemMemTotal  string
	SystemDiskUsed  string
	SystemDiskTotal string
}

// humanBytes formats a byte count using binary units.
func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// readContainerMemLimit reads the cgroup memory limit, if the process runs
// inside a container that has one.
func readContainerMemLimit() uint64 {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if limit, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64); err == nil {
			if limit > 0 && limit < (1<<60) {
				return limit
			}
		}
	}

	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		val := strings.TrimSpace(string(data))
		if val != "max" {
			if limit, err := strconv.ParseUint(val, 10, 64); err == nil && limit > 0 && limit < (1<<60) {
				return limit
			}
		}
	}
	return 0
}

// Collects both app and system-level stats.
func gatherAppStats() (*AppStats, error) {
	pid := int32(os.Getpid())
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}

	cpuPercent, _ := proc.CPUPercent()
	memInfo, _ := proc.MemoryInfo()
	memPerc, _ := proc.MemoryPercent()

	// ---- System stats ----
	vmem, _ := mem.VirtualMemory()
	cpus, _ := cpu.Percent(0, false)

	rootPath := "/"
	if runtime.GOOS == "windows" {
		rootPath = "C:\\"
	}
	diskUsage, _ := disk.Usage(rootPath)

	stats := &AppStats{
		Uptime:          time.Since(startTime).Round(time.Second).String(),
		ProcessID:       pid,
		NumGoroutines:   runtime.NumGoroutine(),
		CPUPercent:      cpuPercent,
		MemUsed:         humanBytes(memInfo.RSS),
		MemPerc:         float64(memPerc),
		GoVersion:       runtime.Version(),
		Arch:            fmt.Sprintf("%s (%d CPU cores)", runtime.GOARCH, runtime.NumCPU()),
		OS:              runtime.GOOS,
		SystemMemUsed:   humanBytes(vmem.Used),
		SystemMemTotal:  humanBytes(vmem.Total),
		SystemDiskUsed:  humanBytes(diskUsage.Used),
		SystemDiskTotal: humanBytes(diskUsage.Total),
	}
	if len(cpus) > 0 {
		stats.SystemCPUUsage = cpus[0]
	}

	if limit := readContainerMemLimit(); limit > 0 {
		stats.MemLimit = humanBytes(limit)
	}

	return stats, nil
}

// Handles /stats command.
func sysStatsHandler(msg *telegram.NewMessage) error {
	sysMsg, err := msg.Reply("📊 Gathering stats...")
	if err != nil {
		return err
	}

	info, err := gatherAppStats()
	if err != nil {
		_, _ = sysMsg.Edit(fmt.Sprintf("❌ Failed to gather stats: %v", err), telegram.SendOptions{})
		return nil
	}

	var users, downloads int64
	if db.Instance != nil {
		ctx, cancel := db.Ctx()
		users, _ = db.Instance.CountUsers(ctx)
		downloads = db.Instance.GetDownloadCount(ctx)
		cancel()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 %s Stats\n", msg.Client.Me().FirstName))
	sb.WriteString(strings.Repeat("-", 40) + "\n\n")

	sb.WriteString("🤖 Application\n")
	sb.WriteString(fmt.Sprintf("Uptime: %s\n", info.Uptime))
	sb.WriteString(fmt.Sprintf("CPU: %.1f%%\n", info.CPUPercent))
	if info.MemLimit != "" {
		sb.WriteString(fmt.Sprintf("Memory: %s / %s (%.1f%%)\n", info.MemUsed, info.MemLimit, info.MemPerc))
	} else {
		sb.WriteString(fmt.Sprintf("Memory: %s (%.1f%%)\n", info.MemUsed, info.MemPerc))
	}
	sb.WriteString(fmt.Sprintf("Goroutines: %d\n", info.NumGoroutines))
	sb.WriteString(fmt.Sprintf("Users: %d | Downloads: %d | Cached file ids: %d\n", users, downloads, cache.FileIDs.Size()))
	sb.WriteString(fmt.Sprintf("Go: %s\n", info.GoVersion))
	sb.WriteString(fmt.Sprintf("Platform: %s %s\n\n", info.OS, info.Arch))

	sb.WriteString("🖥 Server\n")
	sb.WriteString(fmt.Sprintf("CPU: %.1f%%\n", info.SystemCPUUsage))
	sb.WriteString(fmt.Sprintf("RAM: %s / %s\n", info.SystemMemUsed, info.SystemMemTotal))
	sb.WriteString(fmt.Sprintf("Disk: %s / %s\n", info.SystemDiskUsed, info.SystemDiskTotal))
	sb.WriteString(strings.Repeat("-", 40))

	_, _ = sysMsg.Edit(sb.String(), telegram.SendOptions{})
	return nil
}

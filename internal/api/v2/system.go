package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func (c *Controller) initSystemRoutes() {
	c.Group.GET("/system/info", c.GetSystemInfo)
}

// GetSystemInfo reports host and process health for the diagnostics view.
func (c *Controller) GetSystemInfo(ctx echo.Context) error {
	info := map[string]any{
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"num_cpu":     runtime.NumCPU(),
		"uptime_s":    time.Since(c.startTime).Seconds(),
		"server_time": c.localISO(time.Now()),
	}

	if hostInfo, err := host.Info(); err == nil {
		info["hostname"] = hostInfo.Hostname
		info["os"] = hostInfo.OS
		info["platform"] = hostInfo.Platform
		info["host_uptime_s"] = hostInfo.Uptime
	}
	if cores, err := cpu.Counts(true); err == nil {
		info["cpu_cores"] = cores
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info["memory_total_mb"] = vm.Total / 1024 / 1024
		info["memory_used_pct"] = round1(vm.UsedPercent)
	}
	if usage, err := disk.Usage("/"); err == nil {
		info["disk_total_gb"] = round1(float64(usage.Total) / 1024 / 1024 / 1024)
		info["disk_used_pct"] = round1(usage.UsedPercent)
	}

	return ctx.JSON(http.StatusOK, info)
}

package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var processStartedAt = time.Now()

// healthBody is /health's response (§6.1: "200 when process is live"),
// enriched with process-level signal gopsutil exposes so an operator can
// tell a live-but-starving process from a healthy one at a glance.
type healthBody struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	MemoryRSSBytes uint64 `json:"memory_rss_bytes,omitempty"`
	CPUPercent    float64 `json:"cpu_percent,omitempty"`
}

// handleHealth always returns 200 while the process can serve a request at
// all — per §6.1 this is a liveness check, not a readiness check against
// the warehouse or host credentials.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:        "ok",
		UptimeSeconds: time.Since(processStartedAt).Seconds(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			body.MemoryRSSBytes = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			body.CPUPercent = cpu
		}
	}

	writeJSON(w, http.StatusOK, body)
}

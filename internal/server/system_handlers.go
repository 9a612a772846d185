package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/kafkanator/internal/httpapi"
	"github.com/aristath/kafkanator/internal/scheduler"
)

// HealthChecker is a database that can verify its own integrity.
type HealthChecker interface {
	QuickCheck(ctx context.Context) error
	Name() string
	Path() string
}

// SystemHandlers serves process, database and scheduler status
type SystemHandlers struct {
	log            zerolog.Logger
	dataDir        string
	reportsDB      HealthChecker
	scheduler      *scheduler.Scheduler
	healthCheckJob scheduler.Job
	startedAt      time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, reportsDB HealthChecker, sched *scheduler.Scheduler, startedAt time.Time) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("service", "system").Logger(),
		dataDir:   dataDir,
		reportsDB: reportsDB,
		scheduler: sched,
		startedAt: startedAt,
	}
}

// SetHealthCheckJob registers the health check job for manual triggering
func (h *SystemHandlers) SetHealthCheckJob(job scheduler.Job) {
	h.healthCheckJob = job
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string  `json:"status"` // "healthy" or "unhealthy"
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
	GoVersion     string  `json:"go_version"`
	DataDirMB     float64 `json:"data_dir_mb"`
	Database      DBInfo  `json:"database"`
}

// DBInfo describes one database file
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
	Error  string  `json:"error,omitempty"`
}

// JobsStatusResponse lists scheduled jobs
type JobsStatusResponse struct {
	Jobs []scheduler.JobInfo `json:"jobs"`
}

// HandleSystemStatus returns system status
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		DataDirMB:     h.getDirSize(h.dataDir),
		Database: DBInfo{
			Name: h.reportsDB.Name(),
			Path: h.reportsDB.Path(),
		},
	}
	if info, err := os.Stat(h.reportsDB.Path()); err == nil {
		response.Database.SizeMB = float64(info.Size()) / 1024 / 1024
	}
	if err := h.reportsDB.QuickCheck(r.Context()); err != nil {
		response.Status = "unhealthy"
		response.Database.Error = err.Error()
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, response)
}

// HandleJobsStatus lists the registered jobs and their next run
// GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteJSON(w, h.log, http.StatusOK, JobsStatusResponse{Jobs: h.scheduler.Jobs()})
}

// HandleTriggerHealthCheck runs the health check job immediately
// POST /api/system/jobs/health-check
func (h *SystemHandlers) HandleTriggerHealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.healthCheckJob == nil {
		h.log.Warn().Msg("Health check job not registered")
		httpapi.WriteJSON(w, h.log, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "Health check job not registered",
		})
		return
	}

	h.log.Info().Msg("Manual health check triggered")

	if err := h.scheduler.RunNow(h.healthCheckJob); err != nil {
		httpapi.WriteJSON(w, h.log, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Health check passed",
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over 100ms so the call stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

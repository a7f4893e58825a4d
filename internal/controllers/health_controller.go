package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"sensordigest/internal/scheduler/interfaces"
	storageinterfaces "sensordigest/internal/storage/interfaces"
	"time"
)

type HealthController struct {
	scheduler interfaces.SchedulerInterface
	workbook  storageinterfaces.WorkbookInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Sensors       int     `json:"sensors"`
	LastSweep     string  `json:"last_sweep,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Sensors:       len(hc.workbook.Sensors()),
	}
	if last := hc.scheduler.LastSweep(); !last.IsZero() {
		resp.LastSweep = last.Format(time.RFC3339)
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(scheduler interfaces.SchedulerInterface, workbook storageinterfaces.WorkbookInterface) *HealthController {
	return &HealthController{
		scheduler: scheduler,
		workbook:  workbook,
		startTime: time.Now(),
	}
}

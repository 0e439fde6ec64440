package handlers

import (
	"net/http"
	"strconv"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/monitoring"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
	"github.com/algorhythmicdev/reclame-OMS-sub000/pkg/utils"
)

// MonitoringHandler serves the admin dashboard: host/database stats, the
// factory-floor summary and recent request logs.
type MonitoringHandler struct {
	Collector  *monitoring.Collector
	Summary    *services.MetricsCollector
	RequestLog *repositories.RequestLogRepository
}

func NewMonitoringHandler(collector *monitoring.Collector, summary *services.MetricsCollector, requestLog *repositories.RequestLogRepository) *MonitoringHandler {
	return &MonitoringHandler{
		Collector:  collector,
		Summary:    summary,
		RequestLog: requestLog,
	}
}

func (h *MonitoringHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Collector.Stats(r.Context()))
}

// FloorSummary returns per-station counts for the dashboard.
func (h *MonitoringHandler) FloorSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Summary.Summarize(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *MonitoringHandler) RecentRequests(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.RequestLog.Recent(r.Context(), limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []*models.APIRequestLog{}
	}
	utils.JSON(w, http.StatusOK, logs)
}

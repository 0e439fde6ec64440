package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/middleware"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
	"github.com/algorhythmicdev/reclame-OMS-sub000/pkg/utils"
)

type SettingHandler struct {
	Service *services.SettingService
}

func NewSettingHandler(s *services.SettingService) *SettingHandler {
	return &SettingHandler{Service: s}
}

func (h *SettingHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.ListSettings(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if settings == nil {
		settings = []*models.Setting{}
	}
	utils.JSON(w, http.StatusOK, settings)
}

func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.Service.GetSetting(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Setting not found")
		return
	}
	utils.JSON(w, http.StatusOK, setting)
}

func (h *SettingHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req models.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.Service.UpsertSetting(r.Context(), key, req.Value, "", userID); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	setting, err := h.Service.GetSetting(r.Context(), key)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, setting)
}

// StationWIP reports whether a station is at its WIP limit.
func (h *SettingHandler) StationWIP(w http.ResponseWriter, r *http.Request) {
	station := models.Station(mux.Vars(r)["station"])
	if !models.ValidStation(station) {
		utils.Error(w, http.StatusNotFound, "Unknown station")
		return
	}

	atLimit, limit, err := h.Service.AtLimit(r.Context(), station)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"station":  station,
		"limit":    limit,
		"at_limit": atLimit,
	})
}

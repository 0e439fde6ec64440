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

type ChangeRequestHandler struct {
	Service *services.ChangeRequestService
}

func NewChangeRequestHandler(s *services.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{Service: s}
}

func (h *ChangeRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.Orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order.ChangeRequests)
}

func (h *ChangeRequestHandler) Open(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.OpenChangeRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		utils.Error(w, http.StatusBadRequest, "Title is required")
		return
	}

	author, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.Open(r.Context(), id, author, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

func (h *ChangeRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	approver, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.Approve(r.Context(), vars["id"], vars["crId"], approver)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *ChangeRequestHandler) Decline(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	order, err := h.Service.Decline(r.Context(), vars["id"], vars["crId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// ApplyStage moves one station to the requested state.
func (h *ChangeRequestHandler) ApplyStage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.StageActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.ApplyStage(r.Context(), id, actor, req.Station, req.Next, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// SendToRework puts a station back into rework.
func (h *ChangeRequestHandler) SendToRework(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.StageActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.SendToRework(r.Context(), id, actor, req.Station, req.Reason, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *ChangeRequestHandler) writeError(w http.ResponseWriter, err error) {
	if services.IsNotFound(err) {
		utils.Error(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.Error(w, http.StatusInternalServerError, err.Error())
}

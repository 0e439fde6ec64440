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

type OrderHandler struct {
	Service *services.OrderService
}

func NewOrderHandler(s *services.OrderService) *OrderHandler {
	return &OrderHandler{Service: s}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	// Drafts are visible to admins only
	includeDrafts := r.URL.Query().Get("include_drafts") == "true"
	if role, ok := middleware.GetRoleFromContext(r.Context()); !ok || role != "admin" {
		includeDrafts = false
	}

	orders, err := h.Service.ListOrders(r.Context(), includeDrafts)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := h.Service.GetOrder(r.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			utils.Error(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteOrder(r.Context(), id); err != nil {
		if services.IsNotFound(err) {
			utils.Error(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBadge adds one badge; duplicates are ignored.
func (h *OrderHandler) AddBadge(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Badge models.Badge `json:"badge"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.AddBadge(r.Context(), id, body.Badge)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) RemoveBadge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	order, err := h.Service.RemoveBadge(r.Context(), vars["id"], models.Badge(vars["badge"]))
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// SetBadges replaces the badge list.
func (h *OrderHandler) SetBadges(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Badges []models.Badge `json:"badges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.SetBadges(r.Context(), id, body.Badges)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// AddRedoFlag marks a station for redo.
func (h *OrderHandler) AddRedoFlag(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Station models.Station      `json:"station"`
		Reason  models.ReworkReason `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.AddRedoFlag(r.Context(), id, body.Station, body.Reason)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ClearRedoFlag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	order, err := h.Service.ClearRedoFlag(r.Context(), vars["id"], models.Station(vars["station"]))
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// SetRedoSelection replaces the operator's redo station selection.
func (h *OrderHandler) SetRedoSelection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Stations []models.Station `json:"stations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.SetRedoSelection(r.Context(), id, body.Stations)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) writeOrderError(w http.ResponseWriter, err error) {
	if services.IsNotFound(err) {
		utils.Error(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.Error(w, http.StatusInternalServerError, err.Error())
}

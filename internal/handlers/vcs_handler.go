package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/diff"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/middleware"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
	"github.com/algorhythmicdev/reclame-OMS-sub000/pkg/utils"
)

// VCSHandler exposes the branch, commit and rollback operations.
type VCSHandler struct {
	Service *services.OrderService
}

func NewVCSHandler(s *services.OrderService) *VCSHandler {
	return &VCSHandler{Service: s}
}

func (h *VCSHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order.Branches)
}

func (h *VCSHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Name string `json:"name"`
		From string `json:"from"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.CreateBranch(r.Context(), id, body.Name, body.From)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

func (h *VCSHandler) SetDefaultBranch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.SetDefaultBranch(r.Context(), id, body.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *VCSHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	order, err := h.Service.DeleteBranch(r.Context(), vars["id"], vars["branch"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// History returns the commit list of one branch, newest first.
func (h *VCSHandler) History(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	order, err := h.Service.GetOrder(r.Context(), vars["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	br := order.FindBranch(vars["branch"])
	if br == nil {
		utils.Error(w, http.StatusNotFound, "Branch not found")
		return
	}
	utils.JSON(w, http.StatusOK, br.Commits)
}

func (h *VCSHandler) Commit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	author, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.Commit(r.Context(), vars["id"], vars["branch"], author, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

func (h *VCSHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.RollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.Rollback(r.Context(), vars["id"], vars["branch"], req.CommitID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// Compare diffs the snapshots at two commits of one branch.
func (h *VCSHandler) Compare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		utils.Error(w, http.StatusBadRequest, "from and to commit ids are required")
		return
	}

	a, err := h.Service.SnapshotAt(r.Context(), vars["id"], vars["branch"], from)
	if err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.Service.SnapshotAt(r.Context(), vars["id"], vars["branch"], to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	changes := diff.Compare(diff.Capture(a), diff.Capture(b))
	if changes == nil {
		changes = []diff.FieldChange{}
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"from":    from,
		"to":      to,
		"changes": changes,
	})
}

func (h *VCSHandler) writeError(w http.ResponseWriter, err error) {
	if services.IsNotFound(err) {
		utils.Error(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.Error(w, http.StatusInternalServerError, err.Error())
}

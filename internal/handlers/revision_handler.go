package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/middleware"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/storage"
	"github.com/algorhythmicdev/reclame-OMS-sub000/pkg/utils"
)

const maxUploadBytes = 50 << 20 // 50 MB

// RevisionHandler handles file revision uploads and the active-revision
// switch. Uploads require object storage to be configured.
type RevisionHandler struct {
	Service *services.RevisionService
	Storage *storage.Service
}

func NewRevisionHandler(s *services.RevisionService, st *storage.Service) *RevisionHandler {
	return &RevisionHandler{Service: s, Storage: st}
}

func (h *RevisionHandler) List(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.Orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"revisions":           order.Revisions,
		"default_revision_id": order.DefaultRevisionID,
	})
}

// Upload accepts a multipart form with a "file" part and an optional
// "message" field, stores the file and attaches it as a new revision.
func (h *RevisionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if h.Storage == nil {
		utils.Error(w, http.StatusServiceUnavailable, "File storage is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	ref, err := h.Storage.Upload(r.Context(), id, header.Filename, data)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.AddRevision(r.Context(), id, actor, r.FormValue("message"), ref)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

// SetDefault switches the active revision.
func (h *RevisionHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		RevisionID string `json:"revision_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor, _ := middleware.GetUsernameFromContext(r.Context())
	order, err := h.Service.SetDefaultRevision(r.Context(), id, actor, body.RevisionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *RevisionHandler) writeError(w http.ResponseWriter, err error) {
	if services.IsNotFound(err) {
		utils.Error(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.Error(w, http.StatusInternalServerError, err.Error())
}

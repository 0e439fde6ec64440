package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
	"github.com/algorhythmicdev/reclame-OMS-sub000/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// OrderPDF streams a printable order sheet.
func (h *ReportHandler) OrderPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pdf, err := h.Service.GenerateOrderPDF(r.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			utils.Error(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="order_%s.pdf"`, id))
	w.Write(pdf)
}

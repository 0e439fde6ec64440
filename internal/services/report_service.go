package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/timeutil"
)

// ReportService renders printable order sheets handed to the floor.
type ReportService struct {
	Orders *OrderService
}

func NewReportService(orders *OrderService) *ReportService {
	return &ReportService{Orders: orders}
}

// GenerateOrderPDF renders one order: header, snapshot fields, per-station
// stage table, rework history and the recent commit trail.
func (s *ReportService) GenerateOrderPDF(ctx context.Context, orderID string) ([]byte, error) {
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, fmt.Sprintf("Order %s - %s", order.ID, order.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Order Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Order Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Client: %s", order.Client), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Due: %s", order.Due), "RB", 1, "L", false, 0, "")
	badges := ""
	for i, b := range order.Badges {
		if i > 0 {
			badges += ", "
		}
		badges += string(b)
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Badges: %s", badges), "LB", 0, "L", false, 0, "")
	loading := order.LoadingDate
	if loading == "" {
		loading = "-"
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Loading: %s", loading), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Custom fields
	if len(order.Fields) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Details", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, f := range order.Fields {
			pdf.CellFormat(60, 6, f.Label, "1", 0, "L", false, 0, "")
			value := f.Value
			if len(value) > 70 {
				value = value[:67] + "..."
			}
			pdf.CellFormat(130, 6, value, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	// Materials
	if len(order.Materials) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Materials", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, m := range order.Materials {
			pdf.CellFormat(60, 6, m.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(130, 6, m.Value, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	// Stage table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Production Stages", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(60, 7, "Station", "1", 0, "C", true, 0, "")
	pdf.CellFormat(65, 7, "State", "1", 0, "C", true, 0, "")
	pdf.CellFormat(65, 7, "Progress", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, st := range models.Stations {
		pdf.CellFormat(60, 6, string(st), "1", 0, "C", false, 0, "")
		pdf.CellFormat(65, 6, models.StageLabels[order.Stages[st]], "1", 0, "C", false, 0, "")
		pdf.CellFormat(65, 6, fmt.Sprintf("%d%%", order.Progress[st]), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	// Rework history
	if len(order.Cycles) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Rework History", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Station", "1", 0, "C", true, 0, "")
		pdf.CellFormat(45, 7, "Reason", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "When", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Note", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, c := range order.Cycles {
			pdf.CellFormat(15, 6, fmt.Sprintf("%d", c.Idx), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, string(c.Station), "1", 0, "C", false, 0, "")
			pdf.CellFormat(45, 6, models.ReworkLabels[c.Reason], "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, timeutil.ToFactory(c.At).Format("02-Jan-2006 15:04"), "1", 0, "C", false, 0, "")
			note := c.Note
			if len(note) > 25 {
				note = note[:22] + "..."
			}
			pdf.CellFormat(50, 6, note, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	// Recent history on the default branch
	if br := order.FindBranch(order.DefaultBranch); br != nil && len(br.Commits) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Recent History", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		limit := len(br.Commits)
		if limit > 15 {
			limit = 15
		}
		for _, c := range br.Commits[:limit] {
			line := fmt.Sprintf("%s  %s  %s", timeutil.ToFactory(c.TS).Format("02-Jan 15:04"), c.Author, c.Message)
			if len(line) > 105 {
				line = line[:102] + "..."
			}
			pdf.CellFormat(190, 5, line, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF for %s: %w", orderID, err)
	}
	return buf.Bytes(), nil
}

package shift

import (
	"fmt"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/shiftsync/shiftsync_backend/internal/pkg/response"
	shiftService "github.com/shiftsync/shiftsync_backend/internal/services/shift"
)

type AnalyticsHandler struct {
	aggregator *shiftService.Aggregator
}

func NewAnalyticsHandler(aggregator *shiftService.Aggregator) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator}
}

func (h *AnalyticsHandler) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.aggregator.Totals(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, rows)
}

// ExportAnalyticsHandler streams the same totals as an .xlsx workbook.
func (h *AnalyticsHandler) ExportAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.aggregator.Totals(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Employee")
	f.SetCellValue(sheet, "B1", "Shifts Claimed")
	f.SetCellValue(sheet, "C1", "Total Hours")

	for i, row := range rows {
		line := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.Employee)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.TotalShiftsClaimed)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.TotalHours)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="workload_report.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Printf("Failed to write xlsx report: %v", err)
	}
}

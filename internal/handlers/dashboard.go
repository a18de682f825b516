package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/reports"
	"github.com/Emma781227/Ble-dor/internal/services"
)

type DashboardHandler struct {
	reports *services.ReportService
	now     func() time.Time
	log     *zap.Logger
}

func NewDashboardHandler(reports *services.ReportService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{reports: reports, now: time.Now, log: log}
}

// Show answers ?period=today|week. Today is the default.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	period, err := reports.ParsePeriod(r.URL.Query().Get("period"), h.now())
	if err != nil {
		if errors.Is(err, reports.ErrUnknownPeriod) {
			invalidFields(w, r, map[string]string{"period": "invalid_choice"})
			return
		}
		writeError(w, r, h.log, err)
		return
	}
	d, err := h.reports.Dashboard(r.Context(), policy.ActorFromContext(r.Context()), period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

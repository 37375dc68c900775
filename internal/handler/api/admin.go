package api

import (
	"net/http"

	"class-sync/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	sweeps commands.SweepCommands
}

func NewAdminHandler(sweeps commands.SweepCommands) *AdminHandler {
	return &AdminHandler{sweeps: sweeps}
}

// TriggerSweep runs the due-payment sweep on demand, outside the scheduled
// interval.
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	report, err := h.sweeps.ProcessRecurringPayments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Sweep failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"due":      report.Due,
		"invoiced": report.Invoiced,
		"manual":   report.Manual,
		"failed":   report.Failed,
	})
}

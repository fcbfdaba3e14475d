// controllers/report.go
package controllers

import (
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct {
	Reports *services.ReportService
}

// GetReportAnalytics returns the booking report for ?range= or ?from=&to=.
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	var query services.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	report, err := rc.Reports.Report(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

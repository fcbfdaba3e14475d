// controllers/dashboard.go
package controllers

import (
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns the headline numbers for the caller's bookings.
func (rc *ReportController) GetDashboardOverview(c *gin.Context) {
	dashboard, err := rc.Reports.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

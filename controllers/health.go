package controllers

import (
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func (hc *HealthController) Health(c *gin.Context) {
	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.Logger.WithError(err).Error("Health check failed")
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

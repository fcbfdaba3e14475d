// controllers/notification.go
package controllers

import (
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

// GetBookingNotifications lists what was sent for a booking.
func (nc *NotificationController) GetBookingNotifications(c *gin.Context) {
	id, ok := parseID(c, "booking")
	if !ok {
		return
	}

	logs, err := nc.Notifications.History(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// RunReminders triggers the daily reminder job outside its schedule.
func (nc *NotificationController) RunReminders(c *gin.Context) {
	processed, err := nc.Notifications.RunReminders(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

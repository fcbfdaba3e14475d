// controllers/staff.go
package controllers

import (
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type StaffController struct {
	Staff *services.StaffService
}

func (sc *StaffController) GetStaff(c *gin.Context) {
	staff, err := sc.Staff.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (sc *StaffController) AddStaff(c *gin.Context) {
	var input services.CreateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	member, err := sc.Staff.Create(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	id, ok := parseID(c, "staff")
	if !ok {
		return
	}

	var input services.UpdateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	member, err := sc.Staff.Update(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id, ok := parseID(c, "staff")
	if !ok {
		return
	}

	if err := sc.Staff.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}

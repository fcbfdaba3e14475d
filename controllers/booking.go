// controllers/booking.go
package controllers

import (
	"instaclean-backend/models"
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// createdBooking is the booking itself plus, for guests, their access token.
type createdBooking struct {
	*models.Booking
	AccessToken string `json:"accessToken,omitempty"`
}

type BookingController struct {
	Bookings *services.BookingService
	Auth     *services.AuthService
}

// CreateBooking books a cleaning. Anonymous callers also receive an
// accessToken that lets them read or cancel this booking later.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actor := actorFrom(c)
	booking, err := bc.Bookings.Create(c.Request.Context(), actor, input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	response := createdBooking{Booking: booking}
	if actor.IsAnonymous() || actor.IsGuest() {
		token, err := bc.Auth.GuestToken(booking.ID)
		if err != nil {
			utils.HandleAppError(c, err)
			return
		}
		response.AccessToken = token
	}
	c.JSON(http.StatusCreated, response)
}

func (bc *BookingController) GetBookings(c *gin.Context) {
	input := services.ListBookingsInput{Status: c.Query("status")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Limit must be a positive number")
			return
		}
		input.Limit = limit
	}

	bookings, err := bc.Bookings.List(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := parseID(c, "booking")
	if !ok {
		return
	}

	booking, err := bc.Bookings.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := parseID(c, "booking")
	if !ok {
		return
	}

	var input services.UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	booking, err := bc.Bookings.Update(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c, "booking")
	if !ok {
		return
	}

	if err := bc.Bookings.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

func GetTimeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timeSlots": utils.TimeSlots()})
}

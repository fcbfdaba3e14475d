package controllers

import (
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *services.AuthService
}

func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result, err := ac.Auth.Register(c.Request.Context(), input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	ac.setTokenCookie(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result, err := ac.Auth.Login(c.Request.Context(), input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}

	ac.setTokenCookie(c, result.Token)
	c.JSON(http.StatusOK, result)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Auth.Me(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) setTokenCookie(c *gin.Context, token string) {
	maxAge := int(ac.Auth.TokenTTL().Seconds())
	c.SetCookie(tokenCookie, token, maxAge, "/", "", true, true)
}

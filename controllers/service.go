// controllers/service.go
package controllers

import (
	"instaclean-backend/services"
	"instaclean-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogController serves services and property types.
type CatalogController struct {
	Catalog *services.CatalogService
}

func includeInactive(c *gin.Context) bool {
	return c.Query("includeInactive") == "true"
}

// GetServices lists active services by name; admins may ask for inactive ones too.
func (cc *CatalogController) GetServices(c *gin.Context) {
	list, err := cc.Catalog.ListServices(c.Request.Context(), actorFrom(c), includeInactive(c))
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (cc *CatalogController) GetService(c *gin.Context) {
	id, ok := parseID(c, "service")
	if !ok {
		return
	}

	service, err := cc.Catalog.GetService(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (cc *CatalogController) CreateService(c *gin.Context) {
	var input services.CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service, err := cc.Catalog.CreateService(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (cc *CatalogController) UpdateService(c *gin.Context) {
	id, ok := parseID(c, "service")
	if !ok {
		return
	}

	var input services.UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service, err := cc.Catalog.UpdateService(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

// DeleteService deletes the service, or deactivates it when bookings use it.
func (cc *CatalogController) DeleteService(c *gin.Context) {
	id, ok := parseID(c, "service")
	if !ok {
		return
	}

	result, err := cc.Catalog.DeleteService(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (cc *CatalogController) GetPropertyTypes(c *gin.Context) {
	list, err := cc.Catalog.ListPropertyTypes(c.Request.Context(), actorFrom(c), includeInactive(c))
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (cc *CatalogController) GetPropertyType(c *gin.Context) {
	id, ok := parseID(c, "property type")
	if !ok {
		return
	}

	propertyType, err := cc.Catalog.GetPropertyType(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, propertyType)
}

func (cc *CatalogController) CreatePropertyType(c *gin.Context) {
	var input services.CreatePropertyTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	propertyType, err := cc.Catalog.CreatePropertyType(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, propertyType)
}

func (cc *CatalogController) UpdatePropertyType(c *gin.Context) {
	id, ok := parseID(c, "property type")
	if !ok {
		return
	}

	var input services.UpdatePropertyTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	propertyType, err := cc.Catalog.UpdatePropertyType(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, propertyType)
}

func (cc *CatalogController) DeletePropertyType(c *gin.Context) {
	id, ok := parseID(c, "property type")
	if !ok {
		return
	}

	result, err := cc.Catalog.DeletePropertyType(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		utils.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
)

type LocationController struct {
	Locations *services.LocationService
}

func NewLocationController(locations *services.LocationService) *LocationController {
	return &LocationController{Locations: locations}
}

// GetLocations returns countries, regions, settlements and addresses in one payload
func (lc *LocationController) GetLocations(c *gin.Context) {
	data, err := lc.Locations.All(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Locations", data)
}

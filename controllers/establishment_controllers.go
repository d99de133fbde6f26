package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
)

type EstablishmentController struct {
	Establishments *services.EstablishmentService
	Ratings        *services.RatingService
}

func NewEstablishmentController(establishments *services.EstablishmentService, ratings *services.RatingService) *EstablishmentController {
	return &EstablishmentController{Establishments: establishments, Ratings: ratings}
}

// CreateNew stores an establishment with all nested data
func (ec *EstablishmentController) CreateNew(c *gin.Context) {
	var input services.EstablishmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	establishment, err := ec.Establishments.Create(c.Request.Context(), currentUser(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Catering establishment created", gin.H{"id": establishment.ID})
}

func (ec *EstablishmentController) UpdateInfo(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	view, err := ec.Establishments.UpdateInfo(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catering establishment", view)
}

// Update replaces the editable state, PUT and PATCH share the full payload
func (ec *EstablishmentController) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var input services.EstablishmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := ec.Establishments.Update(c.Request.Context(), id, input); err != nil {
		respondServiceError(c, err)
		return
	}

	view, err := ec.Establishments.UpdateInfo(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catering establishment updated", view)
}

func (ec *EstablishmentController) MainInfo(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	info, err := ec.Establishments.MainInfo(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catering establishment", info)
}

func (ec *EstablishmentController) OwnedByUser(c *gin.Context) {
	items, err := ec.Establishments.OwnedBy(c.Request.Context(), currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	page, size := utils.PageParams(c)
	utils.RespondJSON(c, http.StatusOK, "Owned catering establishments", utils.Paginate(items, page, size))
}

func (ec *EstablishmentController) Representation(c *gin.Context) {
	ids, err := queryUintList(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items, err := ec.Establishments.Representations(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catering establishments", items)
}

func catalogFilter(c *gin.Context) (services.CatalogFilter, error) {
	f := services.CatalogFilter{
		AddressName: c.Query("address__name"),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
	}
	var err error
	if f.RatingMin, err = queryFloat(c, "rating_min"); err != nil {
		return f, err
	}
	if f.RatingMax, err = queryFloat(c, "rating_max"); err != nil {
		return f, err
	}
	if f.Settlement, err = queryUint(c, "settlement"); err != nil {
		return f, err
	}
	if f.Region, err = queryUint(c, "region"); err != nil {
		return f, err
	}
	if f.Country, err = queryUint(c, "country"); err != nil {
		return f, err
	}
	return f, nil
}

func (ec *EstablishmentController) Catalog(c *gin.Context) {
	filter, err := catalogFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items, err := ec.Establishments.Catalog(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	page, size := utils.PageParams(c)
	utils.RespondJSON(c, http.StatusOK, "Catalog", utils.Paginate(items, page, size))
}

func (ec *EstablishmentController) TablesList(c *gin.Context) {
	id, err := requiredQueryUint(c, "catering_establishment")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tables, err := ec.Establishments.TablesList(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables", tables)
}

func (ec *EstablishmentController) Tables(c *gin.Context) {
	ids, err := queryUintList(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tables, err := ec.Establishments.TablesByEstablishment(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables", tables)
}

func (ec *EstablishmentController) WorkHours(c *gin.Context) {
	ids, err := queryUintList(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hours, err := ec.Establishments.WorkHoursByEstablishment(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Work hours", hours)
}

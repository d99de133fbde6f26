package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
)

type DishController struct {
	Dishes *services.DishService
	Orders *services.OrderService
}

func NewDishController(dishes *services.DishService, orders *services.OrderService) *DishController {
	return &DishController{Dishes: dishes, Orders: orders}
}

func (dc *DishController) CreateDish(c *gin.Context) {
	var input services.DishInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	dish, err := dc.Dishes.CreateDish(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Dish created", dish)
}

func (dc *DishController) Names(c *gin.Context) {
	ids, err := queryUintList(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	names, err := dc.Dishes.Names(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish names", names)
}

func (dc *DishController) RelatedData(c *gin.Context) {
	data, err := dc.Dishes.RelatedData(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish related data", data)
}

func menuFilter(c *gin.Context) (services.MenuFilter, error) {
	f := services.MenuFilter{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	var err error
	if f.Establishment, err = queryUint(c, "catering_establishment"); err != nil {
		return f, err
	}
	if f.HasDiscount, err = queryBool(c, "has_discount"); err != nil {
		return f, err
	}
	if f.FinalPriceMin, err = queryFloat(c, "final_price_min"); err != nil {
		return f, err
	}
	if f.FinalPriceMax, err = queryFloat(c, "final_price_max"); err != nil {
		return f, err
	}
	if f.Category, err = queryUint(c, "category"); err != nil {
		return f, err
	}
	if f.Subcategory, err = queryUint(c, "subcategory"); err != nil {
		return f, err
	}
	if f.Food, err = queryUint(c, "food"); err != nil {
		return f, err
	}
	return f, nil
}

func (dc *DishController) Menu(c *gin.Context) {
	filter, err := menuFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items, err := dc.Dishes.Menu(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	page, size := utils.PageParams(c)
	utils.RespondJSON(c, http.StatusOK, "Menu", utils.Paginate(items, page, size))
}

// PopulateOrder appends one ordered dish to a booking
func (dc *DishController) PopulateOrder(c *gin.Context) {
	var input struct {
		Booking uint `json:"booking" binding:"required"`
		services.OrderItem
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	dish, err := dc.Orders.AddOrderedDish(c.Request.Context(), input.Booking, input.OrderItem)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Ordered dish added", dish)
}

// UpdateOrder replaces the whole order of a booking and answers 204
func (dc *DishController) UpdateOrder(c *gin.Context) {
	var input struct {
		Booking       uint                 `json:"booking" binding:"required"`
		OrderedDishes []services.OrderItem `json:"ordered_dishes" binding:"dive"`
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}
	if input.OrderedDishes == nil {
		input.OrderedDishes = []services.OrderItem{}
	}

	if err := dc.Orders.ReplaceOrderedDishes(c.Request.Context(), input.Booking, input.OrderedDishes); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (dc *DishController) Statistics(c *gin.Context) {
	stats, err := dc.Dishes.OrderingStatistics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish ordering statistics", stats)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/utils"
)

// GetUserRating returns the rating the current user gave, ?establishment=<id>
func (ec *EstablishmentController) GetUserRating(c *gin.Context) {
	id, err := requiredQueryUint(c, "establishment")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rating, err := ec.Ratings.UserRating(c.Request.Context(), id, currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User rating", gin.H{"rating": rating})
}

// PostUserRating sets or replaces the current user's rating and returns the new average
func (ec *EstablishmentController) PostUserRating(c *gin.Context) {
	var input struct {
		Establishment uint `json:"catering_establishment" binding:"required"`
		Rating        *int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	avg, err := ec.Ratings.Submit(c.Request.Context(), input.Establishment, currentUser(c), *input.Rating)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Rating saved", gin.H{"avg_rating": avg})
}

func (ec *EstablishmentController) GetFeedbacks(c *gin.Context) {
	id, err := requiredQueryUint(c, "catering_establishment")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	feedbacks, err := ec.Establishments.Feedbacks(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	page, size := utils.PageParams(c)
	utils.RespondJSON(c, http.StatusOK, "Feedbacks", utils.Paginate(feedbacks, page, size))
}

func (ec *EstablishmentController) PostFeedback(c *gin.Context) {
	var input struct {
		Establishment uint   `json:"catering_establishment" binding:"required"`
		Feedback      string `json:"feedback" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	feedback, err := ec.Establishments.CreateFeedback(c.Request.Context(), input.Establishment, currentUser(c), input.Feedback)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Feedback created", feedback)
}

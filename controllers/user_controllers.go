package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/middlewares"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
)

type UserController struct {
	Users  *services.UserService
	Tokens *utils.TokenManager
}

func NewUserController(users *services.UserService, tokens *utils.TokenManager) *UserController {
	return &UserController{Users: users, Tokens: tokens}
}

// Register creates a user with profile
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.Users.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	token, user, err := uc.Users.Login(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Infof("Login successful for user: %s", user.Username)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"access":   token,
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// Logout revokes the presented token until it expires
func (uc *UserController) Logout(c *gin.Context) {
	claims, token, ok := middlewares.Claims(c)
	if !ok || claims.ExpiresAt == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no active session"))
		return
	}

	uc.Tokens.Revoke(token, claims.ExpiresAt.Time)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.Users.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

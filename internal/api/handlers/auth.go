package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	resp, err := h.authService.Signup(req)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Signup failed", err)
		return
	}

	utils.SendSuccess(c, "Account created successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		utils.SendUnauthorized(c, err.Error())
		return
	}

	utils.SendSuccess(c, "Logged in successfully", resp)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	resp, err := h.authService.Refresh(req)
	if err != nil {
		utils.SendUnauthorized(c, err.Error())
		return
	}

	utils.SendSuccess(c, "Token refreshed successfully", resp)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		utils.SendNotFound(c, "User not found")
		return
	}

	utils.SendSuccess(c, "Profile retrieved successfully", user)
}

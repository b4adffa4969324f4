package handlers

import (
	"net/http"

	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Users *services.UserService
	Log   *zap.Logger
}

// clientInfo captures where a request came from. Device and browser are
// optional headers set by the admin frontend.
func clientInfo(c *gin.Context) models.ClientInfo {
	return models.ClientInfo{
		Device:    c.GetHeader("X-Client-Device"),
		Browser:   c.GetHeader("X-Client-Browser"),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"human_id":      user.HumanID,
		"email":         user.Email,
		"name":          user.Name,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
	}
}

func (h *AuthHandler) register(c *gin.Context, req dtos.RegisterRequest) {
	user, err := h.Users.Register(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	tokens, err := h.Users.IssueTokens(user)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", gin.H{
		"token":         tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          userPayload(user),
	})
}

// Register is the public sign-up. It always creates an employee.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.Role = models.RoleEmployee
	h.register(c, req)
}

// CreateUser lets an admin create an account with any role.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.register(c, req)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	tokens, err := h.Users.IssueTokens(user)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", gin.H{
		"token":         tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          userPayload(user),
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dtos.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.Users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	tokens, err := h.Users.IssueTokens(user)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respond(c, http.StatusOK, "Token refreshed successfully", tokens)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Profile fetched successfully", userPayload(user))
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigilo-backend/internal/middleware"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
	"github.com/vigilo-labs/vigilo-backend/internal/validator"
)

// AuthHandler handles host authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// HostLogin godoc
// POST /api/v1/auth/host/login
// Validates email + password, returns JWT.
func (h *AuthHandler) HostLogin(c *gin.Context) {
	var req model.HostLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, host, err := h.authService.LoginHost(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.HostLoginResponse{Token: token, Host: *host})
}

// GetHostProfile godoc
// GET /api/v1/auth/host/me
// Returns the profile of the currently authenticated host.
func (h *AuthHandler) GetHostProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	host, err := h.authService.GetHost(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"host": host})
}

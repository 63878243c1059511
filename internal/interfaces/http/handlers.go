package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheetgen/server/internal/auth"
	"github.com/sheetgen/server/internal/generation"
	"github.com/sheetgen/server/internal/repository"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	generationService *generation.Service
	authService       *auth.Service
	oauth             *auth.OAuth
	statusRepo        *repository.StatusRepository
	logger            *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	generationService *generation.Service,
	authService *auth.Service,
	oauth *auth.OAuth,
	statusRepo *repository.StatusRepository,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		generationService: generationService,
		authService:       authService,
		oauth:             oauth,
		statusRepo:        statusRepo,
		logger:            logger,
	}
}

// GenerateRequest is the body of POST /api/generate. Description is a
// pointer so the empty string passes the presence check; every description,
// including "", is a valid generation input.
type GenerateRequest struct {
	Description *string `json:"description" binding:"required"`
	Provider    string  `json:"provider"`
}

// CreateStatusCheckRequest is the body of POST /api/status.
type CreateStatusCheckRequest struct {
	ClientName string `json:"client_name" binding:"required"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sheetgen",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Root handles GET /api/
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
}

// Generate handles POST /api/generate. The encoded workbook is streamed back
// as an attachment; record persistence never blocks or fails the response.
func (h *Handlers) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	data, filename, err := h.generationService.Generate(c.Request.Context(), *req.Description, req.Provider)
	if err != nil {
		h.logger.Error("Spreadsheet generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "spreadsheet generation failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, generation.ContentType, data)
}

// ListGenerations handles GET /api/generations. An unavailable store yields
// an empty list, never an error.
func (h *Handlers) ListGenerations(c *gin.Context) {
	records := h.generationService.ListGenerations(c.Request.Context(), generation.DefaultListLimit)
	c.JSON(http.StatusOK, records)
}

// CreateStatusCheck handles POST /api/status
func (h *Handlers) CreateStatusCheck(c *gin.Context) {
	var req CreateStatusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	check := &repository.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: req.ClientName,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.statusRepo.Create(c.Request.Context(), check); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}

	c.JSON(http.StatusOK, check)
}

// ListStatusChecks handles GET /api/status
func (h *Handlers) ListStatusChecks(c *gin.Context) {
	checks, err := h.statusRepo.List(c.Request.Context(), 1000)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}
	if checks == nil {
		checks = []*repository.StatusCheck{}
	}
	c.JSON(http.StatusOK, checks)
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
	case err != nil:
		h.logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case err != nil:
		h.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
	default:
		c.JSON(http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// GoogleLogin handles GET /api/auth/google/login
func (h *Handlers) GoogleLogin(c *gin.Context) {
	url, err := h.oauth.GoogleLoginURL(h.callbackURL(c, "/api/auth/google/callback"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google OAuth not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": url})
}

// GoogleCallback handles GET /api/auth/google/callback
func (h *Handlers) GoogleCallback(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "Google OAuth callback not implemented yet"})
}

// MicrosoftLogin handles GET /api/auth/microsoft/login
func (h *Handlers) MicrosoftLogin(c *gin.Context) {
	url, err := h.oauth.MicrosoftLoginURL(h.callbackURL(c, "/api/auth/microsoft/callback"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Microsoft OAuth not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": url})
}

// MicrosoftCallback handles GET /api/auth/microsoft/callback
func (h *Handlers) MicrosoftCallback(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "Microsoft OAuth callback not implemented yet"})
}

// callbackURL reconstructs an absolute callback URL from the request host.
func (h *Handlers) callbackURL(c *gin.Context, path string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, path)
}

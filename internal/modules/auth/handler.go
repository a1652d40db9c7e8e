package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"nexus/internal/middleware"
	"nexus/internal/pkg/logger"
	"nexus/internal/pkg/response"
	"nexus/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages the HTTP side of accounts and tokens.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.POST("/register/", h.Register)
		users.POST("/login/", h.Login)
		users.GET("/:id/", h.GetUser)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	users := protected.Group("/users")
	{
		users.POST("/logout/", h.Logout)
		users.GET("/me/", h.GetMe)
		users.GET("/profile/", h.GetProfile)
		users.PATCH("/profile/", h.UpdateProfile)
	}
}

// Register creates the account and its profile and returns a token.
// POST /api/users/register/
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid registration data", errs)
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.Error(c, http.StatusConflict, "USERNAME_EXISTS", "A user with that username already exists")
			return
		}
		logger.Error().Err(err).Str("username", req.Username).Msg("registration failed")
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":    toUserResponse(result.User),
		"token":   result.Token,
		"message": "User registered successfully",
	})
}

// Login exchanges username and password for a token.
// POST /api/users/login/
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		logger.Error().Err(err).Msg("login failed")
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

// Logout revokes the caller's token.
// POST /api/users/logout/
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), c.GetInt64(middleware.ContextUserID)); err != nil {
		logger.Error().Err(err).Msg("logout failed")
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to log out")
		return
	}
	response.Message(c, http.StatusOK, "Successfully logged out")
}

// GET /api/users/me/
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.GetInt64(middleware.ContextUserID))
	if err != nil {
		h.userError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(user))
}

// GET /api/users/profile/
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), c.GetInt64(middleware.ContextUserID))
	if err != nil {
		h.userError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(profile))
}

// PATCH /api/users/profile/
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid profile data", errs)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), c.GetInt64(middleware.ContextUserID), req)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		h.userError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(profile))
}

// GetUser is the public view of any account.
// GET /api/users/:id/
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.userError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPublicUserResponse(user))
}

func (h *Handler) userError(c *gin.Context, err error) {
	if errors.Is(err, ErrUserNotFound) {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}
	logger.Error().Err(err).Msg("user lookup failed")
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

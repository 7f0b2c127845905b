package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/app"
	"tasktrack/internal/transport/http/middleware"
	"tasktrack/internal/transport/http/response"
	"tasktrack/internal/transport/http/session"
)

type AuthHandler struct {
	authService *app.AuthService
	sessions    *session.Transport
	logger      *slog.Logger
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=64"`
	Email           string `json:"email" binding:"required,email,max=128"`
	FirstName       string `json:"first_name" binding:"required,max=64"`
	LastName        string `json:"last_name" binding:"required,max=64"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService, sessions *session.Transport, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		RemoteAddr:      c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDuplicateUsername):
			response.Error(c, http.StatusBadRequest, "Username already taken")
		case errors.Is(err, app.ErrDuplicateEmail):
			response.Error(c, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, app.ErrPasswordMismatch):
			response.Error(c, http.StatusBadRequest, "Passwords do not match")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		default:
			h.internalError(c, "register failed", err)
		}
		return
	}

	h.sessions.Attach(c.Writer, result.Token)
	response.JSON(c, http.StatusCreated, gin.H{
		"id":    result.User.ID,
		"email": result.User.Email,
	})
}

// Login answers unknown usernames and wrong passwords with different
// messages. Protected routes never make that distinction.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		RemoteAddr: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusBadRequest, "User not found")
		case errors.Is(err, app.ErrInvalidPassword):
			response.Error(c, http.StatusBadRequest, "Invalid password")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		default:
			h.internalError(c, "login failed", err)
		}
		return
	}

	h.sessions.Attach(c.Writer, result.Token)
	response.JSON(c, http.StatusOK, gin.H{
		"id":         result.User.ID,
		"username":   result.User.Username,
		"first_name": result.User.FirstName,
		"last_name":  result.User.LastName,
	})
}

// Logout always succeeds for the client: the cookie is cleared even when
// server-side revocation could not be recorded.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := h.sessions.Extract(c.Request)
	h.sessions.Clear(c.Writer)

	if err := h.authService.Logout(c.Request.Context(), token, c.ClientIP()); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "logout revocation failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(c.Request.Context())),
		)
	}
	response.Message(c, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgUnauthenticated)
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusUnauthorized, response.MsgUnauthenticated)
			return
		}
		h.internalError(c, "fetch current user failed", err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
	})
}

func (h *AuthHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.ErrorContext(c.Request.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(c.Request.Context())),
	)
	response.Error(c, http.StatusInternalServerError, response.MsgInternalError)
}

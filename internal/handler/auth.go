package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stockroom/stockroom/internal/handler/dto"
	"github.com/stockroom/stockroom/internal/service"
)

// AuthHandler handles the unauthenticated signup and login endpoints.
type AuthHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /signup.
// Success body carries the new user under "result" plus the session token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email and password required"})
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
		default:
			h.logger.Error("signup failed", "error", err)
			writeText(w, http.StatusInternalServerError, "Error during registration")
		}
		return
	}

	h.logger.Info("user_signed_up", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.SignupResponse{
		Result: dto.ToUserResponse(user),
		Auth:   token,
	})
}

// Login handles POST /login.
// Success body carries the user under "user" plus the session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email and password required"})
		case errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		default:
			h.logger.Error("login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		User: dto.ToUserResponse(user),
		Auth: token,
	})
}

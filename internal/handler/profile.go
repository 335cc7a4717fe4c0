package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stockroom/stockroom/internal/auth"
	"github.com/stockroom/stockroom/internal/handler/dto"
	"github.com/stockroom/stockroom/internal/service"
)

// ProfileHandler handles the authenticated profile endpoints.
type ProfileHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.UserService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc:    svc,
		logger: logger,
	}
}

// Profile handles GET /profile.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeText(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("profile fetch failed", "error", err, "user_id", userID)
		writeText(w, http.StatusInternalServerError, "Error fetching profile data")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProfileResponse(profile))
}

// UpdateUsername handles PUT /profile/username.
func (h *ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.UpdateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateName(r.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyName):
			writeText(w, http.StatusBadRequest, "Username cannot be empty")
		case errors.Is(err, service.ErrUserNotFound):
			writeText(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("username update failed", "error", err, "user_id", userID)
			writeText(w, http.StatusInternalServerError, "Error updating username")
		}
		return
	}

	h.logger.Info("username_updated", "user_id", userID)

	writeJSON(w, http.StatusOK, dto.UpdateUsernameResponse{
		Success: true,
		User:    dto.ToUserResponse(user),
	})
}

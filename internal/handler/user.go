package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/handler/dto"
	"github.com/userdeck/userdeck/internal/service"
)

// UserHandler handles HTTP requests for directory records.
type UserHandler struct {
	svc           *service.DirectoryService
	logger        *slog.Logger
	maxUploadSize int64
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.DirectoryService, logger *slog.Logger, maxUploadSize int64) *UserHandler {
	return &UserHandler{
		svc:           svc,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserListResponse{Data: users})
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	user, err := h.svc.Get(r.Context(), auth.CallerID(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /api/users.
// Accepts either a JSON body or a multipart form with an optional file part.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, file, cleanup, err := decodeUserForm(r, h.maxUploadSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	defer cleanup()

	user, err := h.svc.Create(r.Context(), auth.CallerID(r.Context()), service.CreateUserInput{
		Name:     fields.Name,
		Email:    fields.Email,
		Password: fields.Password,
		Phone:    fields.Phone,
		Address:  fields.Address,
		File:     file,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"has_file", user.HasFile,
	)

	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT and PATCH /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	fields, file, cleanup, err := decodeUserForm(r, h.maxUploadSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	defer cleanup()

	user, err := h.svc.Update(r.Context(), auth.CallerID(r.Context()), id, service.UpdateUserInput{
		Name:     fields.Name,
		Email:    fields.Email,
		Password: fields.Password,
		Phone:    fields.Phone,
		Address:  fields.Address,
		File:     file,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), auth.CallerID(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "User and associated file deleted successfully",
	})
}

// Download handles GET /api/users/{id}/download.
// Redirects to the attachment on the media host.
func (h *UserHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	url, err := h.svc.Download(r.Context(), auth.CallerID(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// handleServiceError maps directory service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Name, email, and password are required")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, "EMAIL_EXISTS", "User already exists")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrNoFile):
		writeError(w, http.StatusNotFound, "NO_FILE", "No file found for this user")
	case errors.Is(err, service.ErrUploadFailed):
		writeError(w, http.StatusBadRequest, "UPLOAD_FAILED", "File upload failed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

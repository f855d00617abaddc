package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/userdeck/userdeck/internal/handler/dto"
	"github.com/userdeck/userdeck/internal/service"
)

// AuthHandler handles signup and login requests.
type AuthHandler struct {
	svc           *service.AccountService
	logger        *slog.Logger
	maxUploadSize int64
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AccountService, logger *slog.Logger, maxUploadSize int64) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// Signup handles POST /api/auth/signup.
// Accepts either a JSON body or a multipart form with an optional file part.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	fields, file, cleanup, err := decodeUserForm(r, h.maxUploadSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	defer cleanup()

	result, err := h.svc.Signup(r.Context(), service.SignupInput{
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

	h.logger.Info("signup",
		"user_id", result.User.ID,
		"has_file", result.User.HasFile,
	)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: result.Token,
		User:  result.User,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	result, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("login", "user_id", result.User.ID)

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: result.Token,
		User:  result.User,
	})
}

// handleServiceError maps account service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Name, email, and password are required")
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Email and password are required")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, "EMAIL_EXISTS", "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrUploadFailed):
		writeError(w, http.StatusBadRequest, "UPLOAD_FAILED", "File upload failed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

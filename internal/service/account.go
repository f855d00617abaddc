package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/media"
	"github.com/userdeck/userdeck/internal/model"
	"github.com/userdeck/userdeck/internal/repository"
)

// AccountService handles signup and login.
type AccountService struct {
	repo   UserRepository
	store  media.Store
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

// NewAccountService creates a new account service. store may be nil when no
// media host is configured.
func NewAccountService(repo UserRepository, store media.Store, tokens *auth.TokenIssuer, logger *slog.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// FileUpload carries an incoming attachment from the transport layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SignupInput is the input for registering a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	File     *FileUpload
}

// LoginInput is the input for authenticating an existing account.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult pairs a bearer token with the authenticated account.
type AuthResult struct {
	Token string
	User  *model.PublicUser
}

// Signup registers a new self-owned account and returns a bearer token for
// it. The record is written in a single insert with OwnerID equal to its own
// pre-assigned ID.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	id := ulid.Make().String()
	user := &model.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		OwnerID:      id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if input.File != nil {
		file, err := uploadAttachment(ctx, s.store, s.logger, input.File)
		if err != nil {
			return nil, err
		}
		user.File = file
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("account created", "user_id", user.ID)

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Login authenticates an account by email and password. All failures return
// ErrInvalidCredentials so callers cannot probe which emails are registered.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

func uploadAttachment(ctx context.Context, store media.Store, logger *slog.Logger, f *FileUpload) (*model.Attachment, error) {
	if store == nil {
		return nil, ErrUploadFailed
	}
	obj, err := store.Upload(ctx, f.Filename, f.ContentType, f.Size, f.Content)
	if err != nil {
		logger.Error("file upload failed", "filename", f.Filename, "error", err)
		return nil, ErrUploadFailed
	}
	return &model.Attachment{
		URL:        obj.URL,
		Key:        obj.Key,
		Filename:   f.Filename,
		UploadedAt: time.Now().UTC(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

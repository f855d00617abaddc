package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/media"
	"github.com/userdeck/userdeck/internal/model"
	"github.com/userdeck/userdeck/internal/repository"
)

// DirectoryService manages the user records owned by an account. Every
// operation is scoped to the calling account; a record owned by someone else
// behaves exactly like a record that does not exist.
type DirectoryService struct {
	repo    UserRepository
	store   media.Store
	janitor Discarder
	logger  *slog.Logger
}

// NewDirectoryService creates a new directory service. store and janitor may
// be nil when no media host is configured.
func NewDirectoryService(repo UserRepository, store media.Store, janitor Discarder, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		repo:    repo,
		store:   store,
		janitor: janitor,
		logger:  logger,
	}
}

// CreateUserInput is the input for creating a managed directory record.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	File     *FileUpload
}

// UpdateUserInput is the input for a partial update. Empty fields keep the
// stored values; a non-nil File replaces the current attachment.
type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	File     *FileUpload
}

// List returns every record owned by the calling account, newest first. The
// caller's own account record is excluded.
func (s *DirectoryService) List(ctx context.Context, callerID string) ([]*model.PublicUser, error) {
	users, err := s.repo.ListOwnedUsers(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	out := make([]*model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// Get returns a single owned record.
func (s *DirectoryService) Get(ctx context.Context, callerID, id string) (*model.PublicUser, error) {
	user, err := s.fetchOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// Create adds a managed record owned by the calling account.
func (s *DirectoryService) Create(ctx context.Context, callerID string, input CreateUserInput) (*model.PublicUser, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		OwnerID:      callerID,
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
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "owner_id", callerID)

	return user.Public(), nil
}

// Update applies a partial update to an owned record. Provided fields replace
// the stored values; absent fields are left untouched. A new file replaces
// the existing attachment and queues the old object for deletion.
func (s *DirectoryService) Update(ctx context.Context, callerID, id string, input UpdateUserInput) (*model.PublicUser, error) {
	user, err := s.fetchOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	mergeUser(user, input)

	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if input.File != nil {
		if user.HasFile() {
			s.discard(user.File.Key)
		}
		file, err := uploadAttachment(ctx, s.store, s.logger, input.File)
		if err != nil {
			return nil, err
		}
		user.File = file
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user.Public(), nil
}

// Delete removes an owned record. Its attachment, if any, is queued for
// best-effort deletion on the media host.
func (s *DirectoryService) Delete(ctx context.Context, callerID, id string) error {
	user, err := s.fetchOwned(ctx, callerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteOwnedUser(ctx, id, callerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}

	if user.HasFile() {
		s.discard(user.File.Key)
	}

	s.logger.Info("user deleted", "user_id", id, "owner_id", callerID)

	return nil
}

// Download returns the attachment URL of an owned record for the transport
// layer to redirect to.
func (s *DirectoryService) Download(ctx context.Context, callerID, id string) (string, error) {
	user, err := s.fetchOwned(ctx, callerID, id)
	if err != nil {
		return "", err
	}
	if !user.HasFile() {
		return "", ErrNoFile
	}
	return user.File.URL, nil
}

func (s *DirectoryService) fetchOwned(ctx context.Context, callerID, id string) (*model.User, error) {
	user, err := s.repo.GetOwnedUser(ctx, id, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

func (s *DirectoryService) discard(key string) {
	if s.janitor == nil || key == "" {
		return
	}
	s.janitor.Enqueue(key)
}

// mergeUser overlays the non-empty fields of input onto user. Password and
// file handling stay with the caller.
func mergeUser(user *model.User, input UpdateUserInput) {
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if email := normalizeEmail(input.Email); email != "" {
		user.Email = email
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = phone
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		user.Address = address
	}
}

// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"

	"github.com/userdeck/userdeck/internal/model"
)

// UserRepository is the persistence surface the services depend on.
// *repository.Repository satisfies it.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetOwnedUser(ctx context.Context, id, ownerID string) (*model.User, error)
	ListOwnedUsers(ctx context.Context, ownerID string) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteOwnedUser(ctx context.Context, id, ownerID string) error
}

// Discarder queues remote objects for best-effort deletion.
// *media.Janitor satisfies it.
type Discarder interface {
	Enqueue(key string)
}

// Service errors. Handlers map these onto the HTTP error taxonomy.
var (
	// ErrMissingFields is returned when a required field is absent.
	ErrMissingFields = errors.New("name, email, and password are required")
	// ErrMissingCredentials is returned when login input is incomplete.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrEmailExists is returned when the email is already registered.
	ErrEmailExists = errors.New("user already exists")
	// ErrInvalidCredentials is the single login failure. Unknown email and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound covers both absent records and records owned by
	// someone else.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoFile is returned when a download is requested for a record
	// without an attachment.
	ErrNoFile = errors.New("no file found for this user")
	// ErrUploadFailed is returned when the media host rejects an upload.
	ErrUploadFailed = errors.New("file upload failed")
)

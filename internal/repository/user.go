package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/userdeck/userdeck/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, phone, address, owner_id,
	file_url, file_key, file_name, file_uploaded_at, created_at, updated_at`

// CreateUser inserts a new user record. The caller assigns the ID and
// OwnerID before the insert, so a self-owned account is written in a single
// statement.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, phone, address, owner_id,
			file_url, file_key, file_name, file_uploaded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	fileURL, fileKey, fileName, fileUploadedAt := attachmentColumns(user.File)

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Address,
		user.OwnerID,
		fileURL,
		fileKey,
		fileName,
		fileUploadedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email. Email is matched exactly;
// callers normalize before lookup.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetOwnedUser retrieves a record by ID, visible only to its owner.
// A record owned by someone else is indistinguishable from a missing one.
func (r *Repository) GetOwnedUser(ctx context.Context, id, ownerID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND owner_id = $2`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ListOwnedUsers returns all managed records owned by ownerID, newest first.
// The owner's own self-owned record is excluded: the directory lists managed
// accounts only.
func (r *Repository) ListOwnedUsers(ctx context.Context, ownerID string) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE owner_id = $1 AND id <> $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser writes a record's mutable fields, scoped to the owner.
// The caller merges partial input into the stored record first.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $3, email = $4, password_hash = $5, phone = $6, address = $7,
			file_url = $8, file_key = $9, file_name = $10, file_uploaded_at = $11,
			updated_at = $12
		WHERE id = $1 AND owner_id = $2
	`

	fileURL, fileKey, fileName, fileUploadedAt := attachmentColumns(user.File)

	result, err := r.pool.Exec(ctx, query,
		user.ID,
		user.OwnerID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Address,
		fileURL,
		fileKey,
		fileName,
		fileUploadedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteOwnedUser removes a record, scoped to the owner.
func (r *Repository) DeleteOwnedUser(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM users WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// attachmentColumns flattens an optional attachment into its nullable columns.
func attachmentColumns(a *model.Attachment) (url, key, name *string, uploadedAt *time.Time) {
	if a == nil {
		return nil, nil, nil, nil
	}
	return &a.URL, &a.Key, &a.Filename, &a.UploadedAt
}

// scanUser scans a row into a User model, folding the nullable attachment
// columns back into an Attachment.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var fileURL, fileKey, fileName *string
	var fileUploadedAt *time.Time

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Address,
		&user.OwnerID,
		&fileURL,
		&fileKey,
		&fileName,
		&fileUploadedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if fileURL != nil && *fileURL != "" {
		user.File = &model.Attachment{URL: *fileURL}
		if fileKey != nil {
			user.File.Key = *fileKey
		}
		if fileName != nil {
			user.File.Filename = *fileName
		}
		if fileUploadedAt != nil {
			user.File.UploadedAt = *fileUploadedAt
		}
	}

	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (error code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

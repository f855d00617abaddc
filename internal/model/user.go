// Package model defines domain entities for the application.
package model

import "time"

// Attachment describes the single remote file that may be attached to a user
// record. Key is the object-store key and doubles as the deletion handle.
type Attachment struct {
	URL        string    `json:"url"`
	Key        string    `json:"public_id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"upload_date"`
}

// User represents a directory record. Self-owned accounts have
// OwnerID == ID; managed records carry the creating account's ID.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	OwnerID      string      `json:"owner_id"`
	File         *Attachment `json:"file,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsSelfOwned reports whether the record is a signup account rather than a
// managed directory entry.
func (u *User) IsSelfOwned() bool {
	return u.OwnerID == u.ID
}

// HasFile reports whether the record carries an attachment.
func (u *User) HasFile() bool {
	return u.File != nil && u.File.URL != ""
}

// PublicUser is the projection returned by the API. The password hash is
// never part of any response shape.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	OwnerID   string    `json:"owner_id"`
	HasFile   bool      `json:"has_file"`
	FileURL   string    `json:"file_url,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the API projection of the record.
func (u *User) Public() *PublicUser {
	p := &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		OwnerID:   u.OwnerID,
		HasFile:   u.HasFile(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.HasFile() {
		p.FileURL = u.File.URL
		p.Filename = u.File.Filename
	}
	return p
}

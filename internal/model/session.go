package model

import "time"

// Session is the authenticated caller identity established by the auth gate
// for a single request. It is carried through the request context and
// re-derived from the bearer token on every request; there is no server-side
// session storage.
type Session struct {
	// UserID is the account that owns the bearer token.
	UserID string
	// IssuedAt and ExpiresAt come from the verified token claims.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

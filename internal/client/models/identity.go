// Package models defines the client-side identity and session types.
package models

import "time"

// Identity is the authenticated subject: the backend-issued credential pair
// plus the display profile that rides along with it.
type Identity struct {
	// OpenID is the backend-assigned, immutable subject id.
	OpenID string

	// Token is the opaque session credential. It may be revoked server-side.
	Token string

	Profile Profile

	// IsGuest marks identities issued without social login.
	IsGuest bool

	// IsNewUser reports whether the backend created the account on this login.
	IsNewUser bool

	// VerifiedAt is the last time the backend confirmed Token, UTC.
	// Zero means the session was never confirmed after being cached.
	VerifiedAt time.Time
}

// Valid reports whether the identity can stand for a logged-in session.
// An identity without an openid is a partial state and never valid.
func (i *Identity) Valid() bool {
	return i != nil && i.OpenID != ""
}

// Clone returns a deep copy so cache tiers never share mutable state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Equal compares all fields; VerifiedAt is compared as an instant.
func (i *Identity) Equal(o *Identity) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.OpenID == o.OpenID &&
		i.Token == o.Token &&
		i.Profile == o.Profile &&
		i.IsGuest == o.IsGuest &&
		i.IsNewUser == o.IsNewUser &&
		i.VerifiedAt.Equal(o.VerifiedAt)
}

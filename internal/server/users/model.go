package users

import "time"

// User is one account of the development gateway. Profile is the free-form
// user document as the client last stored it.
type User struct {
	OpenID    string
	IsGuest   bool
	Profile   map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is the outcome of a successful login.
type Session struct {
	OpenID    string
	Token     string
	UserInfo  map[string]any
	IsNewUser bool
}

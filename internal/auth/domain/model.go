package domain

import "time"

// Identity is the caller as asserted by the auth provider. It is never read
// from the document store.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Admin       bool   `json:"admin"`
}

// User is an entry in the identity directory, keyed by Firebase UID.
type User struct {
	FirebaseUID string     `json:"firebase_uid" db:"firebase_uid"`
	Email       string     `json:"email" db:"email"`
	DisplayName *string    `json:"display_name,omitempty" db:"display_name"`
	PhotoURL    *string    `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// Name returns the directory display name, falling back to the email.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}

package domain

import "time"

// Credentials is the single admin login. Only the bcrypt hash is stored.
type Credentials struct {
	Username     string
	PasswordHash string
	UpdatedAt    time.Time
}

// Token is returned by a successful login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

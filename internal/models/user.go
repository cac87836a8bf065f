package models

import "time"

// User is the identity-provider profile carried in the session token.
type User struct {
	ID          string `json:"id"` // provider subject
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Session is a signed-in user plus the token metadata needed for sign-out.
type Session struct {
	User      User
	TokenID   string
	ExpiresAt time.Time
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type SessionResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

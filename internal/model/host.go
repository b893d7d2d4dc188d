package model

import "time"

// Host is an exam author/proctor with dashboard access.
type Host struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// HostLoginRequest is the payload for host authentication.
type HostLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// HostLoginResponse is returned after successful host login.
type HostLoginResponse struct {
	Token string `json:"token"`
	Host  Host   `json:"host"`
}

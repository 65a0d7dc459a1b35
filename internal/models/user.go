package models

import (
	"time"
)

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Approved     bool
	CreatedAt    time.Time
}

// PublicUser is the projection of a User that may leave the server.
type PublicUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	Approved bool   `json:"approved"`
}

// Public returns the user without credential material.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		Approved: u.Approved,
	}
}

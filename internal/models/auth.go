package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the snapshot of a user carried by a session token.
// Changes to the user after issuance are not reflected until the token expires.
type TokenClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	Approved bool   `json:"approved"`
	jwt.RegisteredClaims
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  *PublicUser `json:"user"`
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kitengela/studio/internal/models"
)

// TokenManager issues and verifies session tokens signed with a process-wide secret.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for issuing and expiry checks.
func (tm *TokenManager) SetClock(now func() time.Time) {
	tm.now = now
}

// Expiry is the validity window of issued tokens.
func (tm *TokenManager) Expiry() time.Duration {
	return tm.expiry
}

// Issue signs a token carrying a snapshot of the user's id, email, admin and approval flags.
func (tm *TokenManager) Issue(user *models.User) (string, error) {
	now := tm.now()

	claims := &models.TokenClaims{
		UserID:   user.ID,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		Approved: user.Approved,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
// Every failure wraps models.ErrInvalidToken.
func (tm *TokenManager) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}

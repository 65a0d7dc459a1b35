package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewActivity_Success(t *testing.T) {
	entry := NewActivity("user-1", ActionLogin, true, "User logged in successfully.")

	assert.Equal(t, ActionLogin, entry.Action)
	assert.Equal(t, ActivitySuccess, entry.Status)
	if assert.NotNil(t, entry.UserID) {
		assert.Equal(t, "user-1", *entry.UserID)
	}
}

func TestNewActivity_AnonymousFailure(t *testing.T) {
	entry := NewActivity("", ActionRegister, false, "Email already registered")

	assert.Equal(t, ActivityFail, entry.Status)
	assert.Nil(t, entry.UserID, "pre-auth entries have no actor")
}

func TestUser_PublicOmitsHash(t *testing.T) {
	u := &User{ID: "u1", FullName: "Jane", Email: "jane@example.com", PasswordHash: "$2a$10$x", Approved: true}

	pub := u.Public()

	assert.Equal(t, "u1", pub.ID)
	assert.Equal(t, "Jane", pub.FullName)
	assert.True(t, pub.Approved)
	assert.False(t, pub.IsAdmin)
}

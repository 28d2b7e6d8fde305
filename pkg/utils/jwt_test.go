package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundtrip(t *testing.T) {
	token, err := CreateJWTToken("user-1", "user-1@example.com", "customer", "secret")
	require.NoError(t, err)

	user, err := ParseJWTToken(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user-1@example.com", user.Email)
	assert.Equal(t, "customer", user.Role)
}

func TestParseJWTTokenRejectsWrongSecret(t *testing.T) {
	token, err := CreateJWTToken("user-1", "user-1@example.com", "customer", "secret")
	require.NoError(t, err)

	_, err = ParseJWTToken(token, "not-the-secret")
	assert.Error(t, err)
}

func TestParseJWTTokenRejectsGarbage(t *testing.T) {
	_, err := ParseJWTToken("not.a.token", "secret")
	assert.Error(t, err)
}

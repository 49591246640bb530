package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucentricid/uproject-management/dao/model"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := newTokenManager("test-secret", 1, 24)

	msg := JWTMessage{UserID: 42, Username: "alice", Role: model.RoleAdmin}
	access, refresh, err := tm.CreateTokens(&msg)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	got, err := tm.CheckToken(access)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	got, err = tm.CheckToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCheckTokenRejectsWrongSecret(t *testing.T) {
	tm := newTokenManager("test-secret", 1, 24)
	other := newTokenManager("other-secret", 1, 24)

	access, _, err := tm.CreateTokens(&JWTMessage{UserID: 7, Username: "bob", Role: model.RoleMember})
	require.NoError(t, err)

	_, err = other.CheckToken(access)
	assert.Error(t, err)
}

func TestCheckTokenRejectsGarbage(t *testing.T) {
	tm := newTokenManager("test-secret", 1, 24)
	_, err := tm.CheckToken("not-a-token")
	assert.Error(t, err)
}

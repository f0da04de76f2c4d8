package auth_test

import (
	"testing"

	"github.com/iyhunko/inventory-console/internal/auth"
	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name    string
		conf    config.Auth
		wantErr bool
	}{
		{name: "plain password", conf: config.Auth{Username: "DemoUser", Password: "Demo@123"}},
		{name: "bcrypt hash", conf: config.Auth{Username: "DemoUser", PasswordHash: string(hash)}},
		{name: "missing username", conf: config.Auth{Password: "x"}, wantErr: true},
		{name: "missing password", conf: config.Auth{Username: "DemoUser"}, wantErr: true},
		{name: "malformed hash", conf: config.Auth{Username: "DemoUser", PasswordHash: "nope"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, err := auth.NewGate(tt.conf)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, gate)
				return
			}
			require.NoError(t, err)
			assert.False(t, gate.IsAuthenticated())
		})
	}
}

func TestGate_Login(t *testing.T) {
	gate, err := auth.NewGate(config.Auth{Username: "DemoUser", Password: "Demo@123"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := gate.Login("DemoUser", "demo@123")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.False(t, gate.IsAuthenticated())
	})

	t.Run("wrong username", func(t *testing.T) {
		_, err := gate.Login("demouser", "Demo@123")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("valid credentials sign in", func(t *testing.T) {
		user, err := gate.Login("DemoUser", "Demo@123")
		require.NoError(t, err)
		assert.Equal(t, "DemoUser", user.Username)
		assert.NotEmpty(t, user.Token)
		assert.False(t, user.LoggedInAt.IsZero())

		current, err := gate.Current()
		require.NoError(t, err)
		assert.Equal(t, user, current)
		assert.True(t, gate.IsAuthenticated())
	})

	t.Run("logout forgets the operator", func(t *testing.T) {
		gate.Logout()

		_, err := gate.Current()
		assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
		assert.False(t, gate.IsAuthenticated())
	})
}

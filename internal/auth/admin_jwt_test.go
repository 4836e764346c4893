package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueToken_ValidatesRoundTrip(t *testing.T) {
	a := NewAdminAuthenticator("shared-secret", time.Hour)

	token, expiresAt, err := a.IssueToken("admin-1", "admin@greengate.local")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin-1", claims.AdminID)
	require.Equal(t, "admin@greengate.local", claims.Email)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	issuer := NewAdminAuthenticator("secret-a", time.Hour)
	verifier := NewAdminAuthenticator("secret-b", time.Hour)

	token, _, err := issuer.IssueToken("admin-1", "admin@greengate.local")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_RejectsExpiredToken(t *testing.T) {
	a := NewAdminAuthenticator("shared-secret", -time.Hour)

	token, _, err := a.IssueToken("admin-1", "admin@greengate.local")
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_RejectsEmptyToken(t *testing.T) {
	a := NewAdminAuthenticator("shared-secret", time.Hour)
	_, err := a.ValidateToken("")
	require.Error(t, err)
}

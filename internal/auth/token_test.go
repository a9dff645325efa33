package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/models"
)

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	user := &models.User{ID: 42, Role: models.RoleAdmin}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	other := auth.NewTokenIssuer("different-secret", time.Hour)

	token, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerify_ExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	r, _ := http.NewRequest("GET", "/api/me", nil)

	_, err := auth.ExtractTokenFromRequest(r)
	assert.Error(t, err, "missing header must be rejected")

	r.Header.Set("Authorization", "Basic abc")
	_, err = auth.ExtractTokenFromRequest(r)
	assert.Error(t, err, "non-bearer scheme must be rejected")

	r.Header.Set("Authorization", "Bearer the-token")
	token, err := auth.ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "the-token", token)
}

func TestIdentityContext(t *testing.T) {
	r, _ := http.NewRequest("GET", "/", nil)
	ctx := auth.WithIdentity(r.Context(), 7, models.RoleUser)

	assert.Equal(t, int64(7), auth.UserID(ctx))
	assert.Equal(t, models.RoleUser, auth.Role(ctx))

	assert.Zero(t, auth.UserID(r.Context()), "unauthenticated context yields zero id")
}

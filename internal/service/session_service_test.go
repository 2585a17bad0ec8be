package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func testClaims(subject string) *models.JWTClaims {
	now := time.Now()
	return &models.JWTClaims{
		Email: "student@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "https://auth.example.com",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newSessionServiceForTest() *SessionService {
	return NewSessionService(nil, zap.NewNop(), SessionConfig{Secret: testSecret, Issuer: "https://auth.example.com", Audience: "authenticated"})
}

func TestSessionServiceValidateToken(t *testing.T) {
	svc := newSessionServiceForTest()

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), testClaims("user-1")))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "student@example.com", claims.Email)
}

func TestSessionServiceRejectsInvalidTokens(t *testing.T) {
	svc := newSessionServiceForTest()

	expired := testClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := testClaims("user-1")
	wrongIssuer.Issuer = "https://evil.example.com"
	wrongAudience := testClaims("user-1")
	wrongAudience.Audience = jwt.ClaimStrings{"other"}

	cases := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   signToken(t, jwt.SigningMethodHS256, []byte("other"), testClaims("user-1")),
		"wrong method":   signToken(t, jwt.SigningMethodHS512, []byte(testSecret), testClaims("user-1")),
		"expired":        signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"wrong issuer":   signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"wrong audience": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience),
		"no subject":     signToken(t, jwt.SigningMethodHS256, []byte(testSecret), testClaims("")),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}

func TestSessionServiceCurrentUser(t *testing.T) {
	store := &profileStoreStub{profiles: map[string]*models.Profile{}}
	profiles := NewProfileService(store, nil, nil, zap.NewNop())
	svc := NewSessionService(profiles, zap.NewNop(), SessionConfig{Secret: testSecret})

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	ctx := WithClaims(context.Background(), testClaims("user-1"))
	user, err = svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "student@example.com", user.Profile.Email)
	assert.Nil(t, ClaimsFrom(context.Background()))
}

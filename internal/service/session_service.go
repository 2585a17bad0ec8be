package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

// SessionConfig describes how tokens from the identity service are verified.
type SessionConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type profileEnsurer interface {
	Ensure(ctx context.Context, userID, email string) (*models.Profile, error)
}

type claimsKey struct{}

// SessionService validates externally issued access tokens and exposes the
// authenticated user. It never issues tokens itself.
type SessionService struct {
	profiles profileEnsurer
	logger   *zap.Logger
	config   SessionConfig
}

// NewSessionService constructs a SessionService.
func NewSessionService(profiles profileEnsurer, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{profiles: profiles, logger: logger, config: config}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *SessionService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.config.Audience))
	}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// WithClaims stores validated claims on the context.
func WithClaims(ctx context.Context, claims *models.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims stored by WithClaims, or nil.
func ClaimsFrom(ctx context.Context) *models.JWTClaims {
	claims, _ := ctx.Value(claimsKey{}).(*models.JWTClaims)
	return claims
}

// CurrentUser returns the signed-in user, or nil when the request carries no session.
func (s *SessionService) CurrentUser(ctx context.Context) (*models.CurrentUser, error) {
	claims := ClaimsFrom(ctx)
	if claims == nil {
		return nil, nil
	}
	user := &models.CurrentUser{ID: claims.UserID(), Email: claims.Email, Role: claims.Role}
	if s.profiles == nil {
		return user, nil
	}
	profile, err := s.profiles.Ensure(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

package ops

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"commune/internal/platform/middleware"
)

const tokenIssuer = "commune-ops"

// ServiceClaims are the claims carried by an ops service token. Subject is
// the acting operator's user id; it becomes the actor on audit entries for
// manual cache evictions.
type ServiceClaims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies the service tokens guarding admin routes.
type TokenService struct {
	signingKey []byte
}

// NewTokenService creates a token service with an HMAC signing key.
func NewTokenService(signingKey string) *TokenService {
	return &TokenService{signingKey: []byte(signingKey)}
}

// GenerateServiceToken mints a token for the given actor. Used by operator
// tooling and tests; the server only verifies.
func (s *TokenService) GenerateServiceToken(actorID string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// MiddlewareAdapter exposes the token service through the transport
// middleware's validator interface.
type MiddlewareAdapter struct {
	tokens *TokenService
}

func NewMiddlewareAdapter(tokens *TokenService) *MiddlewareAdapter {
	return &MiddlewareAdapter{tokens: tokens}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{UserID: claims.Subject}, nil
}

// Validate parses and verifies a service token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*ServiceClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(*ServiceClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

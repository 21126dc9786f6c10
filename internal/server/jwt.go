package server

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/config"
	"github.com/careerdesk/careerdesk-api/internal/server/middleware"
	"github.com/careerdesk/careerdesk-api/internal/types"
)

// Claims carries the full session principal so a session restores from the
// token alone, without re-contacting the credential sources.
type Claims struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// Principal rebuilds the session principal from the claims.
// This implements the middleware.PrincipalGetter interface.
func (c *Claims) Principal() (*types.Principal, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	if !c.Role.Valid() {
		return nil, fmt.Errorf("unknown role in token: %q", c.Role)
	}
	return &types.Principal{
		ID:        id,
		Name:      c.Name,
		Email:     c.Email,
		Role:      c.Role,
		AvatarURL: c.AvatarURL,
	}, nil
}

// RevocationStore tracks revoked token IDs until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTService provides session token generation and validation.
type JWTService struct {
	config      *config.JWTConfig
	revocations RevocationStore // nil disables server-side logout
}

// NewJWTService creates a new JWT service with the given configuration.
// revocations may be nil, in which case logout is client-side only.
func NewJWTService(cfg *config.JWTConfig, revocations RevocationStore) *JWTService {
	return &JWTService{
		config:      cfg,
		revocations: revocations,
	}
}

// GenerateToken generates a session token for the principal. A remember-me
// login gets the longer TTL; there is no indefinite session.
func (s *JWTService) GenerateToken(principal *types.Principal, rememberMe bool) (string, error) {
	now := time.Now()
	hours := s.config.ExpirationHours
	if rememberMe {
		hours = s.config.RememberMeHours
	}

	claims := &Claims{
		Name:      principal.Name,
		Email:     principal.Email,
		Role:      principal.Role,
		AvatarURL: principal.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a session token, including the revocation check,
// and returns the claims.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Revocation storage being down must not lock every session out;
			// the token still carries a valid signature and expiry.
			revoked = false
		}
		if revoked {
			return nil, fmt.Errorf("token has been revoked")
		}
	}

	return claims, nil
}

// RevokeToken marks a validated token's ID as revoked until the token would
// have expired anyway.
func (s *JWTService) RevokeToken(ctx context.Context, claims *Claims) error {
	if s.revocations == nil {
		return nil
	}
	ttl := time.Hour
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

// AsTokenValidator returns a middleware.TokenValidator adapter for this
// service, avoiding an import cycle between server and middleware.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return &jwtServiceValidator{service: s}
}

type jwtServiceValidator struct {
	service *JWTService
}

func (v *jwtServiceValidator) ValidateToken(ctx context.Context, tokenString string) (middleware.PrincipalGetter, error) {
	claims, err := v.service.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService issues and verifies access tokens
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
	}
}

// Claims defines JWT token content
type Claims struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	SchoolID string `json:"schoolId"`
	jwt.RegisteredClaims
}

// GenerateToken signs an access token for identity
func (s *JWTService) GenerateToken(identity models.Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenExp)

	claims := &Claims{
		UserID:   identity.UserID,
		Role:     string(identity.Role),
		SchoolID: identity.SchoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   identity.UserID,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and validates a token string
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, apperrors.ErrTokenExpired)
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, apperrors.ErrInvalidFormat)
		}
		return nil, fmt.Errorf("%w: %w: %v", apperrors.ErrAuth, apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuth, apperrors.ErrTokenInvalid)
	}

	return claims, nil
}

// VerifyIdentity validates a bearer credential and returns who it belongs to
func (s *JWTService) VerifyIdentity(ctx context.Context, tokenString string) (models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrAuth, err)
	}
	if tokenString == "" {
		return models.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrAuth, apperrors.ErrInvalidFormat)
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Identity{}, err
	}

	identity := models.Identity{
		UserID:   claims.UserID,
		Role:     models.RoleType(strings.ToUpper(claims.Role)),
		SchoolID: claims.SchoolID,
	}
	if identity.UserID == "" || !identity.Role.Valid() {
		return models.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrAuth, apperrors.ErrTokenInvalid)
	}

	return identity, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", apperrors.ErrInvalidFormat
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
	}

	// Raw token without prefix
	if strings.Count(authHeader, ".") == 2 {
		return authHeader, nil
	}

	return "", apperrors.ErrInvalidFormat
}

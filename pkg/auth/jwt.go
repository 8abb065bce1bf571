package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rangeops/rangecore/pkg/team"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrEmptyUserID   = errors.New("userID cannot be empty")
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrShortSecret   = errors.New("secret must be at least 32 characters")
)

// Claims is the authenticated principal the boundary layer hands to the
// core: identity plus a resolved team role.
type Claims struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      team.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// JWTManager manages JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager.
// Returns an error if the secret is shorter than 32 characters (security requirement).
func NewJWTManager(secret string, tokenDuration time.Duration) (*JWTManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	return &JWTManager{
		secretKey:     []byte(secret),
		tokenDuration: tokenDuration,
	}, nil
}

// GenerateToken generates a new JWT token carrying the resolved team role.
func (m *JWTManager) GenerateToken(userID, username string, role team.Role) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}
	if username == "" {
		return "", ErrEmptyUsername
	}
	if !role.IsValid() {
		return "", fmt.Errorf("%w: %s", team.ErrInvalidRole, role)
	}

	now := time.Now()
	expiresAt := now.Add(m.tokenDuration)

	claims := jwt.MapClaims{
		"user_id":    userID,
		"username":   username,
		"role":       role.String(),
		"expires_at": expiresAt.Unix(),
		"issued_at":  now.Unix(),
		"exp":        expiresAt.Unix(), // Standard JWT expiration claim
		"iat":        now.Unix(),       // Standard JWT issued at claim
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims. A token carrying
// a role the core does not recognize resolves to RoleNone rather than being
// rejected, so a stale or foreign role can never widen access.
func (m *JWTManager) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	userID, ok := claimsMap["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing or invalid user_id", ErrInvalidClaims)
	}

	username, ok := claimsMap["username"].(string)
	if !ok || username == "" {
		return nil, fmt.Errorf("%w: missing or invalid username", ErrInvalidClaims)
	}

	roleStr, ok := claimsMap["role"].(string)
	if !ok || roleStr == "" {
		return nil, fmt.Errorf("%w: missing or invalid role", ErrInvalidClaims)
	}
	role, roleErr := team.ParseRole(roleStr)
	if roleErr != nil {
		role = team.RoleNone
	}

	expiresAtFloat, ok := claimsMap["expires_at"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid expires_at", ErrInvalidClaims)
	}
	expiresAt := time.Unix(int64(expiresAtFloat), 0)

	issuedAtFloat, ok := claimsMap["issued_at"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid issued_at", ErrInvalidClaims)
	}
	issuedAt := time.Unix(int64(issuedAtFloat), 0)

	if time.Now().After(expiresAt) {
		return nil, ErrExpiredToken
	}

	return &Claims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		ExpiresAt: expiresAt,
		IssuedAt:  issuedAt,
	}, nil
}

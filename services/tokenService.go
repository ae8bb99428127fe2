package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GameNest/models"
	"github.com/golang-jwt/jwt/v4"
)

const resetPurpose = "password_reset"

var ErrInvalidResetToken = NewError(ErrValidation, "invalid or expired reset token")

type TokenService struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, ttl, resetTTL time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

type accessClaims struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	ID      int64  `json:"id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue signs an access token for user.
func (s *TokenService) Issue(user models.User) (string, error) {
	now := s.now()
	claims := accessClaims{
		ID:    user.ID,
		Email: user.User_Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify returns the principal named by token. Malformed, foreign-signed,
// expired and id-less tokens yield ErrInvalidCredential, as do reset tokens.
func (s *TokenService) Verify(token string) (models.Principal, error) {
	var claims accessClaims
	if err := s.parse(token, &claims); err != nil {
		return models.Anonymous(), ErrInvalidCredential
	}
	if claims.ID <= 0 || claims.ExpiresAt == nil || claims.Purpose != "" {
		return models.Anonymous(), ErrInvalidCredential
	}
	return models.Authenticated(claims.ID, claims.Email), nil
}

// Resolve turns an Authorization header value into a principal.
func (s *TokenService) Resolve(header string) (models.Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return models.Anonymous(), ErrNoCredential
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.Anonymous(), ErrInvalidCredential
	}
	return s.Verify(parts[1])
}

func (s *TokenService) IssueResetToken(userID int64) (string, error) {
	now := s.now()
	claims := resetClaims{
		ID:      userID,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// VerifyResetToken returns the user id a reset token was issued for. Access
// tokens are rejected.
func (s *TokenService) VerifyResetToken(token string) (int64, error) {
	var claims resetClaims
	if err := s.parse(token, &claims); err != nil {
		return 0, ErrInvalidResetToken
	}
	if claims.Purpose != resetPurpose || claims.ID <= 0 || claims.ExpiresAt == nil {
		return 0, ErrInvalidResetToken
	}
	return claims.ID, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	if token == "" {
		return errors.New("empty token")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("token is not valid")
	}
	return nil
}

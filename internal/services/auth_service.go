package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"salesops/internal/common"
)

// AuthService is the credential store: password hashing/verification and
// signed, time-bounded bearer tokens.
type AuthService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
	IssueToken(userID uuid.UUID, ttl time.Duration) (string, error)
	// ValidateToken returns the subject user id. Malformed/forged and expired
	// tokens fail with distinct sentinels; callers surface both as a single
	// unauthenticated outcome.
	ValidateToken(token string) (uuid.UUID, error)
}

type authService struct {
	jwtSecret []byte
	log       zerolog.Logger
}

const tokenIssuer = "salesops-auth"

func NewAuthService(jwtSecret string, log zerolog.Logger) AuthService {
	return &authService{
		jwtSecret: []byte(jwtSecret),
		log:       log,
	}
}

// HashPassword produces a salted one-way hash. bcrypt generates a fresh random
// salt per call, so two identical passwords hash differently.
func (s *authService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *authService) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.log.Warn().Str("reason", "expired").Msg("token validation failed")
			return uuid.Nil, common.ErrTokenExpired
		}
		s.log.Warn().Str("reason", "malformed").Err(err).Msg("token validation failed")
		return uuid.Nil, common.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		s.log.Warn().Str("reason", "malformed").Msg("token validation failed")
		return uuid.Nil, common.ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.log.Warn().Str("reason", "malformed").Msg("token subject is not a user id")
		return uuid.Nil, common.ErrTokenInvalid
	}
	return userID, nil
}

package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"pasar/internal/store"
)

// CredentialStore is the slice of the data manager the auth service needs.
type CredentialStore interface {
	CreateUser(username, email, password, actor string) (*store.UserSnapshot, error)
	GetUserCredentials(username string) (*store.Credentials, error)
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	users         CredentialStore
	jwtSecret     []byte
	tokenDuration time.Duration
	log           zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users CredentialStore, jwtSecret string, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour,
		log:           log,
	}
}

// Register creates a new user account. The new user is recorded as the
// creating actor of their own row.
func (s *AuthService) Register(username, email, password string) (*store.UserSnapshot, error) {
	return s.users.CreateUser(username, email, password, username)
}

// Login authenticates a user and returns a signed JWT on success. Failures
// are deliberately indistinguishable so usernames cannot be probed.
func (s *AuthService) Login(username, password string) (string, error) {
	creds, err := s.users.GetUserCredentials(username)
	if err != nil {
		return "", fmt.Errorf("failed to look up credentials: %w", err)
	}
	if creds == nil || !creds.IsActive {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  creds.ID,
		"username": creds.Username,
		"exp":      time.Now().Add(s.tokenDuration).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT, returning its claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

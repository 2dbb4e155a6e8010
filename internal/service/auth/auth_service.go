package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidEmail rejects malformed addresses.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword rejects passwords shorter than six characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Store persists accounts and their profiles.
type Store interface {
	CreateUser(ctx context.Context, user models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateProfile(ctx context.Context, profile models.Profile) error
	DeleteUser(ctx context.Context, id string) error
}

// Session is returned after a successful sign up or sign in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Service handles account creation and token issuance.
type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds an auth service signing HS256 tokens with secret.
func NewService(store Store, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// SignUp creates an account with an empty profile carrying farmName.
func (s *Service) SignUp(ctx context.Context, email, password, farmName string) (Session, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Session{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return Session{}, ErrWeakPassword
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, mongodb.ErrNotFound) {
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, mongodb.ErrDuplicate) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	profile := models.Profile{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		FarmName:       strings.TrimSpace(farmName),
		PreferredCrops: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if delErr := s.store.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to roll back user without profile", zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return Session{}, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(user)
}

// SignIn checks the credentials and returns a fresh session.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// ParseToken validates a token and returns the user id it was issued for.
func (s *Service) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (s *Service) issue(user models.User) (Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{Token: signed, ExpiresAt: expires.UTC(), User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

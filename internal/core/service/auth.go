package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/ports"
)

const DefaultTokenTTL = 2 * time.Hour

type AuthService struct {
	repo      ports.UserRepository
	sessions  ports.SessionStore
	listener  ports.SignOutListener
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService builds the service. listener may be nil.
func NewAuthService(repo ports.UserRepository, sessions ports.SessionStore, listener ports.SignOutListener, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		listener:  listener,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) error {
	user := auth.User{
		ID:    uuid.New().String(),
		Email: email,
	}
	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)

	return s.repo.Save(ctx, user)
}

// Login checks the credentials and opens a session. The returned token
// carries the user id as "sub" and the session id as "sid".
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", auth.ErrInvalidCredentials
	}

	session := auth.Session{ID: uuid.NewString(), UserID: user.ID}
	if err := s.sessions.Create(ctx, session, s.tokenTTL); err != nil {
		return "", fmt.Errorf("failed to open session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"sid": session.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	return token.SignedString(s.jwtSecret)
}

// Authenticate validates a bearer token and confirms its session is still open.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (auth.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return auth.Session{}, auth.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Session{}, auth.ErrInvalidToken
	}
	userID, _ := claims["sub"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return auth.Session{}, auth.ErrInvalidToken
	}

	session, err := s.sessions.Lookup(ctx, sessionID)
	if errors.Is(err, auth.ErrSessionNotFound) {
		return auth.Session{}, auth.ErrInvalidToken
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to look up session: %w", err)
	}
	if session.UserID != userID {
		return auth.Session{}, auth.ErrInvalidToken
	}
	return session, nil
}

// Logout closes the session and drops the user's cached wishlist.
func (s *AuthService) Logout(ctx context.Context, sessionID, userID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if s.listener != nil {
		s.listener.SignOut(userID)
	}
	return nil
}

// Package auth owns the human trust domain: passwords, session issuance, and
// the session-token side of bearer authentication. Agent tokens are a separate
// trust domain resolved against the clients table; the two are never
// interchangeable.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vanmoi/vanmoi/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("invalid old password")
)

// CredentialStore is the slice of storage the auth service needs.
type CredentialStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (store.User, error)
	FindUserByUsername(ctx context.Context, username string) (store.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (store.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	HasUsers(ctx context.Context) (bool, error)

	CreateSession(ctx context.Context, userID uuid.UUID, token string, userAgent, ipAddress *string, ttl time.Duration) (store.Session, error)
	FindSessionByToken(ctx context.Context, token string) (store.Session, error)
	DeleteSession(ctx context.Context, token string) error
	SessionsForUser(ctx context.Context, userID uuid.UUID) ([]store.Session, error)
}

type Service struct {
	store      CredentialStore
	sessionTTL time.Duration
}

func NewService(store CredentialStore, sessionTTL time.Duration) *Service {
	return &Service{
		store:      store,
		sessionTTL: sessionTTL,
	}
}

// NewSessionToken issues an opaque session credential. Validity is a storage
// lookup, never a property of the token text.
func NewSessionToken() string {
	return "vmses_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Login verifies the password and opens a new session. Unknown usernames and
// wrong passwords collapse into the same ErrInvalidCredentials so callers
// cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, username, password string, userAgent, ipAddress *string) (store.Session, store.User, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Session{}, store.User{}, ErrInvalidCredentials
		}
		return store.Session{}, store.User{}, fmt.Errorf("query user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return store.Session{}, store.User{}, ErrInvalidCredentials
	}

	session, err := s.store.CreateSession(ctx, user.ID, NewSessionToken(), userAgent, ipAddress, s.sessionTTL)
	if err != nil {
		return store.Session{}, store.User{}, fmt.Errorf("create session: %w", err)
	}

	return session, user, nil
}

// Logout deletes the session row for the given token, if any.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// UserForToken resolves a bearer value against the session table. Missing and
// expired sessions both come back as ErrInvalidCredentials; the expiry filter
// lives in the session lookup itself.
func (s *Service) UserForToken(ctx context.Context, token string) (store.User, error) {
	session, err := s.store.FindSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, fmt.Errorf("query session: %w", err)
	}

	user, err := s.store.FindUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}

// ChangePassword verifies the old password before writing the new hash.
func (s *Service) ChangePassword(ctx context.Context, user store.User, oldPassword, newPassword string) error {
	if !CheckPassword(oldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Sessions lists the caller's live sessions.
func (s *Service) Sessions(ctx context.Context, userID uuid.UUID) ([]store.Session, error) {
	return s.store.SessionsForUser(ctx, userID)
}

// DeleteSessionByID removes one of the caller's own sessions. Sessions owned
// by other users are invisible here, so the id either matches or is not found.
func (s *Service) DeleteSessionByID(ctx context.Context, userID, sessionID uuid.UUID) error {
	sessions, err := s.store.SessionsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("query sessions: %w", err)
	}
	for _, session := range sessions {
		if session.ID == sessionID {
			return s.store.DeleteSession(ctx, session.Token)
		}
	}
	return pgx.ErrNoRows
}

// Bootstrap creates the initial admin account when the user table is empty.
func (s *Service) Bootstrap(ctx context.Context, username, password string) error {
	exists, err := s.store.HasUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.store.CreateUser(ctx, username, hash); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.Info("Admin user created", "username", username)
	slog.Warn("Default admin password in effect, change it after first login", "password", password)
	return nil
}

// Package services contains server-side business logic. This file implements
// AuthService, which checks credentials, registers users and manages the
// session cookie.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
)

// AuthService provides authentication-related operations:
// - LoginWithCredentials / LoginWithToken: resolve a subject
// - StartSession / Logout: set or clear the session cookie
// - Register: create users and log them in
//
// It keeps no per-request state and is safe for concurrent use.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	codec       *auth.TokenCodec
	gate        *auth.SessionGate
	cookies     auth.CookieConfig

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService. Token lookups go through the
// users repository bound to db.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, codec *auth.TokenCodec, cookies auth.CookieConfig) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		gate:        auth.NewSessionGate(codec, m.Users(db)),
		cookies:     cookies,
	}
}

// LoginWithCredentials verifies username and password. The username is
// trimmed the same way Register trims it. An unknown user and a wrong
// password both yield common.ErrInvalidCredentials.
func (s *AuthService) LoginWithCredentials(ctx context.Context, username, password string) (*models.Subject, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return user.Subject(), nil
}

// LoginWithToken resolves the subject carried by a session token.
func (s *AuthService) LoginWithToken(ctx context.Context, token string) (*models.Subject, error) {
	return s.gate.Authenticate(ctx, token)
}

// StartSession mints a token for subject and stores it in the session cookie.
func (s *AuthService) StartSession(w http.ResponseWriter, subject *models.Subject) error {
	token, err := s.codec.Encode(subject.ID, subject.Username)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	auth.SetSessionCookie(w, token, claims.ExpiresAt(), s.cookies)
	return nil
}

// Logout clears the session cookie. Calling it without a session is fine.
func (s *AuthService) Logout(w http.ResponseWriter) {
	auth.ClearSessionCookie(w, s.cookies)
}

// Register creates a user from form and logs them in.
func (s *AuthService) Register(ctx context.Context, form forms.UserForm) (*models.Subject, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, err
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		_, err := repo.GetUserByLogin(ctx, form.Username)
		switch {
		case err == nil:
			return common.ErrUsernameTaken
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		_, err = repo.Create(ctx, &models.User{
			UserName:     form.Username,
			Email:        form.Email,
			PasswordHash: hash,
		})
		return err
	}); err != nil {
		return nil, fmt.Errorf("register %q: %w", form.Username, err)
	}

	return s.LoginWithCredentials(ctx, form.Username, form.Password)
}

// ChangePassword replaces the password of username.
func (s *AuthService) ChangePassword(ctx context.Context, username, newPassword string) error {
	if err := forms.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// DeleteUser removes the user with id together with their todos.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// dummy returns a hash to compare against when the user is unknown, so the
// response takes as long as a real password check.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

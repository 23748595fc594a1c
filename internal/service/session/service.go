package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/credential"
	"github.com/auricmart/agent-api/internal/model"
	"github.com/auricmart/agent-api/internal/store"
	apperrors "github.com/auricmart/agent-api/pkg/errors"
	"github.com/auricmart/agent-api/pkg/logger"
)

// TokenStore persists the access token across agent restarts.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Service owns the signed-in session: login, logout, and warm restore
// from the keyring at startup.
type Service struct {
	api    api.AuthAPI
	tokens TokenStore
	store  *store.Store
	logger *logger.Logger
}

func NewService(authAPI api.AuthAPI, tokens TokenStore, st *store.Store, log *logger.Logger) *Service {
	return &Service{
		api:    authAPI,
		tokens: tokens,
		store:  st,
		logger: log,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidation("email and password are required")
	}

	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	enrichFromClaims(sess)

	if err := s.tokens.Set(credential.TokenKey, sess.Token); err != nil {
		// A session that does not survive restart is still a session.
		s.logger.Warn("failed to persist access token", "error", err.Error())
	}

	s.store.SetSession(sess)
	s.logger.Info("signed in", "user_id", sess.User.ID, "role", string(sess.User.Role))
	return sess, nil
}

// Restore rebuilds the session from a persisted token. Returns false
// when no usable token exists.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	token, err := s.tokens.Get(credential.TokenKey)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("reading persisted token: %w", err)
	}

	sess := &model.Session{Token: token}
	enrichFromClaims(sess)
	if sess.User.ID == "" {
		// Unparseable leftovers get dropped rather than looping forever.
		_ = s.tokens.Delete(credential.TokenKey)
		return false, nil
	}
	if sess.Expired() {
		_ = s.tokens.Delete(credential.TokenKey)
		return false, nil
	}

	s.store.SetSession(sess)
	s.logger.Info("session restored", "user_id", sess.User.ID)
	return true, nil
}

func (s *Service) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		// Best-effort: the backend invalidation may fail, the local
		// session is cleared regardless.
		s.logger.Warn("backend logout failed", "error", err.Error())
	}
	if err := s.tokens.Delete(credential.TokenKey); err != nil {
		s.logger.Warn("failed to delete persisted token", "error", err.Error())
	}
	s.store.ClearSession()
	s.logger.Info("signed out")
}

// enrichFromClaims fills identity fields from the access token claims.
// The client holds no signing secret, so the token is parsed without
// signature verification; trust comes from the TLS channel it arrived
// on, same as every other response field.
func enrichFromClaims(sess *model.Session) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(sess.Token, claims); err != nil {
		return
	}

	if sess.User.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			sess.User.ID = sub
		}
		if id, ok := claims["userId"].(string); ok && sess.User.ID == "" {
			sess.User.ID = id
		}
	}
	if sess.User.Name == "" {
		if name, ok := claims["name"].(string); ok {
			sess.User.Name = name
		}
	}
	if sess.User.Email == "" {
		if email, ok := claims["email"].(string); ok {
			sess.User.Email = email
		}
	}
	if sess.User.Role == "" {
		if role, ok := claims["role"].(string); ok {
			sess.User.Role = model.Role(role)
		}
	}
	if sess.ExpiresAt.IsZero() {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			sess.ExpiresAt = model.Millis(exp.UnixMilli())
		}
	}
}

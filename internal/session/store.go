// Package session owns the authenticated identity and the persisted
// credential token. Both are mutated only together, under one lock, so the
// token file and the in-memory identity never disagree outside Resolve.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/rkohli/stockpilot/internal/api"
	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// defaultTokenTTL is assumed when the token carries no exp claim.
const defaultTokenTTL = 24 * time.Hour

// AuthAPI is the slice of the backend the store needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (api.LoginResult, error)
	Profile(ctx context.Context) (model.User, error)
}

// Store is the single owner of the session lifecycle: resolve once at
// startup, then explicit login/logout, plus forced logout on a 401.
type Store struct {
	mu     sync.Mutex
	api    AuthAPI
	tokens *TokenFile
	sess   model.Session
	logger *zap.Logger
}

// NewStore constructs a Store; the session starts unresolved.
func NewStore(a AuthAPI, tokens *TokenFile, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:    a,
		tokens: tokens,
		sess:   model.Session{IsResolving: true},
		logger: logger,
	}
}

// Session returns a copy of the current session state.
func (s *Store) Session() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// Resolve checks the stored token against the profile endpoint exactly
// once at startup. Whatever the outcome, IsResolving ends up false so
// callers never block on a stuck resolution.
func (s *Store) Resolve(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.sess.IsResolving = false
		s.mu.Unlock()
	}()

	tok, err := s.tokens.Load()
	if err != nil || tok == "" {
		s.setIdentity(model.User{}, false)
		return
	}
	user, err := s.api.Profile(ctx)
	if err != nil {
		s.logger.Info("stored token rejected", zap.Error(err))
		_ = s.tokens.Clear()
		s.setIdentity(model.User{}, false)
		return
	}
	s.setIdentity(user, true)
	s.logger.Info("session resolved", zap.String("username", user.Username), zap.String("role", string(user.Role)))
}

// Login authenticates and, on success, persists the token and identity
// together. On failure the previous session is left untouched.
func (s *Store) Login(ctx context.Context, username, password string) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: username and password are required", errs.ErrValidation)
	}
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.Save(res.Token, tokenExpiry(res.Token)); err != nil {
		return model.User{}, fmt.Errorf("persist token: %w", err)
	}
	s.sess.User = res.User
	s.sess.IsAuthenticated = true
	s.logger.Info("logged in", zap.String("username", res.User.Username), zap.String("role", string(res.User.Role)))
	return res.User, nil
}

// Logout discards the token and identity unconditionally. It never fails:
// the local clear happens regardless of any storage error.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.tokens.Clear()
	s.sess.User = model.User{}
	s.sess.IsAuthenticated = false
	s.logger.Info("logged out")
}

// Invalidate is the 401 hook: the session is gone server-side, drop it
// locally too. The failing call is reported to its caller, not retried.
func (s *Store) Invalidate() {
	s.Logout()
}

func (s *Store) setIdentity(u model.User, authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.User = u
	s.sess.IsAuthenticated = authenticated
}

// tokenExpiry reads the exp claim without validating the signature; the
// client only uses it to avoid presenting a token it knows is stale.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(defaultTokenTTL)
}

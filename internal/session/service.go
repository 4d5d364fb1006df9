package session

import (
	"context"
	"errors"
	"time"

	"github.com/gerefleet/console/internal/upstream"
	"go.uber.org/zap"
)

// Authenticator verifies credentials against the fleet API and issues the
// bearer token plus display name.
type Authenticator interface {
	Login(ctx context.Context, rpe, password string) (*upstream.LoginResult, error)
}

type Service interface {
	// ReadSession rebuilds the session from the stored token. It never
	// fails: a missing, undecodable or expired token yields Anonymous, and
	// an expired token is removed from the store as part of the read.
	ReadSession(ctx context.Context) Session
	// Snapshot is the route-guard view of ReadSession.
	Snapshot(ctx context.Context) (authenticated bool, roles []string)
	Login(ctx context.Context, rpe, password string) (Session, error)
	Logout(ctx context.Context) error
}

type service struct {
	store  Store
	auth   Authenticator
	logger *zap.Logger
}

func NewService(store Store, auth Authenticator, logger *zap.Logger) Service {
	return &service{
		store:  store,
		auth:   auth,
		logger: logger,
	}
}

func (s *service) ReadSession(ctx context.Context) Session {
	token, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Error("failed to read stored token", zap.Error(err))
		return Anonymous
	}
	if token == "" {
		return Anonymous
	}

	claims, err := decodeClaims(token)
	if err != nil {
		// corrupted or tampered tokens must never pass; fail closed
		s.logger.Warn("undecodable token treated as absent", zap.Error(err))
		return Anonymous
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		s.logger.Warn("malformed exp claim treated as absent token", zap.Error(err))
		return Anonymous
	}
	// A missing exp claim means the token never expires on this side. That
	// matches the backend's issued tokens as observed, permissive as it is.
	if exp != nil && !exp.Time.After(time.Now()) {
		if delErr := s.store.Delete(ctx, KeyToken); delErr != nil {
			s.logger.Error("failed to drop expired token", zap.Error(delErr))
		}
		s.logger.Debug("stored token expired", zap.Time("exp", exp.Time))
		return Anonymous
	}

	rpe, _ := s.store.Get(ctx, KeyRPE)
	name, _ := s.store.Get(ctx, KeyName)

	return Session{
		Token:         token,
		Authenticated: true,
		Roles:         rolesFromClaims(claims),
		RPE:           rpe,
		Name:          name,
	}
}

func (s *service) Snapshot(ctx context.Context) (bool, []string) {
	sess := s.ReadSession(ctx)
	return sess.Authenticated, sess.Roles
}

func (s *service) Login(ctx context.Context, rpe, password string) (Session, error) {
	result, err := s.auth.Login(ctx, rpe, password)
	if err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) {
			return Anonymous, ErrInvalidCredentials
		}
		return Anonymous, err
	}

	if err := s.store.Set(ctx, KeyToken, result.Token); err != nil {
		return Anonymous, err
	}
	if err := s.store.Set(ctx, KeyRPE, rpe); err != nil {
		return Anonymous, err
	}
	if err := s.store.Set(ctx, KeyName, result.Name); err != nil {
		return Anonymous, err
	}

	s.logger.Info("login succeeded", zap.String("rpe", rpe))
	return s.ReadSession(ctx), nil
}

func (s *service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session store", zap.Error(err))
		return err
	}
	s.logger.Info("session cleared")
	return nil
}

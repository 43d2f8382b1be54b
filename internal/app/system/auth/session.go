package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/himatika/internal/app/store/sessions"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"github.com/dalemusser/himatika/internal/app/system/authz"
	"github.com/dalemusser/himatika/internal/app/system/tokens"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrUnauthenticated is returned for any token that does not map to a
// live session, user and profile.
var ErrUnauthenticated = errors.New("unauthenticated")

// Pair is the token pair handed to the client.
type Pair struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// FactsResolver computes role facts for a profile.
type FactsResolver interface {
	Facts(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (authz.Facts, error)
}

// SessionConfig holds token lifetimes.
type SessionConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SessionService issues, resolves, refreshes and destroys sessions. There
// is at most one session per user; signing in again replaces it.
type SessionService struct {
	codec    *tokens.Codec
	store    *sessions.Store
	users    *userstore.Fetcher
	resolver FactsResolver
	cfg      SessionConfig
	now      func() time.Time
	log      *zap.Logger
}

// NewSessionService wires the service over db.
func NewSessionService(db *mongo.Database, codec *tokens.Codec, resolver FactsResolver, cfg SessionConfig, logger *zap.Logger) *SessionService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 10 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		codec:    codec,
		store:    sessions.New(db),
		users:    userstore.NewFetcher(db),
		resolver: resolver,
		cfg:      cfg,
		now:      time.Now,
		log:      logger,
	}
}

// CreateOrReplace signs a fresh token pair for userID and makes it the
// user's only session.
func (s *SessionService) CreateOrReplace(ctx context.Context, userID primitive.ObjectID) (Pair, error) {
	access, exp, err := s.codec.Sign(userID, tokens.Access, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := s.codec.Sign(userID, tokens.Refresh, s.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	err = s.store.Upsert(ctx, sessions.Session{
		UserID:           userID,
		TokenHash:        tokens.Hash(access),
		RefreshHash:      tokens.Hash(refresh),
		ExpiresAt:        exp,
		RefreshExpiresAt: refreshExp,
	})
	if err != nil {
		return Pair{}, fmt.Errorf("store session: %w", err)
	}
	return Pair{Token: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// Resolve maps an access token to the signed-in user with a live profile
// and fresh role facts.
func (s *SessionService) Resolve(ctx context.Context, accessToken string) (*SessionUser, error) {
	userID, err := s.codec.Verify(accessToken, tokens.Access)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	sess, err := s.store.GetByTokenHash(ctx, tokens.Hash(accessToken))
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrUnauthenticated
	}

	user, profile, err := s.users.FetchUser(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	facts, err := s.resolver.Facts(ctx, profile.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	return &SessionUser{
		ID:        user.ID,
		Username:  user.Username,
		ProfileID: profile.ID,
		NIM:       profile.NIM,
		Name:      profile.FullName,
		Avatar:    profile.Avatar,
		Status:    profile.Status,
		Roles:     facts,
		Token:     accessToken,
	}, nil
}

// Refresh mints a new access token for the session holding refreshToken.
// The refresh token itself is returned unchanged.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (Pair, error) {
	userID, err := s.codec.Verify(refreshToken, tokens.Refresh)
	if err != nil {
		return Pair{}, ErrUnauthenticated
	}
	refreshHash := tokens.Hash(refreshToken)
	sess, err := s.store.GetByRefreshHash(ctx, refreshHash)
	if errors.Is(err, sessions.ErrNotFound) {
		return Pair{}, ErrUnauthenticated
	}
	if err != nil {
		return Pair{}, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != userID {
		return Pair{}, ErrUnauthenticated
	}

	access, exp, err := s.codec.Sign(userID, tokens.Access, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	if err := s.store.RotateAccess(ctx, refreshHash, tokens.Hash(access), exp); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return Pair{}, ErrUnauthenticated
		}
		return Pair{}, fmt.Errorf("rotate access token: %w", err)
	}
	return Pair{Token: access, RefreshToken: refreshToken, ExpiresAt: exp}, nil
}

// Destroy deletes the session holding accessToken.
func (s *SessionService) Destroy(ctx context.Context, accessToken string) error {
	err := s.store.DeleteByTokenHash(ctx, tokens.Hash(accessToken))
	if errors.Is(err, sessions.ErrNotFound) {
		return ErrUnauthenticated
	}
	return err
}

// DestroyUser deletes every session of userID.
func (s *SessionService) DestroyUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.store.DeleteByUser(ctx, userID)
	return err
}

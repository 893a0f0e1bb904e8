// Package session signs users in against the Login sheet and keeps the
// signed-in user in the echo store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/auth"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/sheets"
	"github.com/jordanlanch/leadtoorder/pkg/store"
)

// UserID is the id of the singleton user
const UserID = "1"

// Config configures sign-in
type Config struct {
	JWTSecret       string
	ExpirationHours int
	EmailDomain     string
}

// Service handles login, logout and the profile
type Service struct {
	sheets    domain.SheetClient
	store     *store.Store
	blacklist *auth.TokenBlacklist
	cfg       Config
	log       logger.Logger
	now       func() time.Time
}

// NewService creates a session service
func NewService(sc domain.SheetClient, st *store.Store, blacklist *auth.TokenBlacklist, cfg Config, log logger.Logger) *Service {
	if cfg.ExpirationHours <= 0 {
		cfg.ExpirationHours = 24
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "leadtoorder.com"
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		sheets:    sc,
		store:     st,
		blacklist: blacklist,
		cfg:       cfg,
		log:       log.With("component", "session"),
		now:       time.Now,
	}
}

// Login checks the credentials against the Login sheet, stores the user and
// issues a token
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, domain.NewValidationError("Please enter both username and password", map[string]string{
			"username": "Username is required",
			"password": "Password is required",
		})
	}

	name, err := s.sheets.LoginUser(ctx, username, req.Password)
	switch {
	case errors.Is(err, sheets.ErrInvalidUsername):
		return nil, domain.NewUnauthorizedError("Invalid username")
	case errors.Is(err, sheets.ErrInvalidPassword):
		return nil, domain.NewUnauthorizedError("Invalid password")
	case errors.Is(err, sheets.ErrLoginFailed):
		return nil, domain.NewUnauthorizedError("Login failed")
	case err != nil:
		s.log.Error("login request failed", "username", username, "error", err)
		return nil, domain.NewUnavailableError(err)
	}

	user := models.User{
		ID:       UserID,
		Username: name,
		Email:    fmt.Sprintf("%s@%s", name, s.cfg.EmailDomain),
	}
	if err := s.store.User.Set(ctx, user); err != nil {
		return nil, domain.NewInternalError(err)
	}

	token, expiresAt, err := auth.GenerateJWT(user.ID, user.Username, s.cfg.JWTSecret, s.cfg.ExpirationHours)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("user signed in", "username", user.Username)
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      &user,
	}, nil
}

// Authenticate validates a bearer token and requires a signed-in user in the
// echo store
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, *models.User, error) {
	claims, err := auth.ValidateJWTWithBlacklist(ctx, token, s.cfg.JWTSecret, s.blacklist)
	if err != nil {
		return nil, nil, domain.NewUnauthorizedError("Session expired")
	}
	user, err := s.store.User.Get(ctx)
	if err != nil {
		return nil, nil, domain.NewInternalError(err)
	}
	if user == nil {
		return nil, nil, domain.NewUnauthorizedError("Not signed in")
	}
	return claims, user, nil
}

// Logout revokes token for the rest of its lifetime and clears the user
func (s *Service) Logout(ctx context.Context, token string) error {
	if token != "" && s.blacklist != nil {
		ttl := time.Minute
		if claims, err := auth.ValidateJWT(token, s.cfg.JWTSecret); err == nil {
			ttl = claims.RemainingLifetime(s.now())
		}
		if err := s.blacklist.Add(ctx, token, ttl); err != nil {
			return domain.NewInternalError(err)
		}
	}
	if err := s.store.User.Clear(ctx); err != nil {
		return domain.NewInternalError(err)
	}
	s.log.Info("user signed out")
	return nil
}

// Me returns the signed-in user
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	user, err := s.store.User.Get(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("Not signed in")
	}
	return user, nil
}

// UpdateProfile changes the username and/or email of the signed-in user
func (s *Service) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if err := s.store.User.Set(ctx, *user); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return user, nil
}

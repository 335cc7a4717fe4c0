// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stockroom/stockroom/internal/auth"
	"github.com/stockroom/stockroom/internal/model"
	"github.com/stockroom/stockroom/internal/repository"
)

// Service errors for account operations.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrMissingCredentials = errors.New("email and password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyName          = errors.New("name cannot be empty")
)

// recentProductsLimit is how many recent products the profile view shows.
const recentProductsLimit = 3

// accountCreatedFormat renders the account creation date for the profile
// view, e.g. "31 Aug 2026".
const accountCreatedFormat = "02 Jan 2006"

// UserStore is the credential-store surface the user service depends on.
// *repository.Repository satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserCredentials(ctx context.Context, email string) (*model.User, error)
	UpdateUserName(ctx context.Context, id, name string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ProfileStatsStore provides the owner-filtered product queries backing the
// profile view. This is the only place ownership is consulted under the
// default open policy.
type ProfileStatsStore interface {
	CountProductsByOwner(ctx context.Context, ownerID string) (int64, error)
	RecentProductsByOwner(ctx context.Context, ownerID string, limit int) ([]model.ProductRef, error)
}

// ProfileStatsCache caches computed profile statistics.
// A nil cache is valid; every method call is skipped.
type ProfileStatsCache interface {
	GetProfileStats(ctx context.Context, userID string) (*model.ProfileStats, error)
	SetProfileStats(ctx context.Context, userID string, stats *model.ProfileStats) error
	InvalidateProfileStats(ctx context.Context, userID string) error
}

// TokenIssuer mints session tokens for the two entry points.
// *auth.TokenService satisfies it; tests substitute a failing fake to
// exercise the signup rollback.
type TokenIssuer interface {
	IssueSignup(user *model.User) (string, error)
	IssueLogin(user *model.User) (string, error)
}

// UserService handles signup, login, and profile logic.
type UserService struct {
	store    UserStore
	stats    ProfileStatsStore
	tokens   TokenIssuer
	profiles ProfileStatsCache
}

// NewUserService creates a UserService. profiles may be nil to disable the
// profile-statistics cache.
func NewUserService(store UserStore, stats ProfileStatsStore, tokens TokenIssuer, profiles ProfileStatsCache) *UserService {
	return &UserService{
		store:    store,
		stats:    stats,
		tokens:   tokens,
		profiles: profiles,
	}
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates an account and issues a session token for it.
//
// User creation and token issuance are two steps of one scoped operation: if
// issuance fails after the user record was saved, the record is deleted again
// so no orphaned account remains.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*model.User, string, error) {
	if input.Email == "" || input.Password == "" {
		return nil, "", ErrMissingCredentials
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.IssueSignup(user.Sanitized())
	if err != nil {
		// Compensating action: roll the just-created record back rather than
		// leave an account nobody holds a token for.
		if delErr := s.store.DeleteUser(ctx, user.ID); delErr != nil {
			return nil, "", fmt.Errorf("issue signup token: %w (rollback failed: %v)", err, delErr)
		}
		return nil, "", fmt.Errorf("issue signup token: %w", err)
	}

	return user.Sanitized(), token, nil
}

// Login verifies credentials and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.store.GetUserCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user credentials: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	clean := user.Sanitized()
	token, err := s.tokens.IssueLogin(clean)
	if err != nil {
		return nil, "", fmt.Errorf("issue login token: %w", err)
	}

	return clean, token, nil
}

// ProfileOutput is the assembled profile view.
type ProfileOutput struct {
	Name           string
	Email          string
	AccountCreated string
	TotalProducts  int64
	RecentProducts []model.ProductRef
}

// Profile assembles the profile view: account data plus owner-filtered
// product statistics. Statistics come from a short-lived cache when present.
func (s *UserService) Profile(ctx context.Context, userID string) (*ProfileOutput, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	stats, err := s.profileStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{
		Name:           user.Name,
		Email:          user.Email,
		AccountCreated: user.CreatedAt.Format(accountCreatedFormat),
		TotalProducts:  stats.TotalProducts,
		RecentProducts: stats.RecentProducts,
	}, nil
}

// UpdateName replaces the display name after trimming surrounding
// whitespace. Blank names are rejected.
func (s *UserService) UpdateName(ctx context.Context, userID, name string) (*model.User, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptyName
	}

	user, err := s.store.UpdateUserName(ctx, userID, trimmed)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user name: %w", err)
	}

	return user, nil
}

func (s *UserService) profileStats(ctx context.Context, userID string) (*model.ProfileStats, error) {
	if s.profiles != nil {
		if cached, err := s.profiles.GetProfileStats(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	total, err := s.stats.CountProductsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	recent, err := s.stats.RecentProductsByOwner(ctx, userID, recentProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}

	stats := &model.ProfileStats{
		TotalProducts:  total,
		RecentProducts: recent,
	}

	if s.profiles != nil {
		// Best effort; a failed write only costs a recount next time.
		_ = s.profiles.SetProfileStats(ctx, userID, stats)
	}

	return stats, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/models"
	pkgauth "github.com/kitengela/studio/pkg/auth"
	pkglogger "github.com/kitengela/studio/pkg/logger"
)

// UserRepository defines the persistence operations on user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListExcept(ctx context.Context, excludeID string) ([]*models.User, error)
	Approve(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	SeedAdmin(ctx context.Context, user *models.User) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// AuthService handles registration, login and the bootstrap administrator
type AuthService struct {
	repo      UserRepository
	tm        *auth.TokenManager
	hasher    *pkgauth.Hasher
	audit     *AuditService
	logger    *slog.Logger
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tm *auth.TokenManager, hasher *pkgauth.Hasher, audit *AuditService, logger *slog.Logger) *AuthService {
	// Compared against on unknown emails so both login failures cost one bcrypt round.
	dummyHash, err := hasher.Hash("kitengela-timing-equalizer")
	if err != nil {
		logger.Error("failed to prepare timing hash", slog.Any("error", err))
	}

	return &AuthService{
		repo:      repo,
		tm:        tm,
		hasher:    hasher,
		audit:     audit,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// Register creates an unapproved, non-admin account.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*models.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)

	if fullName == "" || email == "" || password == "" {
		s.audit.Record(ctx, "", models.ActionRegister, false, "Missing registration fields.")
		return nil, fmt.Errorf("%w: All fields are required", models.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, pkgauth.ErrPasswordTooLong) {
			s.audit.Record(ctx, "", models.ActionRegister, false, "Password too long.")
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.audit.Record(ctx, "", models.ActionRegister, false,
				"Email already registered: "+pkglogger.SanitizedEmail(email))
			return nil, fmt.Errorf("%w: Email already exists", models.ErrConflict)
		}
		s.audit.Record(ctx, "", models.ActionRegister, false, "DB insert error.")
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	s.audit.Record(ctx, user.ID, models.ActionRegister, true, "New user pending approval.")

	return user.Public(), nil
}

// Login checks credentials and approval and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: Email and password are required.", models.ErrValidation)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			if s.dummyHash != "" {
				_ = s.hasher.Compare(s.dummyHash, password)
			}
			s.logger.Info("login failed: invalid credentials")
			s.audit.Record(ctx, "", models.ActionLogin, false,
				"Invalid email attempt: "+pkglogger.SanitizedEmail(email))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials", slog.String("user_id", user.ID))
		s.audit.Record(ctx, user.ID, models.ActionLogin, false, "Incorrect password attempt.")
		return nil, models.ErrInvalidCredentials
	}

	if !user.Approved {
		s.logger.Info("login blocked: pending approval", slog.String("user_id", user.ID))
		s.audit.Record(ctx, user.ID, models.ActionLogin, false, "Account not approved yet.")
		return nil, models.ErrPendingApproval
	}

	token, err := s.tm.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.audit.Record(ctx, user.ID, models.ActionLogin, true, "User logged in successfully.")

	return &models.LoginResult{
		Token: token,
		User:  user.Public(),
	}, nil
}

// Me returns the current state of the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: User not found.", models.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user.Public(), nil
}

// SeedAdmin creates the bootstrap administrator if its email is not taken.
func (s *AuthService) SeedAdmin(ctx context.Context, fullName, email, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := s.repo.SeedAdmin(ctx, &models.User{
		FullName:     fullName,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if created {
		s.logger.Info("default admin account created", slog.String("email", pkglogger.SanitizedEmail(email)))
	}
	return nil
}

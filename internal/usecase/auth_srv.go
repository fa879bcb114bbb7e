package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*utils.Principal, error)
	CleanExpiredSessions(ctx context.Context) error
}

type authService struct {
	repo   *repository.Repository // user and session repositories
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Find user by email
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user for login: %w", err)
	}
	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", req.Email))
		return nil, ErrEmailNotFound
	}

	// 2. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	// 3. Create session
	session, err := s.createSession(ctx, user.ID, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) createSession(ctx context.Context, userID int64, userAgent, ipAddress string) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     uuid.New(),
		UserAgent: optional(userAgent),
		IPAddress: optional(ipAddress),
		ExpiresAt: now.Add(s.config.Session.TTL),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return fmt.Errorf("parse session token: %w", ErrUnauthorized)
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info("User logged out")
	return nil
}

// Authenticate resolves a session token to a fresh principal. Unknown,
// expired and revoked tokens and tokens of deleted users all fail with
// ErrUnauthorized.
func (s *authService) Authenticate(ctx context.Context, token string) (*utils.Principal, error) {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", ErrUnauthorized)
	}

	session, err := s.repo.Session.FindValidSession(ctx, tokenUUID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session: %w", ErrUnauthorized)
	}

	user, err := s.repo.User.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session user %d: %w", session.UserID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("session user %d: %w", session.UserID, ErrUnauthorized)
	}

	return &utils.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles.Strings(),
		Token:  token,
	}, nil
}

func (s *authService) CleanExpiredSessions(ctx context.Context) error {
	n, err := s.repo.Session.CleanExpiredSessions(ctx)
	if err != nil {
		return err
	}
	s.log.Info("Expired sessions cleaned", zap.Int64("deleted", n))
	return nil
}

// SeedAdmin creates the bootstrap administrator unless the email is already
// taken. An empty seed config is a no-op.
func SeedAdmin(ctx context.Context, users UserService, seed utils.SeedConfig, log *zap.Logger) error {
	if seed.AdminEmail == "" {
		return nil
	}

	_, err := users.CreateUser(ctx, &request.CreateUserRequest{
		Email:    seed.AdminEmail,
		Password: seed.AdminPassword,
		Roles:    entity.NewRoleSet(entity.RoleUser, entity.RoleAdmin).CSV(),
	})

	var validationErr *ValidationError
	switch {
	case err == nil:
		log.Info("Bootstrap admin created", zap.String("email", seed.AdminEmail))
		return nil
	case errors.As(err, &validationErr) && onlyEmailTaken(validationErr):
		log.Info("Bootstrap admin already present", zap.String("email", seed.AdminEmail))
		return nil
	default:
		return fmt.Errorf("seed admin: %w", err)
	}
}

// onlyEmailTaken reports whether the sole problem is an existing account
// with the same email.
func onlyEmailTaken(v *ValidationError) bool {
	if len(v.Violations) == 0 {
		return false
	}
	for _, violation := range v.Violations {
		if violation.Field != "email" || violation.Message != uniqueMessage {
			return false
		}
	}
	return true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/metrics"
	"go-community-hub/internal/domain"
	"go-community-hub/pkg/utils"
)

const msgInvalidCredentials = "Invalid credentials."

type IdentityService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	log   *zap.Logger
	opt   Options
}

func NewIdentityService(users domain.UserRepository, j *auth.JWTer, l *zap.Logger, opt Options) *IdentityService {
	return &IdentityService{users: users, jwt: j, log: l, opt: opt}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresIn time.Time `json:"expiresIn"`
	UserID    string    `json:"userId"`
	Roles     []string  `json:"roles"`
}

// Register 新用户总是拥有 User 角色；开启 GrantRequestedRole 时附加自选角色
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := in.Validate(s.opt.MinPasswordLength); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, apperr.Invalid("email", "Email is already registered.")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles := domain.NewRoleSet(domain.RoleUser)
	if s.opt.GrantRequestedRole && in.Role != "" {
		roles = roles.With(registerRoles[strings.ToLower(strings.TrimSpace(in.Role))])
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		NationalID:   strings.TrimSpace(in.NationalID),
		City:         strings.TrimSpace(in.City),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Roles:        roles,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Invalid("email", "Email is already registered.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.Registrations.Inc()
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.Strings("roles", roles.Strings()))
	return u, nil
}

// Login 用户不存在与密码错误返回同一条 401，避免枚举账号
func (s *IdentityService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		metrics.LoginFailures.Inc()
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	token, exp, err := s.jwt.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresIn: exp, UserID: u.ID, Roles: u.Roles.Strings()}, nil
}

func (s *IdentityService) Me(ctx context.Context, caller *auth.Claims) (*domain.User, error) {
	if err := auth.Authorize(caller, auth.Requirement{}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, caller.UserID())
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found.")
	}
	return u, nil
}

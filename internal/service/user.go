package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-community-hub/internal/core/apperr"
	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/domain"
	"go-community-hub/pkg/utils"
)

type UserService struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewUserService(users domain.UserRepository, l *zap.Logger) *UserService {
	return &UserService{users: users, log: l}
}

func (s *UserService) List(ctx context.Context, caller *auth.Claims) ([]domain.User, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Promote 角色为空时默认授予 Admin；已持有则原样返回
func (s *UserService) Promote(ctx context.Context, caller *auth.Claims, userID, role string) (*domain.User, error) {
	if err := auth.Authorize(caller, auth.AnyRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}
	r, err := parsePromoteRole(role)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	if err := s.grant(ctx, u, r); err != nil {
		return nil, err
	}
	s.log.Info("user promoted", zap.String("user_id", u.ID), zap.String("role", string(r)), zap.String("by", caller.UserID()))
	return u, nil
}

// GrantByEmail 运维命令行使用，不经过令牌校验
func (s *UserService) GrantByEmail(ctx context.Context, email, role string) (*domain.User, error) {
	r, err := parsePromoteRole(role)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	if err := s.grant(ctx, u, r); err != nil {
		return nil, err
	}
	s.log.Info("role granted", zap.String("user_id", u.ID), zap.String("role", string(r)))
	return u, nil
}

// SeedAdmin 账号不存在则创建，存在则补授 Admin
func (s *UserService) SeedAdmin(ctx context.Context, email, password, fullName string) (*domain.User, bool, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	if u != nil {
		return u, false, s.grant(ctx, u, domain.RoleAdmin)
	}
	email = domain.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, false, apperr.Invalid("email", "Email is not a valid address.")
	}
	if msg := passwordProblem(password, defaultMinPasswordLength); msg != "" {
		return nil, false, apperr.Invalid("password", msg)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Administrator"
	}
	u = &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Roles:        domain.NewRoleSet(domain.RoleAdmin, domain.RoleUser),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin seeded", zap.String("user_id", u.ID))
	return u, true, nil
}

func (s *UserService) grant(ctx context.Context, u *domain.User, r domain.Role) error {
	if u.Roles.Has(r) {
		return nil
	}
	roles := u.Roles.With(r)
	if err := s.users.UpdateRoles(ctx, u.ID, roles); err != nil {
		return fmt.Errorf("update roles: %w", err)
	}
	u.Roles = roles
	return nil
}

func parsePromoteRole(role string) (domain.Role, error) {
	if strings.TrimSpace(role) == "" {
		return domain.RoleAdmin, nil
	}
	r, ok := domain.ParseRole(strings.TrimSpace(role))
	if !ok {
		return "", apperr.Invalid("role", "Role must be one of Admin, Volunteer, Donor, User.")
	}
	return r, nil
}

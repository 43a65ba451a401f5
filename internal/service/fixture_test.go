package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/cache"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/repo"
	"go-community-hub/internal/testutil"
)

const testPassword = "Passw0rd!"

type fixture struct {
	t     *testing.T
	ctx   context.Context
	repos *repo.Repos
	svc   *Services
	jwt   *auth.JWTer
}

func newFixture(t *testing.T) *fixture { return newCachedFixture(t, nil) }

// newCachedFixture c 为 nil 时统计直接查库
func newCachedFixture(t *testing.T, c *cache.Cache) *fixture {
	t.Helper()
	r := repo.New(testutil.NewDB(t))
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "community-test", TTL: 24 * time.Hour}
	svc := New(r, c, j, zaptest.NewLogger(t), Options{GrantRequestedRole: true, MinPasswordLength: 8})
	return &fixture{t: t, ctx: context.Background(), repos: r, svc: svc, jwt: j}
}

// register 走完整注册流程并返回对应的令牌声明
func (f *fixture) register(email, role string) (*domain.User, *auth.Claims) {
	f.t.Helper()
	u, err := f.svc.Identity.Register(f.ctx, RegisterInput{
		Email:       email,
		Password:    testPassword,
		FullName:    "Test " + role,
		NationalID:  "NID-12345",
		City:        "Lisbon",
		PhoneNumber: "5550100",
		Role:        role,
	})
	require.NoError(f.t, err)
	return u, claimsOf(u)
}

func (f *fixture) admin() *auth.Claims {
	f.t.Helper()
	u, _, err := f.svc.Users.SeedAdmin(f.ctx, "root@example.com", testPassword, "Root")
	require.NoError(f.t, err)
	return claimsOf(u)
}

func (f *fixture) request(owner *auth.Claims, title string) *domain.ServiceRequest {
	f.t.Helper()
	sr, err := f.svc.Requests.Create(f.ctx, owner, CreateRequestInput{Title: title, Description: "details"})
	require.NoError(f.t, err)
	return sr
}

func claimsOf(u *domain.User) *auth.Claims {
	return &auth.Claims{
		Email:            u.Email,
		Phone:            u.PhoneNumber,
		Roles:            u.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID},
	}
}

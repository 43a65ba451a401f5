// Package service 业务规则层：授权、校验、状态流转与统计。
// 调用方身份以 *auth.Claims 显式传入，不依赖任何全局上下文。
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/cache"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/repo"
)

// 统计缓存 key；写操作后按表失效
const (
	statsRequestsKey     = "stats:service_requests"
	statsApplicationsKey = "stats:volunteer_applications"
	statsDonationsKey    = "stats:donations"
	statsFeedbackKey     = "stats:feedback"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
	featuredLimit   = 6
)

// clampLimit 排行类接口的 limit：<=0 取默认值，上限 100
func clampLimit(n, def int) int {
	if n <= 0 {
		return def
	}
	if n > maxTopLimit {
		return maxTopLimit
	}
	return n
}

type Options struct {
	GrantRequestedRole bool
	MinPasswordLength  int
	StatsTTL           time.Duration
}

// Services 全部业务服务
type Services struct {
	Identity     *IdentityService
	Users        *UserService
	Categories   *CategoryService
	Requests     *ServiceRequestService
	Applications *VolunteerService
	Donations    *DonationService
	Feedback     *FeedbackService
}

func New(r *repo.Repos, c *cache.Cache, j *auth.JWTer, l *zap.Logger, opt Options) *Services {
	if l == nil {
		l = zap.NewNop()
	}
	if opt.StatsTTL <= 0 {
		opt.StatsTTL = time.Minute
	}
	st := &stats{cache: c, ttl: opt.StatsTTL, log: l}
	return &Services{
		Identity:     NewIdentityService(r.Users, j, l, opt),
		Users:        NewUserService(r.Users, l),
		Categories:   NewCategoryService(r.Categories, l),
		Requests:     NewServiceRequestService(r.Requests, r.Categories, st, l),
		Applications: NewVolunteerService(r.Applications, r.Requests, r.Users, st, l),
		Donations:    NewDonationService(r.Donations, r.Requests, r.Users, st, l),
		Feedback:     NewFeedbackService(r.Feedback, r.Requests, st, l),
	}
}

// stats 统计读取走缓存，写后失效；缓存不可用时直接回源
type stats struct {
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func loadStats[T any](ctx context.Context, s *stats, key string, load func(context.Context) (*T, error)) (*T, error) {
	if s == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, key, s.ttl, load)
}

func (s *stats) invalidate(ctx context.Context, keys ...string) {
	if s == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("stats cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// userRefs 批量查询排行榜上的用户摘要
func userRefs(ctx context.Context, users domain.UserRepository, ids []string) (map[string]*domain.UserRef, error) {
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.UserRef, len(found))
	for id, u := range found {
		out[id] = u.Ref()
	}
	return out, nil
}

package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/cache"
	"go-community-hub/internal/core/config"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/handler"
	mdw "go-community-hub/internal/transport/http/middleware"
)

// Deps 两个引擎共用的依赖
type Deps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	JWT      *auth.JWTer
	Services *service.Services
	Config   *config.Config
}

// modules 按配置装配全部 handler；feedback 受开关控制
func modules(d Deps) *Registry {
	reg := NewRegistry()
	reg.Register(
		handler.NewAuthHandler(d.Services.Identity),
		handler.NewUserHandler(d.Services.Users),
		handler.NewCategoryHandler(d.Services.Categories),
		handler.NewServiceRequestHandler(d.Services.Requests),
		handler.NewVolunteerHandler(d.Services.Applications),
		handler.NewDonationHandler(d.Services.Donations),
	)
	if d.Config.Features.Feedback {
		reg.Register(handler.NewFeedbackHandler(d.Services.Feedback))
	}
	return reg
}

// admission 限流/并发/请求体/超时，配置为 0 的项不启用
func admission(l config.Limits, perIP bool) []gin.HandlerFunc {
	var hs []gin.HandlerFunc
	if l.RPS > 0 {
		burst := l.Burst
		if burst <= 0 {
			burst = int(l.RPS)
		}
		if perIP {
			hs = append(hs, mdw.RateLimitPerIP(rate.Limit(l.RPS), burst))
		} else {
			hs = append(hs, mdw.RateLimit(rate.Limit(l.RPS), burst))
		}
	}
	if l.Concurrency > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(l.Concurrency))
	}
	if l.MaxBodyMB > 0 {
		hs = append(hs, mdw.MaxBodyBytes(l.MaxBodyMB<<20))
	}
	if l.TimeoutSec > 0 {
		hs = append(hs, mdw.Timeout(time.Duration(l.TimeoutSec)*time.Second))
	}
	return hs
}

// health DB 不可用时返回 503
func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		out := gin.H{"ok": 1, "db": "up", "cache": "disabled"}
		status := http.StatusOK
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			out["ok"], out["db"] = 0, "down"
			status = http.StatusServiceUnavailable
		}
		if d.Cache.Enabled() {
			out["cache"] = "up"
			if err := d.Cache.Ping(ctx); err != nil {
				out["cache"] = "down"
			}
		}
		c.JSON(status, out)
	}
}

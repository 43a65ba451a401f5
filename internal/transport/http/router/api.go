package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-community-hub/internal/core/server"
	"go-community-hub/internal/transport/http/ez"
	mdw "go-community-hub/internal/transport/http/middleware"
)

func NewAPIEngine(d Deps) *gin.Engine {
	cfg := d.Config
	r := server.NewRouter(d.Log, server.Options{Name: cfg.App.Name, Mode: cfg.App.Env, CORSOrigins: cfg.App.CORSOrigins})

	// 中间件
	r.Use(admission(cfg.Limits, true)...)
	r.Use(mdw.Metrics(), mdw.AccessLog(d.Log))

	// 健康检查 / 指标
	r.GET("/health", health(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 前缀；公开接口与需登录接口共用同一前缀
	api := r.Group("/api/v1")
	groups := ez.Groups{
		Public: ez.New(api, d.Log),
		Authed: ez.New(api.Group("", mdw.AuthJWT(d.JWT)), d.Log),
	}
	modules(d).MountAllAPI(groups)

	return r
}

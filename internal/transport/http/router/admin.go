package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-community-hub/internal/core/server"
	"go-community-hub/internal/domain"
	"go-community-hub/internal/transport/http/ez"
	mdw "go-community-hub/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	cfg := d.Config
	r := server.NewRouter(d.Log, server.Options{Name: cfg.App.Name + "-admin", Mode: cfg.App.Env})

	r.Use(admission(cfg.Limits, false)...)
	r.Use(mdw.Metrics(), mdw.AccessLog(d.Log))

	r.GET("/health", health(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 管理端 v1（统一要求 Admin 角色）
	admin := r.Group("/admin/v1", mdw.AuthJWT(d.JWT, domain.RoleAdmin))
	modules(d).MountAllAdmin(ez.New(admin, d.Log))

	return r
}

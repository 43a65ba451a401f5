// Package app 进程装配：配置 → 日志 → 数据库 → 缓存 → 服务，两个入口共用
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-community-hub/internal/core/auth"
	"go-community-hub/internal/core/cache"
	"go-community-hub/internal/core/config"
	"go-community-hub/internal/core/database"
	"go-community-hub/internal/core/logger"
	"go-community-hub/internal/repo"
	"go-community-hub/internal/service"
	"go-community-hub/internal/transport/http/router"
)

// NewLogger 配置了文件名则按大小滚动写文件
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	f := cfg.Log.File
	if f.Filename != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, f.Filename, f.MaxSizeMB, f.MaxBackups, f.MaxAgeDays, f.Compress)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

// Build 组装全部依赖；返回的 cleanup 负责关闭缓存与数据库连接
func Build(cfg *config.Config, log *zap.Logger) (router.Deps, func(), error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToWriter(log.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return router.Deps{}, nil, fmt.Errorf("open database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := migrateOrClose(db); err != nil {
			return router.Deps{}, nil, err
		}
		log.Info("automigrate done")
	}

	// redis 未配置时为 nil，统计直接查库
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unreachable, stats served uncached until it recovers", zap.Error(err))
		}
		cancel()
	}

	jwter := &auth.JWTer{
		Secret:   []byte(cfg.JWT.Secret),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      time.Duration(cfg.JWT.DurationDays) * 24 * time.Hour,
	}

	svc := service.New(repo.New(db), c, jwter, log, service.Options{
		GrantRequestedRole: cfg.Auth.GrantRequestedRole,
		MinPasswordLength:  cfg.Auth.MinPasswordLength,
		StatsTTL:           time.Duration(cfg.Redis.StatsTTLSec) * time.Second,
	})

	cleanup := func() {
		if err := c.Close(); err != nil {
			log.Warn("cache close", zap.Error(err))
		}
		closeDB(db)
	}
	return router.Deps{Log: log, DB: db, Cache: c, JWT: jwter, Services: svc, Config: cfg}, cleanup, nil
}

// migrateOrClose 迁移失败时关闭连接池，调用方拿不到 cleanup
func migrateOrClose(db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

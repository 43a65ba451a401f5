package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-community-hub/internal/app"
	"go-community-hub/internal/core/config"
	"go-community-hub/internal/core/database"
	"go-community-hub/internal/core/server"
	"go-community-hub/internal/transport/http/router"
)

type env struct {
	cfg     *config.Config
	log     *zap.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	e := &env{}

	root := &cobra.Command{
		Use:           "community-admin",
		Short:         "Community hub admin console and maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgPath == "" {
				cfgPath = os.Getenv("CONFIG_PATH")
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log, e.cleanup = app.NewLogger(cfg)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.cleanup != nil {
				e.cleanup()
			}
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")

	root.AddCommand(serveCmd(e), migrateCmd(e), seedAdminCmd(e), promoteCmd(e))
	return root
}

// serve 启动管理端 HTTP（/admin/v1）
func serveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, closeDeps, err := app.Build(e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeDeps()

			r := router.NewAdminEngine(deps)
			hc := e.cfg.App.HTTP
			addr := server.Addr(e.cfg.App.Admin.Host, e.cfg.App.Admin.Port)
			srv := server.BuildServer(addr, r,
				time.Duration(hc.ReadTimeoutSec)*time.Second,
				time.Duration(hc.WriteTimeoutSec)*time.Second,
				time.Duration(hc.IdleTimeoutSec)*time.Second,
			)

			errCh := make(chan error, 1)
			go func() { errCh <- server.StartHTTP(srv, e.log) }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("admin api: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutCtx); err != nil {
				return err
			}
			e.log.Info("admin api stopped gracefully")
			return nil
		},
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(*cobra.Command, []string) error {
			e.cfg.DB.AutoMigrate = false
			deps, closeDeps, err := app.Build(e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeDeps()
			if err := database.Migrate(deps.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			e.log.Info("migrate done")
			return nil
		},
	}
}

// seed-admin 幂等：已存在则只补齐 Admin 角色
func seedAdminCmd(e *env) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, closeDeps, err := app.Build(e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeDeps()
			u, created, err := deps.Services.Users.SeedAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) created=%t\n", u.Email, u.ID, created)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func promoteCmd(e *env) *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant a role to an existing user by email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, closeDeps, err := app.Build(e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeDeps()
			u, err := deps.Services.Users.GrantByEmail(cmd.Context(), email, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s roles=%v\n", u.Email, u.Roles.Strings())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&role, "role", "Admin", "role to grant (Admin, User, Volunteer, Donor)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

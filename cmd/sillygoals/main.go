// Command sillygoals runs the goal-tracking web app.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sillygoals/sillygoals/internal/auth"
	"github.com/sillygoals/sillygoals/internal/config"
	"github.com/sillygoals/sillygoals/internal/email"
	apphttp "github.com/sillygoals/sillygoals/internal/http"
	"github.com/sillygoals/sillygoals/internal/observability/logger"
	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store"
	"github.com/sillygoals/sillygoals/internal/store/postgres"
	"github.com/sillygoals/sillygoals/internal/webauthn"
)

var configPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "sillygoals",
		Short:         "Silly Goals web app",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := postgres.Connect(ctx, cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.EnsureGlobalTones(ctx, store.GlobalTones()); err != nil {
				return err
			}

			sessions, closeSessions, err := newSessionManager(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSessions()

			sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From,
				cfg.SMTP.Username, cfg.SMTP.Password)
			dispatcher := email.NewDispatcher(sender)

			flows := auth.NewFlows(st.Users(), dispatcher, cfg.CodeTTL())
			resolver := auth.NewResolver(st.Users())

			passkeys, err := webauthn.NewCoordinator(webauthn.Config{
				RPID:          rpID(cfg),
				RPDisplayName: cfg.WebAuthn.RPDisplayName,
				Origin:        cfg.Server.BaseURL,
			}, st.Users(), st.Credentials(), flows)
			if err != nil {
				return err
			}

			render, err := apphttp.NewRenderer()
			if err != nil {
				return err
			}
			controllers := apphttp.NewControllers(render, flows, resolver, passkeys, st)

			metricsHandler, err := apphttp.RegisterMetrics(nil)
			if err != nil {
				return err
			}

			router := apphttp.NewRouter(controllers, sessions)
			server := apphttp.NewServer(cfg.Server.Addr, router, cfg.Server.MetricsAddr, metricsHandler)
			return server.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return postgres.Migrate(cmd.Context(), cfg.Storage.DSN)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the global tones if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := postgres.Connect(cmd.Context(), cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.EnsureGlobalTones(cmd.Context(), store.GlobalTones())
		},
	}
}

func newSessionManager(ctx context.Context, cfg *config.Config) (*session.Manager, func(), error) {
	opts := session.ManagerOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.SessionTTL(),
		Secure:     cfg.Session.Secure,
	}

	switch cfg.Session.Driver {
	case "redis":
		rs := session.NewRedisStore(cfg.Session.Redis.Addr, cfg.Session.Redis.DB)
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("session redis: %w", err)
		}
		return session.NewManager(rs, opts), func() { _ = rs.Close() }, nil
	case "memory", "":
		ms := session.NewMemoryStore(opts.TTL)
		return session.NewManager(ms, opts), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}

// rpID is the configured relying-party id, defaulting to the base
// URL's hostname.
func rpID(cfg *config.Config) string {
	if cfg.WebAuthn.RPID != "" {
		return cfg.WebAuthn.RPID
	}
	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil {
		return "localhost"
	}
	return u.Hostname()
}

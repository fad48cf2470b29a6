package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	wbconfig "github.com/wildebeest-nlp/wildebeest/internal/cli/config"
	"github.com/wildebeest-nlp/wildebeest/internal/cli/ui"
	"github.com/wildebeest-nlp/wildebeest/internal/historystore"
	"github.com/wildebeest-nlp/wildebeest/internal/web/auth"
	"github.com/wildebeest-nlp/wildebeest/internal/web/ratelimit"
	"github.com/wildebeest-nlp/wildebeest/internal/web/reportapi"
	"github.com/wildebeest-nlp/wildebeest/internal/web/server"
)

var (
	serveClientID     string
	serveClientSecret string
	serveRedisAddr    string
	serveNoColor      bool
)

// NewServeCommand creates the serve command: a small HTTP API (spec.md
// §6's report, over bearer-token auth) backed by whatever analyze runs
// are submitted to it.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API over HTTP",
		Long: `Start an HTTP server exposing POST /runs (submit a corpus for analysis),
GET /runs/{id} (fetch the finished report), a websocket progress
stream at GET /runs/{id}/progress, and GET /admin/runs (run history for
operators), all gated by a bearer token issued from POST /auth/token.

Examples:
  wildebeest serve
  wildebeest serve --client-id ci --client-secret s3cr3t
  wildebeest serve --redis-addr localhost:6379`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveClientID, "client-id", "default", "Bootstrap API client ID")
	cmd.Flags().StringVar(&serveClientSecret, "client-secret", "", "Bootstrap API client secret (generated if empty)")
	cmd.Flags().StringVar(&serveRedisAddr, "redis-addr", "", "Redis address for a shared /auth/token rate limiter (in-process token bucket if empty)")
	cmd.Flags().BoolVar(&serveNoColor, "no-color", false, "Disable ANSI color in startup output")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	infoColor := color.New(color.FgCyan)
	if serveNoColor {
		infoColor.DisableColor()
	}

	fileCfg, err := wbconfig.Load()
	if err != nil {
		fileCfg = &wbconfig.Config{}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	out := cmd.OutOrStdout()
	summary := ui.NewKeyValueTable(out, serveNoColor)

	var history historystore.Store
	var historyErr error
	_ = ui.WithProgress(out, "Opening history store", 1, serveNoColor, func(bar *ui.ProgressBar) error {
		history, historyErr = openHistoryStore(cmd.Context(), fileCfg.History)
		bar.Add(1)
		return nil // history errors are reported below, not fatal: serve runs without persistence
	})
	if history != nil {
		defer history.Close()
		summary.AddRow("History backend", fmt.Sprintf("%s (%s)", fileCfg.History.Driver, fileCfg.History.DSN))
	} else {
		infoColor.Fprintf(cmd.ErrOrStderr(), "warning: run history disabled: %v\n", historyErr)
		summary.AddRow("History backend", "disabled")
	}

	secret := serveClientSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return fmt.Errorf("generating bootstrap client secret: %w", err)
		}
	}

	clients := reportapi.NewClientStore()
	if err := clients.IssueClient(serveClientID, secret, "admin"); err != nil {
		return fmt.Errorf("issuing bootstrap client: %w", err)
	}

	jwtSecret := fileCfg.Server.JWTSecret
	jwtSource := "config"
	if jwtSecret == "" {
		jwtSecret, err = randomSecret()
		if err != nil {
			return fmt.Errorf("generating JWT signing secret: %w", err)
		}
		jwtSource = "generated"
	}

	tokenLimiter, limiterDesc, err := newTokenLimiter(fileCfg)
	if err != nil {
		return fmt.Errorf("configuring rate limiter: %w", err)
	}

	authService := auth.NewAuthService(jwtSecret, 24*time.Hour)
	manager := reportapi.NewManager(sugar, history)

	handler := reportapi.NewRouter(reportapi.Options{
		Manager:      manager,
		Clients:      clients,
		AuthService:  authService,
		TokenLimiter: tokenLimiter,
	})

	addr := fmt.Sprintf("%s:%d", fileCfg.Server.Host, fileCfg.Server.Port)
	srvCfg := server.DefaultConfig(handler)
	srvCfg.Address = addr
	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("configuring server: %w", err)
	}

	summary.AddRow("Listening on", addr)
	summary.AddRow("Bootstrap client", fmt.Sprintf("%s / %s", serveClientID, secret))
	summary.AddRow("JWT secret", jwtSource)
	summary.AddRow("Token rate limiter", limiterDesc)
	summary.Render()
	fmt.Fprintln(out)

	endpoints := ui.NewTable(out, []string{"Method", "Path", "Requires"}, &ui.TableOptions{NoColor: serveNoColor})
	endpoints.AddRow("POST", "/auth/token", "client credentials")
	endpoints.AddRow("POST", "/runs", "runs.create")
	endpoints.AddRow("GET", "/runs/{id}", "runs.read")
	endpoints.AddRow("GET", "/runs/{id}/progress", "runs.read (websocket)")
	endpoints.AddRow("GET", "/admin/runs", "admin or operator role")
	endpoints.Render()
	fmt.Fprintln(out)

	shutdown := server.NewGracefulShutdown(srv, server.DefaultShutdownConfig())
	return shutdown.Start()
}

// newTokenLimiter builds the /auth/token rate limiter: a Redis-backed
// sliding window when --redis-addr or server.rate_limit_redis_addr
// names a Redis instance, so the limit is shared across a fleet of
// serve processes behind a load balancer; otherwise a single-process
// in-memory token bucket.
func newTokenLimiter(fileCfg *wbconfig.Config) (ratelimit.RateLimiter, string, error) {
	addr := serveRedisAddr
	if addr == "" {
		addr = fileCfg.Server.RateLimitRedisAddr
	}
	if addr == "" {
		return ratelimit.NewTokenBucketWithConfig(ratelimit.TokenBucketConfig{
			Capacity:        20,
			RefillRate:      time.Minute,
			CleanupInterval: 10 * time.Minute,
		}), "in-memory token bucket", nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	limiter, err := ratelimit.NewRedisRateLimiter(ratelimit.DefaultRedisRateLimiterConfig(client))
	if err != nil {
		return nil, "", err
	}
	return limiter, fmt.Sprintf("redis (%s)", addr), nil
}

func openHistoryStore(ctx context.Context, cfg wbconfig.HistoryConfig) (historystore.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return historystore.NewPostgres(ctx, cfg.DSN)
	case "sqlite", "":
		path := cfg.DSN
		if path == "" {
			path = "wildebeest.db"
		}
		return historystore.NewSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

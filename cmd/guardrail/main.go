// Aegis-guardrail is a standalone policy validation service for triage
// proposals. It serves the same validation rules the orchestrator applies
// locally, behind the discovery descriptor remote callers expect.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linnemanlabs/go-core/cfg"
	"github.com/linnemanlabs/go-core/health"
	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/httpserver"
	"github.com/linnemanlabs/go-core/log"
	v "github.com/linnemanlabs/go-core/version"

	"github.com/mwill20/MultiAgent-SOC/internal/authmw"
	"github.com/mwill20/MultiAgent-SOC/internal/guardrail"
	"github.com/mwill20/MultiAgent-SOC/internal/guardrailapi"
)

const appName = "aegis"
const component = "guardrail"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v.AppName = appName
	v.Component = component
	vi := v.Get()

	var (
		httpCfg httpserver.Config
		logCfg  log.Config
	)
	httpCfg.RegisterFlags(flag.CommandLine)
	logCfg.RegisterFlags(flag.CommandLine)

	var (
		port        int
		token       string
		showVersion bool
	)
	flag.IntVar(&port, "http-port", 8081, "guardrail listen TCP port (1..65535)")
	flag.StringVar(&token, "api-token", "", "bearer token required on validation requests (empty = no auth)")
	flag.BoolVar(&showVersion, "V", false, "Print version+build information and exit")

	flag.Parse()
	if showVersion {
		fmt.Printf(
			"%s (%s) %s (commit=%s, commit_date=%s, build_id=%s, build_date=%s, go=%s, dirty=%v)\n",
			vi.AppName, vi.Component, vi.Version, vi.Commit, vi.CommitDate, vi.BuildId, vi.BuildDate, vi.GoVersion,
			vi.VCSDirty != nil && *vi.VCSDirty,
		)
		return nil
	}

	// Env vars with prefix AEGIS_GUARDRAIL_ fill anything not set on the cmdline
	cfg.FillFromEnv(flag.CommandLine, "AEGIS_GUARDRAIL_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := errors.Join(
		httpCfg.Validate(),
		logCfg.Validate(),
	); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", port)
	}

	lg, err := log.New(logCfg.ToOptions(v.AppName))
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	L := lg.With("component", vi.Component)
	ctx = log.WithContext(ctx, L)

	L.Info(ctx, "initializing guardrail service",
		"version", vi.Version,
		"commit", vi.Commit,
		"http_port", port,
		"auth_enabled", token != "",
	)

	liveness := health.Fixed(true, "")

	r := chi.NewRouter()
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(httpmw.AnnotateHTTPRoute)
	r.Use(httpmw.AccessLog())
	r.Use(httpmw.MaxBody(1024 * 64))
	r.Use(authmw.BearerToken(token))

	r.Get("/-/healthy", health.HealthzHandler(liveness))

	guardrailapi.New(L, guardrail.NewHeuristic()).RegisterRoutes(r)

	var h http.Handler = r
	h = httpmw.WithLogger(L)(h)
	h = httpmw.RequestID("X-Request-Id")(h)
	h = httpmw.Recover(L, nil)(h)
	h = httpmw.SecurityHeaders(h)

	httpOpts, err := httpCfg.ToOptions()
	if err != nil {
		L.Error(ctx, err, "invalid http config")
		return err
	}

	httpStop, err := httpserver.Start(ctx, fmt.Sprintf(":%d", port), h, L, httpOpts)
	if err != nil {
		L.Error(ctx, err, "failed to start http listener")
		return err
	}

	<-ctx.Done()

	L.Info(context.Background(), "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpStop(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "http server shutdown")
	}

	L.Info(context.Background(), "shutdown complete")
	return nil
}

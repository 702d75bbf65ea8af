// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"activation-service/internal/config"
	apihttp "activation-service/internal/infra/api"
	pg "activation-service/internal/infra/db/postgres"
	"activation-service/internal/infra/logging"
	"activation-service/internal/infra/metrics"
	"activation-service/internal/infra/security"
	"activation-service/internal/infra/web"
	"activation-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Repositories ----
	codeRepo := pg.NewActivationCodeRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	activationRepo := pg.NewActivationRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	hasher := security.NewHasher()
	codeUC := usecase.NewCodeUseCase(codeRepo, txManager, logger)
	accountUC := usecase.NewAccountUseCase(userRepo, activationRepo, codeUC, hasher, txManager, logger)

	// ---- Metrics ----
	metrics.MustRegister()
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Public API server ----
	apiServer := apihttp.NewServer(codeUC, accountUC, logger)
	publicSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: apiServer.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.API.Port).Msg("public API listening")
		if err := publicSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("public API server failed")
			cancel()
		}
	}()

	// ---- Admin server ----
	authMgr := web.NewAuthManager(cfg.Admin.SessionSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	adminServer := web.NewServer(codeUC, accountUC, authMgr, cfg.Admin.Username, cfg.Admin.Password, logger)
	adminMux := http.NewServeMux()
	adminServer.RegisterRoutes(adminMux)
	adminSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminMux,
	}
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("admin server listening")
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server failed")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := publicSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("public API shutdown")
	}
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("admin server shutdown")
	}
}

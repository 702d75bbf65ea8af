// Seeds a handful of demo activation codes for local testing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"activation-service/internal/config"
	"activation-service/internal/domain"
	pg "activation-service/internal/infra/db/postgres"
	"activation-service/internal/infra/logging"
	"activation-service/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	codeUC := usecase.NewCodeUseCase(pg.NewActivationCodeRepo(pool), pg.NewTxManager(pool), logger)

	seed := []struct {
		Value string
		Tier  string
	}{
		{"fG956kGo9", "forever"},
		{"MONTH12345", "month"},
		{"WEEK67890", "week"},
		{"DAY54321", "day"},
		{"TESTFOREVER", "forever"},
	}

	now := time.Now()
	for _, s := range seed {
		_, err := codeUC.Issue(ctx, s.Value, s.Tier, now)
		switch {
		case errors.Is(err, domain.ErrCodeAlreadyExists):
			fmt.Printf("  - %s already present\n", s.Value)
		case err != nil:
			log.Fatalf("issue %s: %v", s.Value, err)
		default:
			fmt.Printf("  + %s (%s)\n", s.Value, s.Tier)
		}
	}
}

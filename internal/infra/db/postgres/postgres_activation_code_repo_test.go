//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/domain/ports/repository"
)

func TestActivationCodeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewActivationCodeRepo(testPool)

	t.Run("should insert, find and consume a code", func(t *testing.T) {
		cleanup(t)

		code, err := model.NewActivationCode("TESTCODE123", model.TierMonth, time.Now())
		if err != nil {
			t.Fatalf("failed to build code: %v", err)
		}
		if err := repo.Insert(ctx, nil, code); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		found, err := repo.FindByValue(ctx, nil, "TESTCODE123")
		if err != nil {
			t.Fatalf("FindByValue failed: %v", err)
		}
		if found.Consumed {
			t.Error("expected a fresh code to be unconsumed")
		}
		if found.Tier != model.TierMonth {
			t.Errorf("expected tier 'month', got %q", found.Tier)
		}

		won, err := repo.Consume(ctx, nil, "TESTCODE123")
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if !won {
			t.Fatal("expected the first consume to win")
		}

		won, err = repo.Consume(ctx, nil, "TESTCODE123")
		if err != nil {
			t.Fatalf("second Consume failed: %v", err)
		}
		if won {
			t.Fatal("the second consume must not win")
		}

		found, err = repo.FindByValue(ctx, nil, "TESTCODE123")
		if err != nil {
			t.Fatalf("FindByValue after consume failed: %v", err)
		}
		if !found.Consumed {
			t.Error("expected the consumed flag to persist")
		}
	})

	t.Run("should reject a duplicate value", func(t *testing.T) {
		cleanup(t)

		first, _ := model.NewActivationCode("DUPLICATE1", model.TierWeek, time.Now())
		if err := repo.Insert(ctx, nil, first); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		second, _ := model.NewActivationCode("DUPLICATE1", model.TierDay, time.Now())
		if err := repo.Insert(ctx, nil, second); !errors.Is(err, domain.ErrCodeAlreadyExists) {
			t.Fatalf("expected ErrCodeAlreadyExists, got: %v", err)
		}
	})

	t.Run("should return ErrNotFound for an unknown value", func(t *testing.T) {
		cleanup(t)

		if _, err := repo.FindByValue(ctx, nil, "NOSUCHCODE"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("exactly one of N concurrent consumers wins", func(t *testing.T) {
		cleanup(t)

		code, _ := model.NewActivationCode("RACEDCODE1", model.TierForever, time.Now())
		if err := repo.Insert(ctx, nil, code); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		tm := NewTxManager(testPool)
		const workers = 8
		var wg sync.WaitGroup
		wins := make(chan bool, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
					won, err := repo.Consume(ctx, tx, "RACEDCODE1")
					if err != nil {
						return err
					}
					wins <- won
					return nil
				})
				if err != nil {
					t.Errorf("transaction failed: %v", err)
				}
			}()
		}
		wg.Wait()
		close(wins)

		winners := 0
		for won := range wins {
			if won {
				winners++
			}
		}
		if winners != 1 {
			t.Fatalf("expected exactly one winner, got %d", winners)
		}
	})
}

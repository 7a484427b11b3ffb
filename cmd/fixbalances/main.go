package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/omliv423/money-tracker-sub001/internal/config"
	"github.com/omliv423/money-tracker-sub001/internal/db"
	"github.com/omliv423/money-tracker-sub001/internal/logger"
	"github.com/omliv423/money-tracker-sub001/internal/money"
	"github.com/omliv423/money-tracker-sub001/internal/services"
	"github.com/omliv423/money-tracker-sub001/internal/store"
)

// fixbalances recomputes every active account's balance from the full
// transaction history and repairs any cached value that drifted. Safe to run
// repeatedly; a second pass over a healthy book reports nothing.
func main() {
	accountID := flag.String("account", "", "reconcile a single account instead of the whole book")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.AppEnv)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer database.Close()

	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	reconciler := services.NewReconciler(accounts, transactions, database, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *accountID != "" {
		balance, err := reconciler.ReconcileAccount(ctx, *accountID)
		if err != nil {
			log.Fatal().Err(err).Str("account_id", *accountID).Msg("reconciliation failed")
		}
		fmt.Printf("%s\t%s\n", *accountID, money.FormatMinor(balance))
		return
	}

	drifts, err := reconciler.ReconcileAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation pass failed")
	}
	if len(drifts) == 0 {
		fmt.Println("all balances in sync")
		return
	}
	failed := 0
	fmt.Printf("%-36s  %-20s  %12s  %12s  %12s\n", "ACCOUNT", "NAME", "STORED", "CALCULATED", "DIFFERENCE")
	for _, drift := range drifts {
		fmt.Printf("%-36s  %-20s  %12s  %12s  %12s\n",
			drift.AccountID,
			drift.AccountName,
			money.FormatMinor(drift.StoredBalance),
			money.FormatMinor(drift.CalculatedBalance),
			money.FormatMinor(drift.Difference),
		)
		if drift.PersistError != "" {
			failed++
			fmt.Printf("  persist failed: %s\n", drift.PersistError)
		}
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("some corrections were not persisted")
		os.Exit(1)
	}
}

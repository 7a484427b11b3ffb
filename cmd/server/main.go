package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omliv423/money-tracker-sub001/internal/config"
	"github.com/omliv423/money-tracker-sub001/internal/db"
	"github.com/omliv423/money-tracker-sub001/internal/handlers"
	"github.com/omliv423/money-tracker-sub001/internal/logger"
	"github.com/omliv423/money-tracker-sub001/internal/services"
	"github.com/omliv423/money-tracker-sub001/internal/store"
	"github.com/omliv423/money-tracker-sub001/internal/websocket"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppEnv)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	categories := store.NewCategoryStore(database)
	transactions := store.NewTransactionStore(database)
	quick := store.NewQuickEntryStore(database)
	recurring := store.NewRecurringStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	reconciler := services.NewReconciler(accounts, transactions, database, log)
	entries := services.NewEntryService(txRunner, accounts, transactions, quick, recurring, audit, reconciler, hub, log)

	handler := handlers.New(txRunner, cfg, users, accounts, categories, transactions, quick, recurring, audit, entries, reconciler, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("money tracker API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("shutdown error")
	}
}

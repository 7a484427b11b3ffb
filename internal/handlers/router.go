package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/omliv423/money-tracker-sub001/internal/config"
	"github.com/omliv423/money-tracker-sub001/internal/db"
	"github.com/omliv423/money-tracker-sub001/internal/middleware"
	"github.com/omliv423/money-tracker-sub001/internal/websocket"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	categories   CategoryStore
	transactions TransactionStore
	quick        QuickEntryStore
	recurring    RecurringStore
	audit        AuditStore
	entries      EntryService
	reconciler   ReconcilerService
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, categories CategoryStore, transactions TransactionStore, quick QuickEntryStore, recurring RecurringStore, audit AuditStore, entries EntryService, reconciler ReconcilerService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		quick:        quick,
		recurring:    recurring,
		audit:        audit,
		entries:      entries,
		reconciler:   reconciler,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{id}/balance", h.GetBalance)
		r.Post("/{id}/reconcile", h.ReconcileAccount)
		r.Delete("/{id}", h.DeactivateAccount)
	})
	router.Route("/transactions", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListTransactions)
		r.Post("/", h.CreateTransaction)
		r.Post("/transfer", h.Transfer)
		r.Post("/{id}/settle", h.Settle)
		r.Delete("/{id}", h.DeleteTransaction)
	})
	router.Route("/quick-entries", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListQuickEntries)
		r.Post("/", h.CreateQuickEntry)
		r.Post("/{id}/record", h.RecordQuickEntry)
	})
	router.Route("/recurring", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListRecurring)
		r.Post("/", h.CreateRecurring)
		r.Post("/{id}/register", h.RegisterRecurring)
	})
	router.Route("/categories", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
	})
	router.Get("/ws/balances", h.WSBalances)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.users)).Post("/reconcile", h.Reconcile)
		r.With(middleware.RequireAdmin(h.users)).Get("/audit", h.ListAuditLogs)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

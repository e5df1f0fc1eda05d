package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/safar/sweet-shop/internal/config"
	"github.com/safar/sweet-shop/internal/metrics"
	"github.com/safar/sweet-shop/internal/store"
)

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   store.Store
	metrics *metrics.AppMetrics
	server  *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, st store.Store, m *metrics.AppMetrics) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		metrics: m,
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Router builds the full route table. Exposed so handler tests can exercise
// routes and guards without binding a listener.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/", s.rootHandler()).Methods("GET")

	r.HandleFunc("/api/auth/register", s.registerHandler()).Methods("POST")
	r.HandleFunc("/api/auth/login", s.loginHandler()).Methods("POST")

	r.HandleFunc("/api/sweets", s.authenticate(s.createSweetHandler())).Methods("POST")
	r.HandleFunc("/api/sweets", s.authenticate(s.listSweetsHandler())).Methods("GET")
	r.HandleFunc("/api/sweets/search", s.authenticate(s.searchSweetsHandler())).Methods("GET")
	r.HandleFunc("/api/sweets/{id:[0-9]+}", s.authenticate(s.updateSweetHandler())).Methods("PUT")
	r.HandleFunc("/api/sweets/{id:[0-9]+}", s.authenticate(s.requireAdmin(s.deleteSweetHandler()))).Methods("DELETE")

	// Inventory operations are reachable under both prefixes; guards are
	// identical on each.
	for _, prefix := range []string{"/api/sweets", "/api/inventory"} {
		r.HandleFunc(prefix+"/{id:[0-9]+}/purchase", s.authenticate(s.purchaseHandler())).Methods("POST")
		r.HandleFunc(prefix+"/{id:[0-9]+}/restock", s.authenticate(s.requireAdmin(s.restockHandler()))).Methods("POST")
	}
	r.HandleFunc("/api/inventory/checkout", s.authenticate(s.checkoutHandler())).Methods("POST")

	return r
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", slog.String("port", s.cfg.Server.Port))
	return s.server.ListenAndServe()
}

func (s *Server) MustStart() {
	if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("failed to start server: " + err.Error())
	}
}

func (s *Server) Stop(ctx context.Context) error {
	defer s.logger.Info("Server stopped")
	return s.server.Shutdown(ctx)
}

func (s *Server) rootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondMessage(w, http.StatusOK, "Sweet Shop API")
	}
}

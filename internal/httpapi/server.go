package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NgigiN/fundfusion/internal/ledger"
)

// Funds is the part of the funds service the API serves.
type Funds interface {
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
	Deposit(ctx context.Context, amount decimal.Decimal) (ledger.Transaction, error)
	Withdraw(ctx context.Context, amount decimal.Decimal) (ledger.Transaction, error)
	Allocate(category string, amount decimal.Decimal) error
	Revalue(category string, value decimal.Decimal) error
	Portfolio() ledger.Snapshot
	History(filter ledger.TxType) []ledger.Transaction
	MonthlyFlow(since time.Time) []ledger.MonthlyFlow
	CooldownRemaining(ctx context.Context) (time.Duration, error)
}

type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

func DefaultServerConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   40 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

type Server struct {
	router    *mux.Router
	server    *http.Server
	funds     Funds
	gatherer  prometheus.Gatherer
	config    ServerConfig
	logger    *zap.Logger
	startTime time.Time

	// Optional; reports the chat bot gateway in /health.
	BotConnected func() bool
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func NewServer(config ServerConfig, svc Funds, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		funds:     svc,
		gatherer:  gatherer,
		config:    config,
		logger:    logger.Named("http"),
		startTime: time.Now(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.timeoutMiddleware)

	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", s.portfolio).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.transactions).Methods(http.MethodGet)
	api.HandleFunc("/withdrawals", s.withdrawalHistory).Methods(http.MethodGet)
	api.HandleFunc("/flows/monthly", s.monthlyFlow).Methods(http.MethodGet)
	api.HandleFunc("/cooldown", s.cooldown).Methods(http.MethodGet)

	api.HandleFunc("/wallet/connect", s.connect).Methods(http.MethodPost)
	api.HandleFunc("/wallet/disconnect", s.disconnect).Methods(http.MethodPost)
	api.HandleFunc("/deposits", s.deposit).Methods(http.MethodPost)
	api.HandleFunc("/withdrawals", s.withdraw).Methods(http.MethodPost)
	api.HandleFunc("/allocations", s.allocate).Methods(http.MethodPost)
	api.HandleFunc("/revaluations", s.revalue).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Info("Request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapper.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.config.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

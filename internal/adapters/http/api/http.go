// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/adapters/repository"
	"github.com/goldedge/rewards/internal/domain/behavior"
	"github.com/goldedge/rewards/internal/domain/fraud"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/logger"
)

const (
	maxBodyBytes     = 1 << 20
	defaultMaxLimit  = 100
	requestTimeout   = 30 * time.Second
	idempotencyKey   = "Idempotency-Key"
	statusClientGone = 499
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TierDependencies
	UserDependencies
	TaskDependencies
	RewardDependencies
	WalletDependencies
	EngineDependencies
	LeaderboardDependencies
	RankDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	tierHandler        *TierHandler
	userHandler        *UserHandler
	taskHandler        *TaskHandler
	rewardHandler      *RewardHandler
	walletHandler      *WalletHandler
	engineHandler      *EngineHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit int
}

// WithMaxLimit caps the leaderboard page size.
func WithMaxLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		tierHandler:        NewTierHandler(deps),
		userHandler:        NewUserHandler(deps),
		taskHandler:        NewTaskHandler(deps),
		rewardHandler:      NewRewardHandler(deps),
		walletHandler:      NewWalletHandler(deps),
		engineHandler:      NewEngineHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, o.maxLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))

	r.Route("/tiers", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.tierHandler.HandleList, "tiers"))
		r.Get("/{tierID}", MetricsMiddleware(s.tierHandler.HandleGet, "tier"))
	})

	r.Post("/users", MetricsMiddleware(s.userHandler.HandleRegister, "register"))
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.userHandler.HandleGet, "user"))
		r.Post("/activate", MetricsMiddleware(s.userHandler.HandleActivate, "activate"))
		r.Post("/bonus", MetricsMiddleware(s.userHandler.HandleBonus, "bonus"))
		r.Get("/team", MetricsMiddleware(s.userHandler.HandleTeam, "team"))
		r.Get("/rank", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))

		r.Get("/tasks", MetricsMiddleware(s.taskHandler.HandleList, "tasks"))
		r.Get("/tasks/search", MetricsMiddleware(s.taskHandler.HandleSearch, "tasks_search"))
		r.Post("/tasks/{taskID}/complete", MetricsMiddleware(s.taskHandler.HandleComplete, "task_complete"))

		r.Get("/insights", MetricsMiddleware(s.rewardHandler.HandleInsights, "insights"))
		r.Post("/wheel/spin", MetricsMiddleware(s.rewardHandler.HandleSpin, "spin"))

		r.Post("/transactions", MetricsMiddleware(s.walletHandler.HandleRequest, "transactions"))
	})

	r.Route("/admin/users/{userID}", func(r chi.Router) {
		r.Post("/suspend", MetricsMiddleware(s.userHandler.HandleSuspend, "suspend"))
		r.Post("/withdrawals/{txID}/{decision}", MetricsMiddleware(s.walletHandler.HandleReview, "review"))
	})

	r.Route("/engine", func(r chi.Router) {
		r.Post("/tasks", MetricsMiddleware(s.engineHandler.HandleTasks, "engine_tasks"))
		r.Post("/analyze", MetricsMiddleware(s.engineHandler.HandleAnalyze, "engine_analyze"))
		r.Post("/assess", MetricsMiddleware(s.engineHandler.HandleAssess, "engine_assess"))
	})
}

// Router returns a chi router with the standard middleware stack and every
// API route attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	s.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps service and engine errors onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidReferral),
		errors.Is(err, tier.ErrInvalidTier),
		errors.Is(err, behavior.ErrMalformedSnapshot),
		errors.Is(err, fraud.ErrInvalidAmount),
		errors.Is(err, wallet.ErrBelowMinimum),
		errors.Is(err, wallet.ErrInvalidKind),
		errors.Is(err, wallet.ErrInvalidMethod),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, tasks.ErrTaskNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrSuspended),
		errors.Is(err, service.ErrNotActivated):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrSpinLimit):
		return http.StatusTooManyRequests, "limit_reached"
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrBonusClaimed),
		errors.Is(err, service.ErrTierDowngrade),
		errors.Is(err, tasks.ErrTaskCompleted),
		errors.Is(err, wallet.ErrInvalidTransition):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient_balance"
	case errors.Is(err, context.Canceled):
		return statusClientGone, "client_closed_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status its kind maps to. Server errors are
// logged.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("requestID", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	}
	writeError(w, status, code, Wrap(op, err))
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decode(r *http.Request, w http.ResponseWriter, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF) && optional:
			return nil
		default:
			return fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	}
	return nil
}

// readBody returns the raw request body.
func readBody(r *http.Request, w http.ResponseWriter) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return data, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrBadRequest, name, raw)
	}
	return n, nil
}

// Package server exposes the split ledger over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"gitlab.com/minthway/splitledger/internal/logger"
	"gitlab.com/minthway/splitledger/internal/models"
	"gitlab.com/minthway/splitledger/internal/settlement"
)

// MemberStore is the member registry surface the API needs.
type MemberStore interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id string) (*models.Member, error)
	List(ctx context.Context) ([]models.Member, error)
	Update(ctx context.Context, member *models.Member) error
}

// ExpenseStore is the personal expense surface the API needs.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByMemberID(ctx context.Context, memberID string, limit int) ([]models.Expense, error)
	GetTotalByMemberAndCategory(ctx context.Context, memberID, category string) (decimal.Decimal, error)
}

// BudgetStore is the budget surface the API needs.
type BudgetStore interface {
	Create(ctx context.Context, budget *models.Budget) error
	ListByMember(ctx context.Context, memberID string) ([]models.Budget, error)
}

// GroupLister lists a member's groups. Group reads and writes go
// through the settlement engine; listing is the one read that bypasses
// it.
type GroupLister interface {
	ListByMember(ctx context.Context, memberID string) ([]models.Group, error)
}

// Server wires the HTTP routes to the settlement engine and stores.
type Server struct {
	engine   *settlement.Engine
	members  MemberStore
	expenses ExpenseStore
	budgets  BudgetStore
	groups   GroupLister
	router   *mux.Router
}

// New creates a Server with all routes registered.
func New(engine *settlement.Engine, members MemberStore, expenses ExpenseStore, budgets BudgetStore, groups GroupLister) *Server {
	s := &Server{
		engine:   engine,
		members:  members,
		expenses: expenses,
		budgets:  budgets,
		groups:   groups,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(loggingMiddleware)

	api.HandleFunc("/members", s.handleCreateMember).Methods(http.MethodPost)
	api.HandleFunc("/members", s.handleListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}", s.handleGetMember).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}", s.handleUpdateMember).Methods(http.MethodPut)

	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/members/{memberId}/expenses", s.handleListExpenses).Methods(http.MethodGet)

	api.HandleFunc("/budgets", s.handleCreateBudget).Methods(http.MethodPost)
	api.HandleFunc("/members/{memberId}/budgets", s.handleListBudgets).Methods(http.MethodGet)

	api.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupId}", s.handleGetGroup).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}/groups", s.handleListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId}/payments", s.handleRecordPayment).Methods(http.MethodPost)

	api.HandleFunc("/members/{memberId}/reliability", s.handleReliability).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loggingMiddleware logs every API request with its duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses.
// Conflicts are 409 with a distinct message so clients know a retry is
// safe.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case models.IsNotFound(err):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case models.IsAlreadyPaid(err):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "group was modified concurrently, retry"})
	default:
		logger.Log.Error().Err(err).Msg("internal error")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

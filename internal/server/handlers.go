package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"gitlab.com/minthway/splitledger/internal/models"
	"gitlab.com/minthway/splitledger/internal/settlement"
)

const defaultExpenseLimit = 50

// dateFormat is the wire format for calendar dates.
const dateFormat = "2006-01-02"

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.Validationf("invalid request body: %v", err)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, models.Validationf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

// --- members ---

type memberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type memberResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func toMemberResponse(m *models.Member) memberResponse {
	return memberResponse{ID: m.ID, Name: m.Name, Email: m.Email}
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, models.Validationf("member name must not be empty"))
		return
	}
	if len(req.Name) > models.MaxNameLength {
		respondError(w, models.Validationf("member name exceeds %d characters", models.MaxNameLength))
		return
	}

	member := &models.Member{Name: strings.TrimSpace(req.Name), Email: req.Email}
	if err := s.members.Create(r.Context(), member); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMemberResponse(member))
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	member, err := s.members.GetByID(r.Context(), mux.Vars(r)["memberId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMemberResponse(member))
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.members.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]memberResponse, len(members))
	for i := range members {
		out[i] = toMemberResponse(&members[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, models.Validationf("member name must not be empty"))
		return
	}

	member := &models.Member{
		ID:    mux.Vars(r)["memberId"],
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
	}
	if err := s.members.Update(r.Context(), member); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMemberResponse(member))
}

// --- expenses ---

type expenseRequest struct {
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	IsRecurring   bool            `json:"is_recurring"`
	PaymentMethod string          `json:"payment_method"`
}

type expenseResponse struct {
	ID            int             `json:"id"`
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	IsRecurring   bool            `json:"is_recurring"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		MemberID:      e.MemberID,
		Amount:        e.Amount,
		Category:      e.Category,
		Date:          e.SpentOn.Format(dateFormat),
		Description:   e.Description,
		IsRecurring:   e.IsRecurring,
		PaymentMethod: e.PaymentMethod,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.Amount.IsNegative() {
		respondError(w, models.Validationf("amount must not be negative, got %s", req.Amount))
		return
	}
	if !models.ValidCategory(req.Category) {
		respondError(w, models.Validationf("unknown category %q", req.Category))
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondError(w, models.Validationf("description must not be empty"))
		return
	}
	spentOn, err := parseDate(req.Date)
	if err != nil {
		respondError(w, err)
		return
	}
	if _, err := s.members.GetByID(r.Context(), req.MemberID); err != nil {
		respondError(w, err)
		return
	}

	expense := &models.Expense{
		MemberID:      req.MemberID,
		Amount:        req.Amount.Round(2),
		Category:      req.Category,
		SpentOn:       spentOn,
		Description:   strings.TrimSpace(req.Description),
		IsRecurring:   req.IsRecurring,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.expenses.Create(r.Context(), expense); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]
	if _, err := s.members.GetByID(r.Context(), memberID); err != nil {
		respondError(w, err)
		return
	}

	limit := defaultExpenseLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	expenses, err := s.expenses.GetByMemberID(r.Context(), memberID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	respondJSON(w, http.StatusOK, out)
}

// --- budgets ---

type budgetRequest struct {
	MemberID string          `json:"member_id"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type budgetResponse struct {
	ID       int                 `json:"id"`
	MemberID string              `json:"member_id"`
	Category string              `json:"category"`
	Amount   decimal.Decimal     `json:"amount"`
	Spent    decimal.Decimal     `json:"spent"`
	Status   models.BudgetStatus `json:"status"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if !req.Amount.IsPositive() {
		respondError(w, models.Validationf("budget amount must be positive, got %s", req.Amount))
		return
	}
	if !models.ValidCategory(req.Category) {
		respondError(w, models.Validationf("unknown category %q", req.Category))
		return
	}
	if _, err := s.members.GetByID(r.Context(), req.MemberID); err != nil {
		respondError(w, err)
		return
	}

	budget := &models.Budget{
		MemberID: req.MemberID,
		Category: req.Category,
		Amount:   req.Amount.Round(2),
	}
	if err := s.budgets.Create(r.Context(), budget); err != nil {
		respondError(w, err)
		return
	}

	spent, err := s.expenses.GetTotalByMemberAndCategory(r.Context(), budget.MemberID, budget.Category)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, budgetResponse{
		ID:       budget.ID,
		MemberID: budget.MemberID,
		Category: budget.Category,
		Amount:   budget.Amount,
		Spent:    spent,
		Status:   budget.Status(spent),
	})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]
	if _, err := s.members.GetByID(r.Context(), memberID); err != nil {
		respondError(w, err)
		return
	}

	budgets, err := s.budgets.ListByMember(r.Context(), memberID)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		spent, err := s.expenses.GetTotalByMemberAndCategory(r.Context(), b.MemberID, b.Category)
		if err != nil {
			respondError(w, err)
			return
		}
		out[i] = budgetResponse{
			ID:       b.ID,
			MemberID: b.MemberID,
			Category: b.Category,
			Amount:   b.Amount,
			Spent:    spent,
			Status:   b.Status(spent),
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// --- groups & payments ---

type createGroupRequest struct {
	Name          string                     `json:"name"`
	Description   string                     `json:"description"`
	Category      string                     `json:"category"`
	TotalAmount   decimal.Decimal            `json:"total_amount"`
	Date          string                     `json:"date"`
	MemberIDs     []string                   `json:"member_ids"`
	CustomAmounts map[string]decimal.Decimal `json:"custom_amounts,omitempty"`
}

type groupMemberResponse struct {
	MemberID      string          `json:"member_id"`
	OwedAmount    decimal.Decimal `json:"owed_amount"`
	Paid          bool            `json:"paid"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

type groupResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Category    string                `json:"category"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Date        string                `json:"date"`
	Status      models.GroupStatus    `json:"status"`
	Members     []groupMemberResponse `json:"members"`
}

func (s *Server) toGroupResponse(g *models.Group) groupResponse {
	members := make([]groupMemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = groupMemberResponse{
			MemberID:      m.MemberID,
			OwedAmount:    m.OwedAmount,
			Paid:          m.Paid,
			PaidAt:        m.PaidAt,
			PaymentMethod: m.PaymentMethod,
		}
	}
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		TotalAmount: g.TotalAmount,
		Date:        g.OccurredOn.Format(dateFormat),
		Status:      s.engine.Status(g),
		Members:     members,
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	group, err := s.engine.CreateGroup(r.Context(), settlement.CreateGroupParams{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		TotalAmount:   req.TotalAmount,
		Date:          date,
		MemberIDs:     req.MemberIDs,
		CustomAmounts: req.CustomAmounts,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.toGroupResponse(group))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.engine.GetGroup(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.toGroupResponse(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]
	if _, err := s.members.GetByID(r.Context(), memberID); err != nil {
		respondError(w, err)
		return
	}

	groups, err := s.groups.ListByMember(r.Context(), memberID)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]groupResponse, len(groups))
	for i := range groups {
		out[i] = s.toGroupResponse(&groups[i])
	}
	respondJSON(w, http.StatusOK, out)
}

type recordPaymentRequest struct {
	MemberID      string `json:"member_id"`
	PaymentMethod string `json:"payment_method"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.MemberID == "" {
		respondError(w, models.Validationf("member_id is required"))
		return
	}

	group, err := s.engine.RecordPayment(r.Context(), mux.Vars(r)["groupId"], req.MemberID, req.PaymentMethod)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.toGroupResponse(group))
}

// --- reliability ---

type reliabilityResponse struct {
	MemberID    string `json:"member_id"`
	Score       int    `json:"score"`
	Rating      string `json:"rating"`
	OnTimeCount int    `json:"on_time_count"`
	LateCount   int    `json:"late_count"`
	TotalCount  int    `json:"total_count"`
}

func (s *Server) handleReliability(w http.ResponseWriter, r *http.Request) {
	score, err := s.engine.Score(r.Context(), mux.Vars(r)["memberId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reliabilityResponse{
		MemberID:    score.MemberID,
		Score:       score.Score,
		Rating:      score.Rating,
		OnTimeCount: score.OnTimeCount,
		LateCount:   score.LateCount,
		TotalCount:  score.TotalCount,
	})
}

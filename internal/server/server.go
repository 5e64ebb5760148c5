package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/yourorg/flightdesk/internal/budget"
	"github.com/yourorg/flightdesk/internal/catalog"
	"github.com/yourorg/flightdesk/internal/chat"
	"github.com/yourorg/flightdesk/internal/store"
	"github.com/yourorg/flightdesk/pkg/types"
)

var (
	//go:embed ui.html
	chatHTML string

	//go:embed budget.html
	budgetHTML string

	chatTemplate   = template.Must(template.New("chat").Parse(chatHTML))
	budgetTemplate = template.Must(template.New("budget").Parse(budgetHTML))
)

// Server exposes the chat assistant and the budget tracker over HTTP. Each
// browser client gets its own conversation session, keyed by a generated id
// the client echoes back with every message.
type Server struct {
	engine  *chat.Engine
	catalog *catalog.Catalog
	store   store.Store
	budget  *budget.Manager
	logger  *slog.Logger
	router  *mux.Router

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// New constructs a server with all routes registered.
func New(cat *catalog.Catalog, engine *chat.Engine, st store.Store, bm *budget.Manager, logger *slog.Logger) (*Server, error) {
	if cat == nil || engine == nil || st == nil || bm == nil {
		return nil, errors.New("server requires catalog, engine, store and budget manager")
	}
	s := &Server{
		engine:   engine,
		catalog:  cat,
		store:    st,
		budget:   bm,
		logger:   logger,
		router:   mux.NewRouter(),
		sessions: make(map[string]*chat.Session),
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the http handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/", s.handleChatPage).Methods(http.MethodGet)
	s.router.HandleFunc("/budget", s.handleBudgetPage).Methods(http.MethodGet)
	s.router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/cities", s.handleCities).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights", s.handleFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings", s.handleBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{number}", s.handleBooking).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodGet, http.MethodOptions)

	bud := api.PathPrefix("/budget").Subrouter()
	bud.HandleFunc("/settings", s.handleBudgetSettingsGet).Methods(http.MethodGet, http.MethodOptions)
	bud.HandleFunc("/settings", s.handleBudgetSettingsPut).Methods(http.MethodPut)
	bud.HandleFunc("/categories", s.handleCategoriesGet).Methods(http.MethodGet, http.MethodOptions)
	bud.HandleFunc("/categories", s.handleCategoriesPost).Methods(http.MethodPost)
	bud.HandleFunc("/expenses", s.handleExpensesGet).Methods(http.MethodGet, http.MethodOptions)
	bud.HandleFunc("/expenses", s.handleExpensesPost).Methods(http.MethodPost)
	bud.HandleFunc("/expenses/last", s.handleExpenseDeleteLast).Methods(http.MethodDelete, http.MethodOptions)
	bud.HandleFunc("/overview", s.reportHandler(s.budget.Overview)).Methods(http.MethodGet, http.MethodOptions)
	bud.HandleFunc("/analysis", s.reportHandler(s.budget.Analysis)).Methods(http.MethodGet, http.MethodOptions)
	bud.HandleFunc("/recommendations", s.reportHandler(s.budget.Recommendations)).Methods(http.MethodGet, http.MethodOptions)
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, chatTemplate)
}

func (s *Server) handleBudgetPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, budgetTemplate)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[req.SessionID]
	if !ok {
		req.SessionID = uuid.NewString()
		sess = chat.NewSession()
		s.sessions[req.SessionID] = sess
	}
	reply := s.engine.Process(sess, req.Message)
	step := sess.Step
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("chat turn", "session", req.SessionID, "step", step)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": req.SessionID,
		"reply":      reply,
		"step":       string(step),
	})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Cities())
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		http.Error(w, "from and to query parameters required", http.StatusBadRequest)
		return
	}
	offers, err := s.catalog.Lookup(from, to)
	if errors.Is(err, catalog.ErrSameCity) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, catalog.ErrRouteNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.store.ListBookings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	b, err := s.store.GetBooking(number)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.Summary()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleBudgetSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.BudgetSettings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleBudgetSettingsPut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MonthlySalary *float64 `json:"monthly_salary"`
		SavingsGoal   *float64 `json:"savings_goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.MonthlySalary != nil {
		if _, err := s.budget.SetMonthlySalary(*req.MonthlySalary); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.SavingsGoal != nil {
		if _, err := s.budget.SetSavingsGoal(*req.SavingsGoal); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	s.handleBudgetSettingsGet(w, r)
}

func (s *Server) handleCategoriesGet(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCategoriesPost(w http.ResponseWriter, r *http.Request) {
	var req types.BudgetCategory
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	msg, err := s.budget.SetCategory(req.Name, req.Budgeted, req.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": msg})
}

func (s *Server) handleExpensesGet(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	expenses, err := s.budget.RecentExpenses(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleExpensesPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	e, err := s.budget.AddExpense(req.Category, req.Amount, req.Description, req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleExpenseDeleteLast(w http.ResponseWriter, r *http.Request) {
	msg, err := s.budget.DeleteLastExpense()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": msg})
}

func (s *Server) reportHandler(fn func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := fn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"report": report})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func renderPage(w http.ResponseWriter, t *template.Template) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = t.Execute(w, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

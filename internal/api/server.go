package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"cashflow/internal/catalog"
	"cashflow/internal/config"
	"cashflow/internal/game"
	"cashflow/internal/retirement"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidAge           = errors.New("age must be between 18 and 100")
	ErrInvalidStartingMoney = errors.New("starting money must not be negative")
	ErrDuplicateRequest     = errors.New("duplicate idempotency key")
	ErrNoTaxYet             = errors.New("no turn has been taxed yet")
	ErrRetirementRejected   = errors.New("retirement transaction rejected")
	ErrRateLimited          = errors.New("too many requests")
)

const (
	defaultStartAge      = 25
	idempotencyKeepLimit = 512
)

// Server exposes one game over HTTP. Every handler touching the game holds
// mu, so the single-threaded game service never sees overlapping calls.
type Server struct {
	cfg    config.APIConfig
	log    *slog.Logger
	game   *game.Service
	feed   *Feed
	hub    *Hub
	mux    *chi.Mux
	detach func()
	// limiter is nil when cfg.RateLimit is zero.
	limiter *rate.Limiter

	mu        sync.Mutex
	seenKeys  map[string]struct{}
	keysOrder []string
	// inFlight holds keys whose command has not answered yet.
	inFlight map[string]struct{}
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service, feed *Feed) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if feed == nil {
		feed = NewFeed(0, nil)
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		game:     gameSvc,
		feed:     feed,
		hub:      NewHub(),
		mux:      chi.NewRouter(),
		seenKeys: map[string]struct{}{},
		inFlight: map[string]struct{}{},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	s.detach = s.hub.Attach(gameSvc)
	s.routes()
	return s
}

// Close detaches the event stream from the game.
func (s *Server) Close() {
	s.detach()
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		// Long-lived; outside the request timeout.
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/jobs", s.handleJobs)
			r.Get("/notifications", s.handleNotifications)

			r.Get("/state", s.handleState)
			r.Get("/investments", s.handleInvestments)
			r.Get("/history", s.handleHistory)
			r.Get("/tax", s.handleTax)
			r.Get("/retirement", s.handleRetirement)
			r.Get("/market", s.handleMarket)
			r.Get("/opportunities", s.handleOpportunities)

			r.Group(func(r chi.Router) {
				r.Use(s.idempotency)
				r.Post("/game", s.handleStartGame)
				r.Post("/turn", s.handleNextTurn)
				r.Post("/investments/buy", s.handleBuy)
				r.Post("/investments/loan", s.handleLoan)
				r.Post("/investments/{index}/sell", s.handleSell)
				r.Post("/retirement/contribute", s.handleContribute)
				r.Post("/retirement/withdraw", s.handleWithdraw)
			})
		})
	})
}

// idempotency rejects a replayed Idempotency-Key. A key is spent only when
// its command succeeds, so a failed command may be retried with the same
// key. Requests without one get a fresh key for logging.
func (s *Server) idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, supplied := idempotencyKey(r)
		s.log.Debug("command", "path", r.URL.Path, "idempotency_key", key, "request_id", middleware.GetReqID(r.Context()))
		if !supplied {
			next.ServeHTTP(w, r)
			return
		}

		s.mu.Lock()
		_, seen := s.seenKeys[key]
		_, pending := s.inFlight[key]
		if !seen && !pending {
			s.inFlight[key] = struct{}{}
		}
		s.mu.Unlock()
		if seen || pending {
			writeError(w, http.StatusConflict, ErrDuplicateRequest.Error())
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			s.mu.Lock()
			delete(s.inFlight, key)
			if status >= 200 && status < 300 {
				s.rememberKey(key)
			}
			s.mu.Unlock()
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.log.Warn("rate limit exceeded", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			writeError(w, http.StatusTooManyRequests, ErrRateLimited.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rememberKey(key string) {
	s.seenKeys[key] = struct{}{}
	s.keysOrder = append(s.keysOrder, key)
	if len(s.keysOrder) > idempotencyKeepLimit {
		delete(s.seenKeys, s.keysOrder[0])
		s.keysOrder = s.keysOrder[1:]
	}
}

func (s *Server) handleJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.game.Catalog().Jobs()})
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notifications": s.feed.Recent()})
}

func (s *Server) started() error {
	if !s.game.Started() {
		return game.ErrNotStarted
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	st := s.game.State()
	writeJSON(w, http.StatusOK, map[string]any{"gameState": st, "netWorth": st.NetWorth()})
}

func (s *Server) handleInvestments(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	owned := s.game.Investments()
	out := make([]game.InvestmentDetail, 0, len(owned))
	for i := range owned {
		d, err := s.game.InvestmentDetail(i)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"investments": out})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turnHistory": s.game.History()})
}

func (s *Server) handleTax(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	calc, ok := s.game.LastTax()
	if !ok {
		writeDomainError(w, ErrNoTaxYet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lastTaxCalculation": calc,
		"yearlyTaxesPaid":    s.game.Player().YearlyTaxesPaid,
	})
}

func (s *Server) handleRetirement(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	plan, _ := s.game.RetirementPlan()
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": s.game.RetirementAccounts(),
		"plan":     plan,
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game.Market())
}

func (s *Server) handleOpportunities(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": s.game.Opportunities(),
		"events":        s.game.CurrentEvents(),
	})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Job           string  `json:"job"`
		Age           int     `json:"age"`
		StartingMoney float64 `json:"startingMoney"`
		Name          string  `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Age == 0 {
		in.Age = defaultStartAge
	}
	if in.Age < 18 || in.Age > 100 {
		writeDomainError(w, ErrInvalidAge)
		return
	}
	if in.StartingMoney < 0 {
		writeDomainError(w, ErrInvalidStartingMoney)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	job, err := s.game.Catalog().JobByTitle(in.Job)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.game.StartGame(job, in.Age, in.StartingMoney, in.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"gameState": s.game.State()})
}

func (s *Server) handleNextTurn(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.game.NextTurn()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turn": entry, "player": s.game.Player(), "won": s.game.Won()})
}

type indexInput struct {
	Index int `json:"index"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var in indexInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	opp, err := s.game.Opportunity(in.Index)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.game.CanBuy(opp) {
		writeDomainError(w, fmt.Errorf("%w: %s costs %.0f", game.ErrInsufficientFunds, opp.Name, opp.Amount))
		return
	}
	if err := s.game.BuyInvestment(opp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"investment": opp, "player": s.game.Player(), "won": s.game.Won()})
}

func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	var in indexInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	opp, err := s.game.Opportunity(in.Index)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.game.BuyInvestmentWithLoan(opp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"investment": opp, "player": s.game.Player(), "won": s.game.Won()})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.game.SellInvestment(index) {
		writeDomainError(w, game.ErrInvestmentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": s.game.Player()})
}

type retirementInput struct {
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	s.handleRetirementMove(w, r, s.game.ContributeToRetirement)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleRetirementMove(w, r, s.game.WithdrawFromRetirement)
}

func (s *Server) handleRetirementMove(w http.ResponseWriter, r *http.Request, move func(retirement.AccountType, float64) (bool, error)) {
	var in retirementInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.started(); err != nil {
		writeDomainError(w, err)
		return
	}
	ok, err := move(retirement.AccountType(strings.TrimSpace(in.Account)), in.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeDomainError(w, ErrRetirementRejected)
		return
	}
	plan, _ := s.game.RetirementPlan()
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": s.game.RetirementAccounts(),
		"plan":     plan,
		"player":   s.game.Player(),
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotStarted), errors.Is(err, ErrDuplicateRequest):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvestmentNotFound), errors.Is(err, game.ErrOpportunityNotFound),
		errors.Is(err, catalog.ErrJobNotFound), errors.Is(err, ErrNoTaxYet):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, ErrRetirementRejected),
		errors.Is(err, ErrInvalidAge), errors.Is(err, ErrInvalidStartingMoney):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, retirement.ErrUnknownAccount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key, true
	}
	return uuid.NewString(), false
}

// Package main provides the unified desk service:
// - Scoring/bias: wallet credibility and aggregate bias on demand
// - Decisioning: escalation gate, analysis budget, policy engine, risk monitor
// - Execution: kill-switch-guarded order submission with telemetry
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"whale-desk/internal/alerts"
	"whale-desk/internal/analysis"
	"whale-desk/internal/bias"
	"whale-desk/internal/budget"
	"whale-desk/internal/cache"
	"whale-desk/internal/domain"
	"whale-desk/internal/escalation"
	"whale-desk/internal/exchange"
	"whale-desk/internal/execution"
	"whale-desk/internal/killswitch"
	"whale-desk/internal/observability"
	"whale-desk/internal/queue"
	"whale-desk/internal/risk"
	"whale-desk/internal/scoring"
	"whale-desk/internal/storage"
	chstore "whale-desk/internal/storage/clickhouse"
	"whale-desk/internal/storage/memory"
	"whale-desk/internal/storage/migrations"
	pgstore "whale-desk/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	logger *log.Logger

	stores     *allStores
	scorer     *scoring.Engine
	aggregator *bias.Aggregator
	guard      *budget.Guard
	analyzer   *analysis.Service
	halt       *killswitch.Switch
	submitter  *execution.Submitter

	mu      sync.Mutex
	started time.Time
	orders  int
}

// allStores holds all storage implementations.
type allStores struct {
	biasStore        storage.BiasStore
	walletStatsStore storage.WalletStatsStore
	executionEvents  storage.ExecutionEventStore
}

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for decision/response caching")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage and caching")
	limitsFile := flag.String("limits-file", envOr("RISK_LIMITS_FILE", "risk_limits.yaml"), "Risk limits YAML file")
	dailyBudget := flag.Float64("analysis-budget", envFloat("ANALYSIS_DAILY_BUDGET_USD", 50), "Daily analysis budget in USD")
	baseURL := flag.String("exchange-url", envOr("OKX_BASE_URL", exchange.DefaultBaseURL), "Exchange REST base URL")
	simulated := flag.Bool("simulated", envOr("OKX_SIMULATED", "") != "", "Use the exchange demo environment")
	listenAddr := flag.String("listen-addr", ":8080", "Admin HTTP address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	creds := exchange.Credentials{
		APIKey:     os.Getenv("OKX_API_KEY"),
		SecretKey:  os.Getenv("OKX_SECRET_KEY"),
		Passphrase: os.Getenv("OKX_PASSPHRASE"),
	}
	if creds.APIKey == "" || creds.SecretKey == "" {
		logger.Fatal("OKX_API_KEY and OKX_SECRET_KEY are required")
	}

	limits, err := risk.LoadLimits(*limitsFile)
	if errors.Is(err, os.ErrNotExist) {
		logger.Printf("Risk limits file %s not found, using defaults", *limitsFile)
	} else if err != nil {
		logger.Fatalf("Failed to load risk limits: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	decisionCache, responseCache := createCaches(*redisAddr, *useMemory, logger)

	// Alerting: budget and risk alerts fan out through the queue producer.
	// Delivery happens downstream of the queue; in-process this producer
	// simply buffers envelopes.
	producer := queue.NewMemoryProducer()
	router := alerts.NewRouter(map[string][]alerts.Route{
		"CRITICAL": {{Channel: "pager", Target: "desk-oncall"}},
		"WARNING":  {{Channel: "chat", Target: "#whale-desk"}},
	}, producer)

	guard := budget.NewGuard(*dailyBudget, budget.DefaultAlertThreshold, budget.AlertFunc(func(level, message string) error {
		return router.Send(context.Background(), level, message, nil)
	}))

	gateCfg := escalation.DefaultConfig()
	gate := escalation.NewGate(gateCfg, decisionCache, escalation.NewRateLimiter(escalation.DefaultCallsPerMinute))
	analyzer := analysis.NewService(gate, guard, analysis.NewMemoryClient(""), responseCache, gateCfg.CriticalSizeFrac)

	halt := killswitch.New()
	monitor := risk.NewMonitor(limits)
	policy := risk.NewEngine(limits)

	opts := []exchange.ClientOption{}
	if *simulated {
		opts = append(opts, exchange.WithSimulatedTrading())
	}
	client := exchange.NewClient(creds, exchange.NewHTTPTransport(*baseURL), opts...)
	recorder := execution.NewRecorder(stores.executionEvents, logger)

	server := &Server{
		logger:     logger,
		stores:     stores,
		scorer:     scoring.MustNewEngine(scoring.DefaultWeights),
		aggregator: bias.NewAggregator(scoring.MustNewEngine(scoring.DefaultWeights)),
		guard:      guard,
		analyzer:   analyzer,
		halt:       halt,
		submitter:  execution.NewSubmitter(halt, policy, monitor, client, recorder),
		started:    time.Now(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	go server.startMetricsServer(*metricsAddr)
	go server.runBudgetReset(ctx)

	if err := server.startAdminServer(ctx, *listenAddr); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Admin server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			biasStore:        memory.NewBiasStore(),
			walletStatsStore: memory.NewWalletStatsStore(),
			executionEvents:  memory.NewExecutionEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse (migrations return the connection for reuse)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		biasStore:        pgstore.NewBiasStore(pool),
		walletStatsStore: pgstore.NewWalletStatsStore(pool),
		executionEvents:  chstore.NewExecutionEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// createCaches returns the escalation decision cache and the analysis
// response cache. Redis when configured, in-memory otherwise.
func createCaches(redisAddr string, useMemory bool, logger *log.Logger) (cache.Cache, cache.Cache) {
	if useMemory || redisAddr == "" {
		return cache.NewMemory(5 * time.Minute), cache.NewMemory(analysis.DefaultResponseTTL)
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	logger.Printf("Using Redis cache at %s", redisAddr)
	return cache.NewRedis(client, "escalation", 5*time.Minute),
		cache.NewRedis(client, "analysis", analysis.DefaultResponseTTL)
}

// runBudgetReset resets the analysis budget at each UTC midnight, the
// external daily trigger the guard expects.
func (s *Server) runBudgetReset(ctx context.Context) {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			s.guard.Reset()
			s.logger.Println("Analysis budget reset for new period")
		}
	}
}

// startMetricsServer serves the Prometheus endpoint.
func (s *Server) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	s.logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("Metrics server error: %v", err)
	}
}

// startAdminServer serves the admin API until the context is cancelled.
func (s *Server) startAdminServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/killswitch", s.handleKillSwitch)
	mux.HandleFunc("/wallets", s.handleInsertWallet)
	mux.HandleFunc("/wallets/score", s.handleScoreWallet)
	mux.HandleFunc("/bias/latest", s.handleLatestBias)
	mux.HandleFunc("/bias/recompute", s.handleRecomputeBias)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/orders", s.handleSubmitOrder)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Starting admin server on %s", addr)
	return srv.ListenAndServe()
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string  `json:"status"`
	Uptime          string  `json:"uptime"`
	KillSwitch      bool    `json:"kill_switch_active"`
	AnalysisSpend   float64 `json:"analysis_spend_usd"`
	OrdersSubmitted int     `json:"orders_submitted"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	orders := s.orders
	started := s.started
	s.mu.Unlock()

	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(started).String(),
		KillSwitch:      s.halt.IsActive(),
		AnalysisSpend:   s.guard.Spend(),
		OrdersSubmitted: orders,
	}

	writeJSON(w, http.StatusOK, resp)
}

// killSwitchRequest is the POST body for /killswitch.
type killSwitchRequest struct {
	Action string `json:"action"` // "activate" or "deactivate"
	Reason string `json:"reason"` // empty reason on deactivate clears all flags
	Detail string `json:"detail"`
}

// handleKillSwitch reads (GET) or transitions (POST) the kill switch.
func (s *Server) handleKillSwitch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.halt.Status())
	case http.MethodPost:
		var req killSwitchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		switch strings.ToLower(req.Action) {
		case "activate":
			s.halt.Activate(req.Reason, req.Detail)
			s.logger.Printf("Kill switch activated: %s (%s)", req.Reason, req.Detail)
		case "deactivate":
			s.halt.Deactivate(req.Reason, req.Detail)
			s.logger.Printf("Kill switch deactivated: %q (%s)", req.Reason, req.Detail)
		default:
			http.Error(w, "action must be activate or deactivate", http.StatusBadRequest)
			return
		}
		observability.SetKillSwitch(s.halt.IsActive())
		writeJSON(w, http.StatusOK, s.halt.Status())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLatestBias returns the latest bias snapshot per (asset, timeframe).
// Optional ?assets=BTC,ETH filter.
func (s *Server) handleLatestBias(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var assets []string
	if raw := r.URL.Query().Get("assets"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				assets = append(assets, a)
			}
		}
	}

	results, err := s.stores.biasStore.Latest(r.Context(), assets)
	if err != nil {
		s.logger.Printf("Latest bias error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleInsertWallet registers wallet trading history for scoring.
func (s *Server) handleInsertWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var stats domain.WalletStats
	if err := json.NewDecoder(r.Body).Decode(&stats); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.stores.walletStatsStore.Insert(r.Context(), &stats); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			http.Error(w, "wallet already exists", http.StatusConflict)
		case errors.Is(err, storage.ErrInvalidInput):
			http.Error(w, "wallet_id is required", http.StatusBadRequest)
		default:
			s.logger.Printf("Insert wallet error: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handleScoreWallet returns credibility for one wallet, ?wallet_id=.
func (s *Server) handleScoreWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	walletID := r.URL.Query().Get("wallet_id")
	if walletID == "" {
		http.Error(w, "wallet_id is required", http.StatusBadRequest)
		return
	}

	stats, err := s.stores.walletStatsStore.GetByID(r.Context(), walletID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "wallet not found", http.StatusNotFound)
			return
		}
		s.logger.Printf("Get wallet error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	observability.DefaultMetrics.WalletsScored.Inc()
	writeJSON(w, http.StatusOK, s.scorer.ScoreWallet(stats))
}

// recomputeBiasRequest is the POST body for /bias/recompute.
type recomputeBiasRequest struct {
	Asset     string `json:"asset"`
	Timeframe string `json:"timeframe"`
}

// handleRecomputeBias recomputes and stores the bias snapshot for an
// asset/timeframe from all known wallets.
func (s *Server) handleRecomputeBias(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req recomputeBiasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Asset == "" || req.Timeframe == "" {
		http.Error(w, "asset and timeframe are required", http.StatusBadRequest)
		return
	}

	wallets, err := s.stores.walletStatsStore.GetAll(r.Context())
	if err != nil {
		s.logger.Printf("Get wallets error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	result, err := s.aggregator.Publish(r.Context(), s.stores.biasStore, req.Asset, req.Timeframe, wallets)
	if err != nil {
		s.logger.Printf("Publish bias error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	observability.DefaultMetrics.BiasSnapshots.Inc()
	writeJSON(w, http.StatusOK, result)
}

// analyzeRequest is the POST body for /analyze.
type analyzeRequest struct {
	Event  domain.EventContext `json:"event"`
	Prompt string              `json:"prompt"`
}

// handleAnalyze runs one event through the escalation gate and, if it
// clears, the costed analysis call.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := s.analyzer.Analyze(r.Context(), req.Event, req.Prompt)
	if err != nil {
		s.logger.Printf("Analyze error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	observability.RecordEscalation(outcome.Analyzed)
	observability.DefaultMetrics.AnalysisSpendUSD.Set(s.guard.Spend())
	if outcome.Analyzed && !outcome.FromCache {
		observability.DefaultMetrics.AnalysisCalls.WithLabelValues(outcome.Tier).Inc()
	}
	writeJSON(w, http.StatusOK, outcome)
}

// orderRequest is the POST body for /orders.
type orderRequest struct {
	Signal    domain.TradeSignal        `json:"signal"`
	Portfolio domain.PortfolioState     `json:"portfolio"`
	Positions []domain.PositionSnapshot `json:"positions"`
	Exposures map[string]float64        `json:"exposures"`
}

// handleSubmitOrder runs one signal through the submission gauntlet.
func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.submitter.Submit(r.Context(), req.Signal, req.Portfolio, req.Positions, req.Exposures)
	if err != nil {
		s.logger.Printf("Order submission error: %v", err)
		observability.RecordOrder(domain.ExecutionStatusFailure)
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	if result.Success {
		s.mu.Lock()
		s.orders++
		s.mu.Unlock()
		observability.RecordOrder(domain.ExecutionStatusSuccess)
		s.logger.Printf("Order submitted: %s %s", req.Signal.Side, req.Signal.Asset)
	} else {
		s.logger.Printf("Order rejected: %s", result.Reason)
		if result.Reason == execution.ReasonPolicy {
			for name, check := range result.Checks {
				if !check.Passed {
					observability.RecordPolicyRejection(name)
				}
			}
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

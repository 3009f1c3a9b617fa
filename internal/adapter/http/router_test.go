package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/adapter/http/handler"
	apimiddleware "github.com/iho/gobank/internal/adapter/http/middleware"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/metrics"
	"github.com/iho/gobank/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/account/acc-1", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/account/acc-1", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}

	// health probes are never throttled
	req3 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req3.RemoteAddr = "1.2.3.4:1234"
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusOK {
		t.Fatalf("expected /health to bypass the limiter, got %d", rec3.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"PUT /account/",
		"GET /account/{id}",
		"DELETE /account/{id}",
		"GET /account/{id}/records",
		"GET /account/{id}/limits",
		"POST /account/deposit/{id}",
		"POST /account/withdraw/{id}",
		"POST /account/transfer/{id}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered, have %v", route, seen)
		}
	}
}

func TestNewRouter_TransferRoute(t *testing.T) {
	svc := &stubTransferService{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TransferHandler = handler.NewTransferHandler(svc)
	}))

	req := httptest.NewRequest(http.MethodPost, "/account/transfer/acc-1", strings.NewReader(`{"toAccountId":"acc-2","amount":"50"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.last.FromAccountID != "acc-1" || svc.last.ToAccountID != "acc-2" {
		t.Fatalf("expected route params to reach the engine, got %+v", svc.last)
	}
}

func TestNewRouter_PutAccountWithoutTrailingSlash(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodPut, "/account", strings.NewReader(`{"owner":{"name":"Alice"}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.Gatherer = reg
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/account/acc-1", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `path="/account/:id"`) {
		t.Fatalf("expected normalized path label in metrics output")
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:   handler.NewHealthHandler(nil, nil),
		AccountHandler:  handler.NewAccountHandler(stubAccountService{}),
		TransferHandler: handler.NewTransferHandler(&stubTransferService{}),
		LedgerHandler:   handler.NewLedgerHandler(stubLedgerService{}),
		Logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct{}

func (stubAccountService) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc", OwnerID: "own", Active: true}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id, Active: true}, nil
}

func (stubAccountService) DeactivateAccount(ctx context.Context, id string) error {
	return nil
}

func (stubAccountService) Deposit(ctx context.Context, id string, amount decimal.Decimal) error {
	return nil
}

func (stubAccountService) Withdraw(ctx context.Context, id string, amount decimal.Decimal) error {
	return nil
}

type stubTransferService struct {
	last usecase.TransferInput
}

func (s *stubTransferService) Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
	s.last = input
	return &usecase.TransferResult{
		State: domain.TransferCommitted,
		Record: &domain.Record{
			ID:            "rec",
			FromAccountID: input.FromAccountID,
			ToAccountID:   input.ToAccountID,
			Amount:        input.Amount,
		},
	}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) ListRecords(ctx context.Context, input usecase.ListRecordsInput) ([]*domain.Record, error) {
	return []*domain.Record{}, nil
}

func (stubLedgerService) GetDailyUsage(ctx context.Context, accountID string) (*usecase.DailyUsage, error) {
	return &usecase.DailyUsage{AccountID: accountID}, nil
}

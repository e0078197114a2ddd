package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/purchase"
	"github.com/angelmondragon/storefront-backend/internal/sales"
	"github.com/angelmondragon/storefront-backend/internal/wallet"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCustomerService struct {
	customers.Service
}

func (stubCustomerService) List(context.Context) ([]customers.CustomerDTO, error) {
	return []customers.CustomerDTO{}, nil
}

func (stubCustomerService) Get(_ context.Context, username string) (*customers.Profile, error) {
	return &customers.Profile{Customer: &customers.CustomerDTO{Username: username}}, nil
}

type stubWalletService struct {
	wallet.Service
}

func (stubWalletService) Deduct(_ context.Context, customerID string, amount decimal.Decimal) (*wallet.MutationResult, error) {
	return &wallet.MutationResult{CustomerID: customerID, Amount: amount}, nil
}

type stubInventoryService struct {
	inventory.Service
}

func (stubInventoryService) List(context.Context, *enums.GoodCategory) ([]inventory.GoodDTO, error) {
	return []inventory.GoodDTO{}, nil
}

func (stubInventoryService) Create(_ context.Context, input inventory.CreateGoodInput) (*inventory.GoodDTO, error) {
	return &inventory.GoodDTO{ID: 1, Name: input.Name}, nil
}

func (stubInventoryService) Decrement(_ context.Context, id int64) (*inventory.GoodDTO, error) {
	return &inventory.GoodDTO{ID: id}, nil
}

type stubPurchaseService struct{}

func (stubPurchaseService) Purchase(context.Context, string, int64) (*purchase.Result, error) {
	return &purchase.Result{Message: purchase.SuccessMessage, PurchaseID: 1}, nil
}

type stubSalesService struct {
	sales.Service
}

func (stubSalesService) List(context.Context) ([]sales.PurchaseDTO, error) {
	return []sales.PurchaseDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func testCommon(cfg *config.Config) Common {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return Common{
		Config:   cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Registry: prometheus.NewRegistry(),
	}
}

func buildToken(t *testing.T, cfg *config.Config, username string, role enums.CustomerRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		Username: username,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func do(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	router := NewInventoryRouter(testCommon(testConfig()), stubInventoryService{})

	if resp := do(router, http.MethodGet, "/health/live", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/health/ready", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}

	resp := do(router, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/health/live"`) {
		t.Fatalf("expected request metrics labelled by route, got %s", resp.Body.String())
	}
}

func TestSalesPurchaseRequiresJWT(t *testing.T) {
	router := NewSalesRouter(testCommon(testConfig()), stubPurchaseService{}, stubSalesService{})

	resp := do(router, http.MethodPost, "/api/v1/sales/purchase/alice/1", "", "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestSalesPurchaseOnlyForSelfOrAdmin(t *testing.T) {
	cfg := testConfig()
	router := NewSalesRouter(testCommon(cfg), stubPurchaseService{}, stubSalesService{})

	other := buildToken(t, cfg, "bob", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodPost, "/api/v1/sales/purchase/alice/1", other, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 buying for another customer got %d", resp.Code)
	}

	self := buildToken(t, cfg, "alice", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodPost, "/api/v1/sales/purchase/alice/1", self, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for own purchase got %d", resp.Code)
	}

	admin := buildToken(t, cfg, "root", enums.CustomerRoleAdmin)
	if resp := do(router, http.MethodPost, "/api/v1/sales/purchase/alice/1", admin, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestSalesListRequiresJWT(t *testing.T) {
	cfg := testConfig()
	router := NewSalesRouter(testCommon(cfg), stubPurchaseService{}, stubSalesService{})

	if resp := do(router, http.MethodGet, "/api/v1/sales/get", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	token := buildToken(t, cfg, "alice", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodGet, "/api/v1/sales/get", token, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCustomerListRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := NewCustomerRouter(testCommon(cfg), stubCustomerService{}, stubWalletService{})

	customer := buildToken(t, cfg, "alice", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodGet, "/api/v1/customer/get", customer, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := buildToken(t, cfg, "root", enums.CustomerRoleAdmin)
	if resp := do(router, http.MethodGet, "/api/v1/customer/get", admin, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCustomerProfileSelfOrAdmin(t *testing.T) {
	cfg := testConfig()
	router := NewCustomerRouter(testCommon(cfg), stubCustomerService{}, stubWalletService{})

	bob := buildToken(t, cfg, "bob", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodGet, "/api/v1/customer/get/alice", bob, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading another profile got %d", resp.Code)
	}

	alice := buildToken(t, cfg, "alice", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodGet, "/api/v1/customer/get/alice", alice, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 reading own profile got %d", resp.Code)
	}
}

func TestWalletDeductIsServiceToService(t *testing.T) {
	router := NewCustomerRouter(testCommon(testConfig()), stubCustomerService{}, stubWalletService{})

	resp := do(router, http.MethodPut, "/api/v1/customer/wallet/alice/deduct", "", `{"amount":"5"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for wallet deduct got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInventoryAdminRoutes(t *testing.T) {
	cfg := testConfig()
	router := NewInventoryRouter(testCommon(cfg), stubInventoryService{})
	body := `{"name":"Apple","category":"food","price":"1.50","description":"fresh","count":3}`

	if resp := do(router, http.MethodPost, "/api/v1/inventory/add", "", body); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	customer := buildToken(t, cfg, "alice", enums.CustomerRoleCustomer)
	if resp := do(router, http.MethodPost, "/api/v1/inventory/add", customer, body); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := buildToken(t, cfg, "root", enums.CustomerRoleAdmin)
	if resp := do(router, http.MethodPost, "/api/v1/inventory/add", admin, body); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin got %d", resp.Code)
	}
}

func TestInventoryPublicRoutes(t *testing.T) {
	router := NewInventoryRouter(testCommon(testConfig()), stubInventoryService{})

	for _, target := range []string{"/api/v1/inventory", "/api/v1/inventory/"} {
		if resp := do(router, http.MethodGet, target, "", ""); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 listing %s got %d", target, resp.Code)
		}
	}
	if resp := do(router, http.MethodPut, "/api/v1/inventory/deduct/4", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for stock deduct got %d", resp.Code)
	}
}

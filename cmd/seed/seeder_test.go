package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   []byte
}

type recorder struct {
	mu       sync.Mutex
	requests []recorded
}

func (r *recorder) handler(status int, reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(req.Body)
		r.mu.Lock()
		r.requests = append(r.requests, recorded{method: req.Method, path: req.URL.Path, auth: req.Header.Get("Authorization"), body: buf.Bytes()})
		r.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}
}

func testOptions(customerURL, inventoryURL string) options {
	return options{
		customerURL:  customerURL + "/api/v1",
		inventoryURL: inventoryURL + "/api/v1",
		timeout:      time.Second,
		seed:         42,
	}
}

func TestFakeDataIsValid(t *testing.T) {
	s := newSeeder(testOptions("http://c", "http://i"), "", &bytes.Buffer{})
	for i := 0; i < 50; i++ {
		good := s.fakeGood()
		require.True(t, good.Category.IsValid())
		require.True(t, good.Price.IsPositive())
		require.LessOrEqual(t, len(good.Name), 100)
		require.GreaterOrEqual(t, good.Count, 0)

		customer := s.fakeCustomer(i)
		require.True(t, customer.MaritalStatus.IsValid())
		require.GreaterOrEqual(t, len(customer.Password), 8)
		require.GreaterOrEqual(t, customer.Age, 18)
	}
}

func TestFakeDataIsReproducible(t *testing.T) {
	a := newSeeder(testOptions("http://c", "http://i"), "", &bytes.Buffer{})
	b := newSeeder(testOptions("http://c", "http://i"), "", &bytes.Buffer{})
	assert.Equal(t, a.fakeCustomer(0), b.fakeCustomer(0))
	assert.Equal(t, a.fakeGood().Name, b.fakeGood().Name)
}

func TestSeedGoodsUsesAdminToken(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusCreated, `{"id":1,"name":"x","category":"food","price":"1.00","count":1}`))
	defer srv.Close()

	var out bytes.Buffer
	s := newSeeder(testOptions(srv.URL, srv.URL), "admin-token", &out)
	require.NoError(t, s.seedGoods(context.Background(), 3))

	require.Len(t, rec.requests, 3)
	for _, r := range rec.requests {
		assert.Equal(t, http.MethodPost, r.method)
		assert.Equal(t, "/api/v1/inventory/add", r.path)
		assert.Equal(t, "Bearer admin-token", r.auth)
		var body inventory.CreateGoodInput
		require.NoError(t, json.Unmarshal(r.body, &body))
		assert.True(t, body.Category.IsValid())
	}
	assert.Equal(t, 3, strings.Count(out.String(), "good 1 "))
}

func TestSeedCustomersRegistersAndFunds(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{}`))
	defer srv.Close()

	s := newSeeder(testOptions(srv.URL, srv.URL), "", &bytes.Buffer{})
	require.NoError(t, s.seedCustomers(context.Background(), 2, decimal.NewFromInt(100)))

	require.Len(t, rec.requests, 4)
	var reg customers.RegisterRequest
	require.NoError(t, json.Unmarshal(rec.requests[0].body, &reg))
	assert.Equal(t, "/api/v1/customer/auth/register", rec.requests[0].path)
	assert.Equal(t, http.MethodPut, rec.requests[1].method)
	assert.Equal(t, "/api/v1/customer/wallet/"+reg.Username+"/charge", rec.requests[1].path)

	var charge struct {
		Amount decimal.Decimal `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.requests[1].body, &charge))
	assert.True(t, charge.Amount.LessThanOrEqual(decimal.NewFromInt(100)))
}

func TestSeedStopsOnError(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"role required"}}`))
	defer srv.Close()

	s := newSeeder(testOptions(srv.URL, srv.URL), "", &bytes.Buffer{})
	err := s.seedGoods(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Len(t, rec.requests, 1)
}

func TestBuildSeederMintsAdminToken(t *testing.T) {
	opts := testOptions("http://c", "http://i")
	opts.jwtSecret = "secret"
	opts.jwtIssuer = "storefront"

	s, err := buildSeeder(newRootCmd(), opts)
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(config.JWTConfig{Secret: "secret", Issuer: "storefront"}, s.adminToken)
	require.NoError(t, err)
	assert.Equal(t, enums.CustomerRoleAdmin, claims.Role)
}

func TestParseBalance(t *testing.T) {
	_, err := parseBalance("-1")
	require.Error(t, err)
	d, err := parseBalance("250.5")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("250.5")))
}

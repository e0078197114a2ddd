package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func fastRetries(n uint64) Option {
	return WithRetries(n, time.Millisecond)
}

func TestInventoryGetGoodRequest(t *testing.T) {
	var capturedURL, capturedRequestID string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedRequestID = req.Header.Get("X-Request-ID")
		require.Equal(t, http.MethodGet, req.Method)
		return jsonResponse(http.StatusOK, `{"id":1,"name":"Apple","category":"food","price":50.0,"description":"red","count":3}`), nil
	})

	client, err := NewInventoryClient("http://inventory.test/api/v1/", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-1")
	good, err := client.GetGood(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "http://inventory.test/api/v1/inventory/1", capturedURL)
	assert.Equal(t, "req-1", capturedRequestID)
	assert.Equal(t, int64(1), good.ID)
	assert.True(t, good.Price.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 3, good.Count)
}

func TestInventoryGetGoodNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"resource not found"}}`), nil
	})
	client, err := NewInventoryClient("http://inventory.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	_, err = client.GetGood(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestInventoryDeductStockOutOfStock(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPut, req.Method)
		require.Equal(t, "/api/v1/inventory/deduct/3", req.URL.Path)
		return jsonResponse(http.StatusBadRequest, `{"error":{"code":"OUT_OF_STOCK","message":"stock already zero"}}`), nil
	})
	client, err := NewInventoryClient("http://inventory.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	_, err = client.DeductStock(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock))
}

func TestCustomerDeductWalletSendsAmount(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/customer/wallet/alice/deduct", req.URL.Path)
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"amount":50}`, string(body))
		return jsonResponse(http.StatusOK, `{"customer_id":"alice","amount":50,"new_balance":50}`), nil
	})
	client, err := NewCustomerClient("http://customer.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	out, err := client.DeductWallet(context.Background(), "alice", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, out.NewBalance.Equal(decimal.NewFromInt(50)))
}

func TestCustomerDeductWalletClassifiesFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   pkgerrors.Code
	}{
		{name: "missing customer", status: http.StatusNotFound, body: `{"error":{"code":"NOT_FOUND","message":"x"}}`, code: pkgerrors.CodeNotFound},
		{name: "insufficient", status: http.StatusBadRequest, body: `{"error":{"code":"INSUFFICIENT_FUNDS","message":"x"}}`, code: pkgerrors.CodeInsufficientFunds},
		{name: "validation", status: http.StatusBadRequest, body: `{"error":{"code":"VALIDATION_ERROR","message":"x"}}`, code: pkgerrors.CodeValidation},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, code: pkgerrors.CodeDependency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})
			client, err := NewCustomerClient("http://customer.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}))
			require.NoError(t, err)

			_, err = client.DeductWallet(context.Background(), "bob", decimal.NewFromInt(200))
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.CodeOf(err))
		})
	}
}

func TestReadsRetryTransportFailures(t *testing.T) {
	var attempts int32
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return nil, &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset")}
		}
		return jsonResponse(http.StatusOK, `{"id":1,"price":10,"count":1}`), nil
	})
	client, err := NewInventoryClient("http://inventory.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}), fastRetries(2))
	require.NoError(t, err)

	good, err := client.GetGood(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), good.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestReadsRetryUnavailableStatus(t *testing.T) {
	var attempts int32
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
		}
		return jsonResponse(http.StatusOK, `{"id":4,"price":10,"count":1}`), nil
	})
	client, err := NewInventoryClient("http://inventory.test/api/v1", WithHTTPClient(&http.Client{Transport: rt}), fastRetries(1))
	require.NoError(t, err)

	_, err = client.GetGood(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestMutationsRetryOnlyDialFailures(t *testing.T) {
	var dialAttempts int32
	dialFail := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&dialAttempts, 1) == 1 {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}
		return jsonResponse(http.StatusOK, `{"customer_id":"alice","amount":5,"new_balance":95}`), nil
	})
	client, err := NewCustomerClient("http://customer.test/api/v1", WithHTTPClient(&http.Client{Transport: dialFail}), fastRetries(2))
	require.NoError(t, err)

	_, err = client.DeductWallet(context.Background(), "alice", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dialAttempts))

	var readAttempts int32
	readFail := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&readAttempts, 1)
		return nil, &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset")}
	})
	client, err = NewCustomerClient("http://customer.test/api/v1", WithHTTPClient(&http.Client{Transport: readFail}), fastRetries(2))
	require.NoError(t, err)

	_, err = client.DeductWallet(context.Background(), "alice", decimal.NewFromInt(5))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, int32(1), atomic.LoadInt32(&readAttempts), "a mutation that may have reached the server must not be repeated")
}

func TestCallTimeoutSurfacesAsDependency(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewInventoryClient(srv.URL, WithCallTimeout(20*time.Millisecond), fastRetries(1))
	require.NoError(t, err)

	_, err = client.GetGood(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestClosedServerIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	base := srv.URL
	srv.Close()

	client, err := NewCustomerClient(base, fastRetries(1))
	require.NoError(t, err)

	_, err = client.ChargeWallet(context.Background(), "alice", decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewInventoryClient("  ")
	require.Error(t, err)
	_, err = NewCustomerClient("")
	require.Error(t, err)
}

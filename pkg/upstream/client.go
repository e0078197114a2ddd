package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	defaultCallTimeout          = 3 * time.Second
	defaultRetryBase            = 100 * time.Millisecond
	errorBodyReadLimit    int64 = 4096
	successBodyReadLimit  int64 = 1 << 20
	requestIDHeader             = "X-Request-ID"
)

type requestIDKey struct{}

// WithRequestID returns a context whose outbound calls carry the given request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Option configures optional client behavior.
type Option func(*transport)

// WithHTTPClient overrides the default instrumented HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *transport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithCallTimeout bounds every individual attempt.
func WithCallTimeout(timeout time.Duration) Option {
	return func(t *transport) {
		if timeout > 0 {
			t.callTimeout = timeout
		}
	}
}

// WithRetries sets how many extra attempts an unavailable collaborator gets and the
// base delay of the exponential backoff between them.
func WithRetries(retries uint64, base time.Duration) Option {
	return func(t *transport) {
		t.retries = retries
		if base > 0 {
			t.retryBase = base
		}
	}
}

// transport is the shared request loop behind the inventory and customer clients.
type transport struct {
	httpClient  *http.Client
	baseURL     string
	callTimeout time.Duration
	retries     uint64
	retryBase   time.Duration
}

func newTransport(baseURL string, opts ...Option) (*transport, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("upstream base url is required")
	}
	t := &transport{
		httpClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL:     trimmed,
		callTimeout: defaultCallTimeout,
		retryBase:   defaultRetryBase,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// request describes one logical call. Reads are safe to repeat; mutations are only
// repeated when the previous attempt never reached the collaborator.
type request struct {
	method string
	path   string
	body   any
	read   bool
}

// response is a fully drained upstream reply.
type response struct {
	status int
	body   []byte
}

// errorCode extracts the error envelope code, or "" when the body is not an envelope.
func (r response) errorCode() pkgerrors.Code {
	var env types.ErrorEnvelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		return ""
	}
	return pkgerrors.Code(env.Error.Code)
}

func (r response) decode(out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response")
	}
	return nil
}

func (r response) unexpected(op string) error {
	snippet := strings.TrimSpace(string(r.body))
	if int64(len(snippet)) > errorBodyReadLimit {
		snippet = snippet[:errorBodyReadLimit]
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", r.status, snippet), op+" failed")
}

func (t *transport) do(ctx context.Context, req request) (response, error) {
	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return response{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal upstream request")
		}
		payload = encoded
	}

	backoff := retry.WithMaxRetries(t.retries, retry.NewExponential(t.retryBase))

	var out response
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := t.attempt(ctx, req, payload)
		if err != nil {
			if shouldRetry(ctx, req, err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if req.read && retryableStatus(resp.status) {
			return retry.RetryableError(resp.unexpected(req.method + " " + req.path))
		}
		out = resp
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return response{}, err
		}
		return response{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s unavailable", req.method, req.path))
	}
	return out, nil
}

func (t *transport) attempt(ctx context.Context, req request, payload []byte) (response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, t.baseURL+req.path, body)
	if err != nil {
		return response{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		httpReq.Header.Set(requestIDHeader, requestID)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return response{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	limit := successBodyReadLimit
	if resp.StatusCode >= http.StatusBadRequest {
		limit = errorBodyReadLimit
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return response{}, err
	}
	return response{status: resp.StatusCode, body: raw}, nil
}

// shouldRetry reports whether a transport failure may be repeated. The caller's own
// context being done always stops the loop.
func shouldRetry(ctx context.Context, req request, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if req.read {
		return true
	}
	return isDialError(err)
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pshelf/pshelf/pkg/buildinfo"
)

const httpTimeout = 30 * time.Second

// Auth injects credentials into outgoing repository requests.
type Auth interface {
	Apply(req *http.Request)
}

// BasicAuth authenticates with a username and password.
type BasicAuth struct {
	Username string
	Password string
}

// Apply sets the Authorization header using HTTP basic auth.
func (a BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// TokenAuth authenticates with a bearer token.
type TokenAuth struct {
	Token string
}

// Apply sets the Authorization header using the bearer scheme.
func (a TokenAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// Transport issues HTTP requests on behalf of protocol clients and maps
// transport failures onto the shared error kinds: a 404 becomes
// ErrNotFound, everything else that fails becomes ErrConnection.
//
// Retries are off by default so that a search issues exactly one request
// per result page; see [Transport.SetRetries].
type Transport struct {
	http     *http.Client
	auth     Auth
	logger   *log.Logger
	attempts int
	delay    time.Duration
}

// NewTransport creates a transport. Any argument may be nil: httpClient
// defaults to a client with a 30s timeout, auth to no authentication, and
// logger to the package default.
func NewTransport(httpClient *http.Client, auth Auth, logger *log.Logger) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Transport{
		http:     httpClient,
		auth:     auth,
		logger:   logger,
		attempts: 1,
		delay:    time.Second,
	}
}

// SetRetries enables retrying of transient failures (network errors, 429
// and 5xx responses) up to attempts total tries. The delay doubles after
// each failed attempt.
func (t *Transport) SetRetries(attempts int, delay time.Duration) {
	t.attempts = max(attempts, 1)
	if delay > 0 {
		t.delay = delay
	}
}

// Get issues a GET request and returns the response body stream. The
// caller must close it.
func (t *Transport) Get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := retry(ctx, t.attempts, t.delay, func() error {
		b, err := t.do(ctx, rawURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GetString issues a GET request and reads the full response body.
func (t *Transport) GetString(ctx context.Context, rawURL string) (string, error) {
	body, err := t.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrConnection, err)
	}
	return string(data), nil
}

func (t *Transport) do(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrConnection, err)
	}
	req.Header.Set("User-Agent", "pshelf/"+buildinfo.Version)
	if t.auth != nil {
		t.auth.Apply(req)
	}

	id := uuid.NewString()
	t.logger.Debug("feed request", "id", id, "url", rawURL)

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("%w: %w", ErrConnection, err)}
	}
	t.logger.Debug("feed response", "id", id, "status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status 404", ErrNotFound)
	case code == http.StatusTooManyRequests || code >= 500:
		return &retryableError{err: fmt.Errorf("%w: status %d", ErrConnection, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrConnection, code)
	}
}

// retryableError marks an error as transient so retry attempts it again.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retry executes fn up to attempts times with exponential backoff. Only
// errors wrapped in retryableError are retried; other errors are returned
// immediately. Returns the last error if all attempts fail, or ctx.Err()
// if cancelled while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*retryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

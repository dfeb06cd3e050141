package influxline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default timeouts for transport operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Second
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 << 20 // 10 MB

// Transport is the seam between the batching engine and the HTTP wire.
// The core depends on this interface only; httpTransport is the
// production implementation.
type Transport interface {
	// WriteLineProtocol posts one line-protocol body to the /write
	// endpoint for the given database and retention policy.
	WriteLineProtocol(ctx context.Context, database, retentionPolicy, precision, consistency, body string) error

	// Query runs a command against the /query endpoint and returns the
	// raw JSON response body. epoch selects the timestamp precision of
	// returned values; empty means server default.
	Query(ctx context.Context, database, command, epoch string) ([]byte, error)

	// Ping checks the /ping endpoint and reports the server version and
	// round-trip time.
	Ping(ctx context.Context) (version string, rtt time.Duration, err error)
}

// httpTransport talks to the database over its HTTP API using a
// dedicated http.Client with a request timeout.
type httpTransport struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func newHTTPTransport(cfg Config) *httpTransport {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &httpTransport{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// auth adds credential parameters when configured.
func (t *httpTransport) auth(params url.Values) {
	if t.username != "" {
		params.Set("u", t.username)
		params.Set("p", t.password)
	}
}

func (t *httpTransport) WriteLineProtocol(ctx context.Context, database, retentionPolicy, precision, consistency, body string) error {
	params := url.Values{}
	params.Set("db", database)
	if retentionPolicy != "" {
		params.Set("rp", retentionPolicy)
	}
	if precision != "" {
		params.Set("precision", precision)
	}
	if consistency != "" {
		params.Set("consistency", consistency)
	}
	t.auth(params)

	endpoint := t.baseURL + "/write?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	return fmt.Errorf("%w: HTTP %d: %s", ErrWriteFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
}

func (t *httpTransport) Query(ctx context.Context, database, command, epoch string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", command)
	if database != "" {
		params.Set("db", database)
	}
	if epoch != "" {
		params.Set("epoch", epoch)
	}
	t.auth(params)

	endpoint := t.baseURL + "/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrQueryFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrQueryFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}

func (t *httpTransport) Ping(ctx context.Context) (string, time.Duration, error) {
	params := url.Values{}
	t.auth(params)

	endpoint := t.baseURL + "/ping"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, fmt.Errorf("ping: %w", err)
	}

	started := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("ping: %w", err)
	}
	rtt := time.Since(started)
	defer resp.Body.Close()
	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", 0, fmt.Errorf("ping: HTTP %d", resp.StatusCode)
	}

	version := resp.Header.Get("X-Influxdb-Version")
	if version == "" {
		version = "unknown"
	}

	return version, rtt, nil
}

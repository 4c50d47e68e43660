package client

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

	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds every outbound call
	DefaultTimeout = 15 * time.Second

	// BrowserUserAgent is attached to every request; the comment API rejects requests without it
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxResponseBytes = 10 << 20
)

// FetchErrorKind classifies upstream call failures
type FetchErrorKind int

const (
	FetchNetwork FetchErrorKind = iota
	FetchTimeout
	FetchHTTPStatus
	FetchDecode
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchHTTPStatus:
		return "http_status"
	case FetchDecode:
		return "decode"
	default:
		return "network"
	}
}

// FetchError is returned for every failed outbound request
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	case FetchTimeout:
		return fmt.Sprintf("request timed out: %s", e.URL)
	case FetchDecode:
		return fmt.Sprintf("invalid JSON response from %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Request describes one JSON call
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is marshalled to JSON when non-nil
	Body interface{}
}

// Fetcher executes JSON requests with a hard per-call timeout. It never retries.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// FetcherOption customizes a Fetcher
type FetcherOption func(*Fetcher)

// WithTimeout overrides the per-call timeout
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides the identity header
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithBaseTransport sets the transport used underneath the identity header
func WithBaseTransport(rt http.RoundTripper) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient.Transport = &userAgentTransport{base: rt, fetcher: f}
	}
}

// NewFetcher creates a Fetcher with the default timeout and browser identity
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		userAgent: BrowserUserAgent,
	}
	f.httpClient = &http.Client{}
	f.httpClient.Transport = &userAgentTransport{base: http.DefaultTransport, fetcher: f}

	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Timeout returns the per-call timeout
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// HTTPClient returns the client used by the Fetcher, so SDK based clients share
// the identity header. SDK callers bound each call with Timeout themselves.
func (f *Fetcher) HTTPClient() *http.Client {
	return f.httpClient
}

// FetchJSON performs the request and returns the raw JSON body
func (f *Fetcher) FetchJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	log.Ctx(ctx).Debug().Str("method", method).Str("url", redactURL(req.URL)).Msg("Sending upstream request")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError(req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, ClassifyTransportError(req.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:       FetchHTTPStatus,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if !json.Valid(data) {
		return nil, &FetchError{
			Kind: FetchDecode,
			URL:  req.URL,
			Err:  fmt.Errorf("%d bytes of non-JSON content", len(data)),
		}
	}

	return json.RawMessage(data), nil
}

// ClassifyTransportError converts an error raised while sending a request or reading its body
func ClassifyTransportError(url string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if IsTimeout(err) {
		return &FetchError{Kind: FetchTimeout, URL: url, Err: err}
	}
	return &FetchError{Kind: FetchNetwork, URL: url, Err: err}
}

// IsTimeout reports whether err is a deadline or network timeout
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// userAgentTransport stamps the identity header on every outbound request
type userAgentTransport struct {
	base    http.RoundTripper
	fetcher *Fetcher
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.fetcher.userAgent)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// redactURL drops the query string, which may carry credentials
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/storage"
)

// DefaultTimeout bounds every backend request
const DefaultTimeout = 30 * time.Second

// HTTPFetcher talks to the real backend. When durable storage holds
// credentials, requests are redirected to the stored server address and
// carry the API key.
type HTTPFetcher struct {
	baseURL string
	storage storage.Storage
	client  *http.Client
	log     zerolog.Logger
}

// HTTPOption configures an HTTPFetcher
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithFetchLogger sets the request logger
func WithFetchLogger(log zerolog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.log = log
	}
}

// NewHTTPFetcher creates a fetcher for the API rooted at baseURL
func NewHTTPFetcher(baseURL string, st storage.Storage, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		storage: st,
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs req and reads the whole response body
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	target := f.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	apiKey, serverAddress, signedIn := f.credentials()
	if signedIn {
		target = RewriteOrigin(target, serverAddress)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if signedIn {
		httpReq.Header.Set(HeaderAPIKey, apiKey)
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		f.log.Debug().Err(err).Str("method", method).Str("url", target).Msg("request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	f.log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}

func (f *HTTPFetcher) credentials() (apiKey, serverAddress string, ok bool) {
	if f.storage == nil {
		return "", "", false
	}
	return storage.Credentials(f.storage)
}

// RewriteOrigin replaces the scheme, host and the slash after the host in
// rawURL with serverAddress. A trailing slash is added to serverAddress
// when missing, so "http://api/v1/units" with "https://srv" becomes
// "https://srv/v1/units".
func RewriteOrigin(rawURL, serverAddress string) string {
	if !strings.HasSuffix(serverAddress, "/") {
		serverAddress += "/"
	}

	rest := rawURL
	if i := strings.Index(rest, "//"); i >= 0 {
		rest = rest[i+2:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return serverAddress
	}
	return serverAddress + rest[i+1:]
}

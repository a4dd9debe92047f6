// Package yophone is a client for the YoPhone Bot API.
//
// Every endpoint is a POST to <base URL>/<method> authenticated with the
// X-YoAI-API-Key header. JSON bodies are used everywhere except file uploads,
// which are sent as multipart forms.
package yophone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	infraerrors "github.com/jonesrussell/yophone-bot/infrastructure/errors"
	infrahttp "github.com/jonesrussell/yophone-bot/infrastructure/http"
	infralogger "github.com/jonesrussell/yophone-bot/infrastructure/logger"
)

const (
	// DefaultBaseURL is the public YoPhone Bot API root.
	DefaultBaseURL = "https://yoai.yophone.com/api/pub"

	// APIKeyEnv names the environment variable read by NewFromEnv.
	APIKeyEnv = "YOPHONE_API_KEY"

	apiKeyHeader = "X-YoAI-API-Key"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("yophone: API key is required")

// Recorder observes completed API calls and updates that could not be decoded.
type Recorder interface {
	ObserveRequest(endpoint string, duration time.Duration, err error)
	UpdateRejected()
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, time.Duration, error) {}
func (nopRecorder) UpdateRejected()                             {}

// Client calls the YoPhone Bot API. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     infralogger.Logger
	recorder   Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log infralogger.Logger) Option {
	return func(c *Client) { c.logger = log }
}

// WithRecorder sets a Recorder notified after every call.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// New creates a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		logger:   infralogger.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = infrahttp.NewClient(infrahttp.ClientConfig{})
	}

	return c, nil
}

// NewFromEnv creates a Client using the key in YOPHONE_API_KEY.
func NewFromEnv(opts ...Option) (*Client, error) {
	return New(os.Getenv(APIKeyEnv), opts...)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call posts payload as JSON (or an empty body when payload is nil) and decodes
// the response into out. out may be nil.
func (c *Client) call(ctx context.Context, endpoint string, payload, out any) error {
	var body io.Reader = http.NoBody
	contentType := ""
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", endpoint, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	return c.send(ctx, endpoint, body, contentType, out)
}

func (c *Client) send(ctx context.Context, endpoint string, body io.Reader, contentType string, out any) (err error) {
	start := time.Now()
	defer func() {
		c.recorder.ObserveRequest(endpoint, time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("YoPhone request failed",
			infralogger.String("endpoint", endpoint),
			infralogger.Error(err),
		)
		return fmt.Errorf("%s: send request: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		c.logger.Error("YoPhone request rejected",
			infralogger.String("endpoint", endpoint),
			infralogger.Int("status", resp.StatusCode),
			infralogger.Error(httpErr),
		)
		return fmt.Errorf("%s: %w", endpoint, httpErr)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", endpoint, err)
	}

	c.logger.Debug("YoPhone request completed",
		infralogger.String("endpoint", endpoint),
		infralogger.Int("status", resp.StatusCode),
		infralogger.Duration("duration", time.Since(start)),
	)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}

	return nil
}

// callResult is call for endpoints whose reply schema is not documented.
func (c *Client) callResult(ctx context.Context, endpoint string, payload any) (Result, error) {
	var result Result
	if err := c.call(ctx, endpoint, payload, &result); err != nil {
		return nil, err
	}
	return result, nil
}

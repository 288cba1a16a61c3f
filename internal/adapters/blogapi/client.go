package blogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	refreshPath      = "/auth/refresh"
	maxResponseBytes = 1 << 20
	defaultTimeout   = 30 * time.Second
	userAgent        = "blogctl"
)

type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Client performs HTTP calls against the blog service. It owns the default
// Authorization header and the single-flight refresh state: when a request
// is denied with 403 it refreshes the access token through /auth/refresh
// (the refresh cookie travels via the jar) and replays the request once,
// while concurrent faulting requests queue behind the in-flight refresh.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger

	mu         sync.Mutex
	token      string
	refreshing bool
	waiters    []chan refreshOutcome

	onTokenRefreshed func(token string)
	onSessionExpired func(err error)
}

type refreshOutcome struct {
	token string
	err   error
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func New(cfg Config) (*Client, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     cfg.Logger,
	}, nil
}

// SetAuthToken installs (or with an empty token, removes) the default
// bearer credential. Outside of the refresh routine, only the session store
// may call this.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) AuthToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// OnTokenRefreshed registers the hook invoked after a successful refresh,
// with the new access token. The session store uses it to keep persisted
// storage in sync.
func (c *Client) OnTokenRefreshed(fn func(token string)) {
	c.onTokenRefreshed = fn
}

// OnSessionExpired registers the hook invoked when a refresh fails
// terminally. The session store uses it to clear local session state.
func (c *Client) OnSessionExpired(fn func(err error)) {
	c.onSessionExpired = fn
}

// Cookies returns the jar's cookies for the service origin, so the refresh
// credential can be persisted across processes.
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar with previously persisted cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
}

// Do performs a request and returns the raw response body. A 403 response
// triggers the refresh-and-replay protocol exactly once; every other error
// status is returned unchanged as an *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	requestID := uuid.NewString()

	status, responseBody, err := c.send(ctx, method, path, payload, c.AuthToken(), requestID)
	if err != nil {
		return nil, err
	}
	if status != http.StatusForbidden {
		return finishResponse(status, responseBody)
	}

	// Authorization denied: join or start the single refresh, then replay
	// this request at most once.
	token, err := c.refreshAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("request_id", requestID).Str("path", path).Msg("replaying request after token refresh")

	status, responseBody, err = c.send(ctx, method, path, payload, token, requestID)
	if err != nil {
		return nil, err
	}
	return finishResponse(status, responseBody)
}

// DoJSON performs a request and decodes a successful response into out.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	responseBody, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(responseBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func finishResponse(status int, body []byte) ([]byte, error) {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, decodeAPIError(status, body)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token, requestID string) (int, []byte, error) {
	endpoint, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return 0, nil, fmt.Errorf("parse request path: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(requestCtx, method, endpoint.String(), bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("X-Request-Id", requestID)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return response.StatusCode, responseBody, nil
}

// refreshAccessToken guarantees at most one refresh call in flight. Callers
// faulting while a refresh is running queue behind it and share its outcome
// in FIFO order.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		waiter := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, waiter)
		c.mu.Unlock()

		select {
		case outcome := <-waiter:
			return outcome.token, outcome.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	token, err := c.callRefresh(ctx)

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	if err == nil {
		c.token = token
	}
	c.mu.Unlock()

	outcome := refreshOutcome{token: token, err: err}
	for _, waiter := range waiters {
		waiter <- outcome
	}

	if err != nil {
		c.logger.Debug().Err(err).Int("queued", len(waiters)).Msg("token refresh failed")
		if c.onSessionExpired != nil {
			c.onSessionExpired(err)
		}
		return "", err
	}

	c.logger.Debug().Int("queued", len(waiters)).Msg("token refresh succeeded")
	if c.onTokenRefreshed != nil {
		c.onTokenRefreshed(token)
	}
	return token, nil
}

func (c *Client) callRefresh(ctx context.Context) (string, error) {
	status, body, err := c.send(ctx, http.MethodPost, refreshPath, nil, "", uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, decodeAPIError(status, body))
	}

	var payload refreshResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode refresh response: %w", ErrSessionExpired, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: refresh response missing access token", ErrSessionExpired)
	}

	return payload.AccessToken, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("base url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	return parsed, nil
}

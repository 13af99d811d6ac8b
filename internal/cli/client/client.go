package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/snackshop-dev/snackadmin/internal/cli/events"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

const (
	defaultTimeout  = 30 * time.Second
	requestIDHeader = "X-Request-ID"
)

// TokenSource supplies the bearer token attached to outgoing requests
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client represents an HTTP client for the snack shop API. It attaches the session token, maps
// every failure to an APIError and shows exactly one notification for it. It never navigates:
// an expired session is reported on the event bus and the shell decides what to do.
type Client struct {
	baseURL  string
	rest     *resty.Client
	tokens   TokenSource
	notifier notify.Notifier
	bus      *events.Bus
	logger   zerolog.Logger
	timeout  time.Duration // applied after all options

	mu           sync.Mutex
	expiredToken *string // token already reported as expired
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets where the bearer token comes from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithNotifier sets the notifier used for failure messages
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithEvents sets the bus that receives session invalidation events
func WithEvents(bus *events.Bus) Option {
	return func(c *Client) { c.bus = bus }
}

// WithLogger sets the request logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient swaps the underlying transport, mostly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if c.timeout == 0 && hc.Timeout > 0 {
			c.timeout = hc.Timeout
		}
		c.rest = newRest(c.baseURL, resty.NewWithClient(hc))
		c.installHooks()
	}
}

// New creates a new API client for baseURL (e.g. http://localhost:5000/api)
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL:  baseURL,
		rest:     newRest(baseURL, resty.New()),
		tokens:   TokenFunc(func() string { return "" }),
		notifier: &notify.Recorder{},
		logger:   zerolog.Nop(),
	}
	c.installHooks()

	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.rest.SetTimeout(c.timeout)
	}

	return c
}

func newRest(baseURL string, r *resty.Client) *resty.Client {
	return r.
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// installHooks registers the response interceptor used for request logging
func (c *Client) installHooks() {
	c.rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Str("request_id", resp.Request.Header.Get(requestIDHeader)).
			Msg("HTTP request")
		return nil
	})
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// upload is a multipart file part
type upload struct {
	field    string
	fileName string
	reader   io.Reader
}

// call describes one API request
type call struct {
	method    string
	path      string
	query     url.Values
	body      any
	form      map[string]string
	files     []upload
	result    any
	anonymous bool // no bearer token, and a 401 means bad credentials rather than an expired session
	silent    bool // failures are returned and logged but never shown
}

// do executes a call and classifies any failure
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	req := c.rest.R().SetContext(ctx)

	token := ""
	if !cl.anonymous {
		token = c.tokens.Token()
		if token != "" {
			req.SetAuthToken(token)
		}
	}

	requestID := ulid.Make().String()
	req.SetHeader(requestIDHeader, requestID)

	if len(cl.query) > 0 {
		req.SetQueryParamsFromValues(cl.query)
	}

	if len(cl.files) > 0 || cl.form != nil {
		req.SetMultipartFormData(cl.form)
		for _, f := range cl.files {
			req.SetFileReader(f.field, f.fileName, f.reader)
		}
	} else if cl.body != nil {
		req.SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		// A caller that gave up, or an errgroup sibling that failed, already owns the message.
		// The transport may return the cancel cause rather than context.Canceled.
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, err
		}

		apiErr := &APIError{
			Kind:      KindNetwork,
			Method:    cl.method,
			Path:      cl.path,
			RequestID: requestID,
			Err:       err,
		}
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			apiErr.shown = MsgRequestTimedOut
		}
		c.logger.Warn().Err(err).Str("method", cl.method).Str("path", cl.path).Msg("Request failed without response")
		return nil, c.report(apiErr, cl, token)
	}

	if resp.IsError() {
		apiErr := &APIError{
			Kind:      kindForStatus(resp.StatusCode()),
			Status:    resp.StatusCode(),
			Message:   serverMessage(resp.Body()),
			Method:    cl.method,
			Path:      cl.path,
			RequestID: requestID,
		}
		return resp, c.report(apiErr, cl, token)
	}

	if cl.result != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), cl.result); err != nil {
			apiErr := &APIError{
				Kind:      KindUnknown,
				Status:    resp.StatusCode(),
				Method:    cl.method,
				Path:      cl.path,
				RequestID: requestID,
				Err:       fmt.Errorf("failed to decode response: %w", err),
				shown:     MsgInvalidResponse,
			}
			return resp, c.report(apiErr, cl, token)
		}
	}

	return resp, nil
}

// report shows the notification for a failure, once, and returns the error
func (c *Client) report(apiErr *APIError, cl call, token string) error {
	if cl.silent {
		return apiErr
	}
	if apiErr.Kind == KindAuth {
		if cl.anonymous {
			// Bad credentials: the caller owns the message
			return apiErr
		}
		c.sessionExpired(apiErr, token)
		return apiErr
	}

	notify.Error(c.notifier, apiErr.UserMessage())
	apiErr.notified = true
	return apiErr
}

// sessionExpired publishes the invalidation event and the notification at most once per token,
// however many requests carrying that token were rejected. Requests sent without a token after
// the session was cleared count as the same expiry.
func (c *Client) sessionExpired(apiErr *APIError, token string) {
	apiErr.notified = true

	c.mu.Lock()
	if c.expiredToken != nil && (*c.expiredToken == token || token == "") {
		c.mu.Unlock()
		return
	}
	c.expiredToken = &token
	c.mu.Unlock()

	c.logger.Info().Str("path", apiErr.Path).Str("request_id", apiErr.RequestID).Msg("Session rejected by API")

	notify.Error(c.notifier, MsgSessionExpired)
	if c.bus != nil {
		c.bus.PublishSessionInvalidated(events.SessionInvalidatedEvent{
			Method:    apiErr.Method,
			Path:      apiErr.Path,
			RequestID: apiErr.RequestID,
			Token:     token,
		})
	}
}

// serverMessage extracts the human-readable message from an error body
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	_, err := c.do(ctx, call{method: http.MethodGet, path: path, query: query, result: &out})
	return out, err
}

func sendJSON[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	_, err := c.do(ctx, call{method: method, path: path, body: body, result: &out})
	return out, err
}

func deleteJSON(ctx context.Context, c *Client, path string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: path})
	return err
}

func getBytes(ctx context.Context, c *Client, path string, query url.Values) ([]byte, error) {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func pathf(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
	"todoclient/pkg/config"
	ct "todoclient/pkg/context"
)

const headerRequestID = "X-Request-ID"

// StatusError is returned for any non-2xx answer from the remote.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

type Options struct {
	BaseURL string
	UserID  int
	Timeout time.Duration
	// Transport overrides the base round tripper; it is still wrapped with otelhttp.
	Transport http.RoundTripper
	Logger    *config.Logger
}

// Client talks to the remote todo collection of one user.
type Client struct {
	baseURL *url.URL
	userID  int
	http    *http.Client
	logger  *config.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &Client{
		baseURL: base,
		userID:  opts.UserID,
		http: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(transport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "HTTP " + r.Method + " " + r.URL.Path
				}),
			),
		},
		logger: logger,
	}, nil
}

var _ port.TodoRemote = (*Client)(nil)

func (c *Client) UserID() int {
	return c.userID
}

func (c *Client) List(ctx context.Context) ([]domain.Todo, error) {
	query := url.Values{"userId": {strconv.Itoa(c.userID)}}

	var todos []domain.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", query, nil, &todos); err != nil {
		return nil, err
	}

	// records of other users are never part of the collection
	owned := todos[:0]
	for _, t := range todos {
		if t.BelongsToUser(c.userID) {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

func (c *Client) Create(ctx context.Context, draft domain.Draft) (domain.Todo, error) {
	if draft.UserID == 0 {
		draft.UserID = c.userID
	}

	var todo domain.Todo
	if err := c.do(ctx, http.MethodPost, "/todos", nil, draft, &todo); err != nil {
		return domain.Todo{}, err
	}
	if !todo.Persisted() {
		return domain.Todo{}, fmt.Errorf("create: remote returned no id: %w", domain.ErrUnsaved)
	}
	return todo, nil
}

// Update sends the whole record and returns the one the remote confirmed.
func (c *Client) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	if !todo.Persisted() {
		return domain.Todo{}, domain.ErrUnsaved
	}

	var updated domain.Todo
	if err := c.do(ctx, http.MethodPatch, "/todos/"+strconv.Itoa(todo.ID), nil, todo, &updated); err != nil {
		return domain.Todo{}, err
	}

	// some remotes answer a patch with the changed fields only
	if !updated.Persisted() {
		return todo, nil
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.ErrUnsaved
	}

	return c.do(ctx, http.MethodDelete, "/todos/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}

	requestID := ct.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		statusErr := &StatusError{Method: method, Path: path, StatusCode: res.StatusCode}

		var errorBody response.ErrorResponse
		if json.Unmarshal(data, &errorBody) == nil {
			statusErr.Message = errorBody.Message()
		}

		c.logger.DebugWithTrace(ctx, "Remote answered with an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
			zap.String("request_id", requestID))
		return statusErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

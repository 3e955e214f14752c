package winet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Request is a single http call against the stove's local web server.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    url.Values
	Timeout time.Duration
}

// RequestBuilder stamps requests with the base url and the browser-like
// default headers the stove firmware insists on.
type RequestBuilder struct {
	baseURL string
	headers map[string]string
}

func NewRequestBuilder(baseURL string, headers map[string]string) *RequestBuilder {
	return &RequestBuilder{
		baseURL: baseURL,
		headers: headers,
	}
}

func (b *RequestBuilder) Get(endpoint string, headers map[string]string) Request {
	return Request{
		Method:  http.MethodGet,
		URL:     b.baseURL + endpoint,
		Headers: b.merge(headers),
		Timeout: defaultTimeout,
	}
}

func (b *RequestBuilder) Post(endpoint string, body url.Values, headers map[string]string) Request {
	return Request{
		Method:  http.MethodPost,
		URL:     b.baseURL + endpoint,
		Headers: b.merge(headers),
		Body:    body,
		Timeout: defaultTimeout,
	}
}

func (b *RequestBuilder) merge(headers map[string]string) map[string]string {
	merged := make(map[string]string, len(b.headers)+len(headers))
	for k, v := range b.headers {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}
	return merged
}

// Response is a decoded reply body. Bodies that are not JSON objects are kept
// as raw text.
type Response struct {
	raw []byte
	obj map[string]json.RawMessage
}

func newResponse(raw []byte) *Response {
	r := &Response{raw: raw}
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		r.obj = obj
	}
	return r
}

func (r *Response) IsJSON() bool {
	return r.obj != nil
}

func (r *Response) Text() string {
	return string(r.raw)
}

// Result reports the top-level "result" key. A reply without it is a state
// payload, not an action acknowledgement.
func (r *Response) Result() (value, present bool) {
	if r.obj == nil {
		return false, false
	}
	raw, ok := r.obj["result"]
	if !ok {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, true
	}
	return v, true
}

// Decode unmarshals the reply body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// Executor runs requests with bounded retries. Only connection-level failures
// (refused, reset, disconnected, timed out) are retried; a reply with a bad
// status or body fails the call immediately.
type Executor struct {
	client     *http.Client
	ownsClient bool
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func WithMaxRetries(n int) func(*Executor) {
	return func(e *Executor) {
		e.maxRetries = n
	}
}

func WithRetryDelay(d time.Duration) func(*Executor) {
	return func(e *Executor) {
		e.retryDelay = d
	}
}

// NewExecutor wraps client. When client is nil the executor creates its own
// and owns its connections; Close releases them.
func NewExecutor(client *http.Client, opts ...func(*Executor)) *Executor {
	e := &Executor{
		client:     client,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = &http.Client{}
		e.ownsClient = true
	}
	return e
}

func (e *Executor) Close() error {
	if e.ownsClient {
		e.client.CloseIdleConnections()
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		res, err := e.executeOnce(ctx, req)
		if err == nil {
			return res, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
		if attempt == e.maxRetries {
			break
		}
		e.logger.Debug("request failed, retrying",
			zap.String("url", req.URL),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", e.maxRetries),
			zap.Duration("retry_delay", e.retryDelay),
			zap.Error(err))
		select {
		case <-time.After(e.retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrConnection, req.URL, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrConnection, req.URL, e.maxRetries, lastErr)
}

func (e *Executor) executeOnce(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = strings.NewReader(req.Body.Encode())
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	res, err := e.client.Do(httpReq)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s: %s", ErrStatus, res.StatusCode, req.URL, data)
	}
	return newResponse(data), nil
}

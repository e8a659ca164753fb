package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/constant"
	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/httputil"
	"github.com/xeptore/yamusic/must"
)

type HTTPClient struct {
	client    *http.Client
	baseURL   string
	token     string
	userAgent string
	clientID  string
	logger    zerolog.Logger
}

type Option func(c *HTTPClient)

// WithHTTPClient sets the client used for every call. Timeouts are whatever
// the given client has configured.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) { c.client = client }
}

func WithBaseURL(baseURL string) Option {
	return func(c *HTTPClient) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithUserAgent(userAgent string) Option {
	return func(c *HTTPClient) { c.userAgent = userAgent }
}

func WithClientID(clientID string) Option {
	return func(c *HTTPClient) { c.clientID = clientID }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *HTTPClient) { c.logger = logger }
}

// NewHTTPClient creates a dispatcher. An empty token results in anonymous
// requests.
func NewHTTPClient(token string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		client:    &http.Client{}, //nolint:exhaustruct
		baseURL:   BaseURL,
		token:     token,
		userAgent: constant.DefaultUserAgent,
		clientID:  constant.DefaultClientID,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Route resolves template against the configured base URL.
func (c *HTTPClient) Route(method, template string, params Params) (Route, error) {
	return NewRouteAt(c.baseURL, method, template, params)
}

type RequestOptions struct {
	Query Params
	// Form is sent url-encoded. It is ignored when JSON is set.
	Form Params
	JSON any
}

type Response struct {
	StatusCode int
	Header     http.Header
	// JSON reports whether Body holds JSON. For JSON responses Body is the
	// value of the "result" envelope field, or the whole document if there is
	// no such field. Otherwise Body is the raw response text.
	JSON bool
	Body []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if !r.JSON {
		return flaw.From(errors.New("response body is not json")).Append(flaw.P{"body": string(r.Body)})
	}
	if err := json.Unmarshal(r.Body, v); nil != err {
		flawP := flaw.P{
			"err_debug_tree": errutil.Tree(err).FlawP(),
			"body":           string(r.Body),
			"target_type":    fmt.Sprintf("%T", v),
		}
		return flaw.From(fmt.Errorf("failed to decode response body: %v", err)).Append(flawP)
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Request performs a single call against route. It never retries. Non-2xx
// responses are mapped to the typed errors of this package.
func (c *HTTPClient) Request(ctx context.Context, route Route, opts RequestOptions) (*Response, error) {
	reqURL, err := url.Parse(route.URL)
	if nil != err {
		flawP := flaw.P{"url": route.URL, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to parse route url: %v", err)).Append(flawP)
	}

	if len(opts.Query) > 0 {
		query, err := NormalizeQuery(opts.Query)
		if nil != err {
			return nil, err
		}
		existing := reqURL.Query()
		for k, v := range query {
			existing[k] = v
		}
		reqURL.RawQuery = existing.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case nil != opts.JSON:
		b, err := json.Marshal(opts.JSON)
		if nil != err {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to encode json request body: %v", err)).Append(flawP)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	case len(opts.Form) > 0:
		form, err := NormalizeQuery(opts.Form)
		if nil != err {
			return nil, err
		}
		body, contentType = strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, reqURL.String(), body)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to create request: %v", err)).Append(flawP)
	}
	c.setHeaders(req, true)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, respBody, err := c.do(ctx, req)
	if nil != err {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, classify(resp, respBody)
	}

	if !httputil.IsJSON(resp.Header) {
		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, JSON: false, Body: respBody}, nil
	}
	if !gjson.ValidBytes(respBody) {
		flawP := flaw.P{"request": errutil.HTTPRequestFlawPayload(req), "response": errutil.HTTPResponseFlawPayload(resp), "body": string(respBody)}
		return nil, flaw.From(errors.New("response declares json content type but body is not valid json")).Append(flawP)
	}

	result := respBody
	if r := gjson.GetBytes(respBody, "result"); r.Exists() {
		result = []byte(r.Raw)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, JSON: true, Body: result}, nil
}

// Document fetches an absolute URL outside of the API origin, such as the
// download-info document, and returns its raw body.
func (c *HTTPClient) Document(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP := flaw.P{"url": link, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to create document request: %v", err)).Append(flawP)
	}
	c.setHeaders(req, false)

	resp, body, err := c.do(ctx, req)
	if nil != err {
		return nil, err
	}

	switch code := resp.StatusCode; {
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		return body, nil
	default:
		return nil, classify(resp, body)
	}
}

// Stream opens the media at link. The caller must close the returned body.
// size is -1 if the server did not declare a content length.
func (c *HTTPClient) Stream(ctx context.Context, link string) (body io.ReadCloser, size int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, 0, ctx.Err()
		}

		flawP := flaw.P{"url": link, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, 0, flaw.From(fmt.Errorf("failed to create stream request: %v", err)).Append(flawP)
	}
	c.setHeaders(req, false)

	resp, err := c.send(ctx, req)
	if nil != err {
		return nil, 0, err
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, resp.ContentLength, nil
	}

	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			c.logger.Debug().Err(closeErr).Msg("Failed to close stream response body")
		}
	}()
	respBody, err := httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return nil, 0, err
	}
	return nil, 0, classify(resp, respBody)
}

func (c *HTTPClient) setHeaders(req *http.Request, api bool) {
	req.Header.Set("User-Agent", c.userAgent)
	if !api {
		return
	}
	req.Header.Set("X-Yandex-Music-Client", c.clientID)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "OAuth "+c.token)
	}
}

func (c *HTTPClient) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{
				"request":        errutil.HTTPRequestFlawPayload(req),
				"err_debug_tree": errutil.Tree(err).FlawP(),
			}
			return nil, flaw.From(fmt.Errorf("failed to send request: %v", err)).Append(flawP)
		}
	}

	c.logger.
		Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Str("request_id", req.Header.Get("X-Request-Id")).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request finished")

	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, req *http.Request) (resp *http.Response, body []byte, err error) {
	resp, err = c.send(ctx, req)
	if nil != err {
		return nil, nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close response body: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				resp, body, err = nil, nil, closeErr
			case errutil.IsContext(ctx):
				err = flaw.From(errors.New("context was ended")).Join(closeErr)
			case errors.Is(err, context.DeadlineExceeded):
				err = flaw.From(errors.New("timeout has reached")).Join(closeErr)
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			default:
				err = flaw.From(err).Join(closeErr)
			}
		}
	}()

	body, err = httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return nil, nil, err
	}
	return resp, body, nil
}

func classify(resp *http.Response, body []byte) error {
	base := HTTPError{
		StatusCode:  resp.StatusCode,
		Body:        body,
		Name:        "",
		Message:     "",
		EdgeBlocked: false,
	}
	isJSON := httputil.IsJSON(resp.Header) && gjson.ValidBytes(body)
	if isJSON {
		base.Name, base.Message = apiError(body)
	}

	switch code := resp.StatusCode; {
	case code == http.StatusTooManyRequests:
		base.EdgeBlocked = resp.Header.Get("Via") == "" || !isJSON
		return &base
	case code == http.StatusForbidden:
		return &ForbiddenError{HTTPError: base}
	case code == http.StatusNotFound:
		return &NotFoundError{HTTPError: base, IDs: nil, Query: ""}
	case code >= http.StatusInternalServerError:
		return &ServerError{HTTPError: base}
	default:
		return &base
	}
}

// apiError extracts the error name and message from either of the two error
// body shapes the API uses.
func apiError(body []byte) (name, message string) {
	e := gjson.GetBytes(body, "error")
	switch e.Type {
	case gjson.String:
		return e.String(), gjson.GetBytes(body, "error_description").String()
	case gjson.JSON:
		return e.Get("name").String(), e.Get("message").String()
	default:
		return "", ""
	}
}

// Package clients provides the HTTP request dispatcher for the brain
// management service. Every resource operation flows through a single
// Client, which owns header construction, timeout enforcement, redirect
// policy, error classification, response normalization, and the one-shot
// credential fallback for rejected access keys.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/logging"
	"github.com/jsamuelsen/go-brain-sdk/internal/ports"
)

const (
	// instrumentationName is used for OpenTelemetry tracer and meter.
	instrumentationName = "github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"

	// httpStatusCategoryDivisor divides status code to get category (2xx, 4xx, 5xx).
	httpStatusCategoryDivisor = 100

	// DefaultTimeout is the request timeout used when none is configured.
	// Long-running operations such as package uploads and exported brain
	// creation need a generous ceiling.
	DefaultTimeout = 300 * time.Second

	// maxRedirects caps redirect following for GET requests.
	maxRedirects = 10

	// credentialTailLen is how many trailing credential characters survive
	// redaction in debug header dumps.
	credentialTailLen = 10

	// transportMaxIdleConns is the maximum number of idle connections.
	transportMaxIdleConns = 100

	// transportMaxIdleConnsPerHost is the maximum idle connections per host.
	transportMaxIdleConnsPerHost = 10

	// transportIdleConnTimeout is the idle connection timeout.
	transportIdleConnTimeout = 90 * time.Second
)

// Header names used on the wire.
const (
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
	headerContentType   = "Content-Type"

	// HeaderRequestID carries the per-attempt correlation id.
	HeaderRequestID = "RequestId"

	// HeaderSpanID is returned by the server for distributed tracing.
	HeaderSpanID = "SpanID"

	// HeaderResponseTime is the server-reported request timing.
	HeaderResponseTime = "X-Response-Time"
)

// contentTypeJSON is sent with JSON-encoded payloads.
const contentTypeJSON = "application/json"

// Verb selects the HTTP method and body encoding for a dispatch. The RAW
// variants send the payload as an opaque body instead of JSON-encoding it.
type Verb string

// Supported dispatch verbs.
const (
	VerbGet     Verb = "GET"
	VerbDelete  Verb = "DELETE"
	VerbPut     Verb = "PUT"
	VerbPost    Verb = "POST"
	VerbPatch   Verb = "PATCH"
	VerbPostRaw Verb = "POST_RAW"
	VerbPutRaw  Verb = "PUT_RAW"
)

// method returns the HTTP method for the verb.
func (v Verb) method() string {
	switch v {
	case VerbPostRaw:
		return http.MethodPost
	case VerbPutRaw:
		return http.MethodPut
	default:
		return string(v)
	}
}

// raw reports whether the payload is sent without JSON encoding.
func (v Verb) raw() bool {
	return v == VerbPostRaw || v == VerbPutRaw
}

// valid reports whether the verb is supported.
func (v Verb) valid() bool {
	switch v {
	case VerbGet, VerbDelete, VerbPut, VerbPost, VerbPatch, VerbPostRaw, VerbPutRaw:
		return true
	default:
		return false
	}
}

// fallbackSentinels are the markers the server reports when a legacy access
// key is rejected. Seeing one triggers the single federated-token retry.
var fallbackSentinels = []string{"LegacyAuthDeprecated", "InvalidUseOfAccessKey"}

// Config configures a dispatcher instance.
type Config struct {
	// BaseURL is the configured API origin. It is quoted in redirect
	// diagnostics so a misconfigured URL is visible to the user.
	BaseURL string

	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// UserAgent identifies the client version and platform.
	// Defaults to UserAgent("dev").
	UserAgent string

	// Credential is the access key sent in the Authorization header.
	// Mandatory.
	Credential string

	// TenantID selects the directory used by the fallback token exchange.
	TenantID string

	// Tokens supplies federated tokens when the access key scheme is
	// rejected. Optional; without one, rejections surface unchanged.
	Tokens ports.TokenProvider

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// Client dispatches HTTP requests to the brain service. It provides:
//   - Uniform header construction with a fresh correlation id per attempt
//   - Timeout enforcement and connection/timeout failure classification
//   - Structured extraction of the server error envelope
//   - Normalization of responses into a uniform Result
//   - A one-shot credential refresh when legacy key auth is rejected
//   - OpenTelemetry tracing and metrics
//
// The credential field is mutated only by the fallback branch and is not
// synchronized. Callers dispatching concurrently must serialize access to a
// shared Client or use one Client per goroutine.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger

	credential string
	tenantID   string
	tokens     ports.TokenProvider

	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// UserAgent builds the client identification string sent with every request.
func UserAgent(version string) string {
	return fmt.Sprintf("go-brain-sdk/%s (%s; %s)", version, runtime.Version(), runtime.GOOS)
}

// New creates a new request dispatcher.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.Credential == "" {
		return nil, domain.NewConfigurationErrorWithReason("accessKey", "Access key is missing")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = UserAgent("dev")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "clients.Client"))

	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	httpClient := &http.Client{
		Timeout:       timeout,
		CheckRedirect: checkRedirect,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        transportMaxIdleConns,
			MaxIdleConnsPerHost: transportMaxIdleConnsPerHost,
			IdleConnTimeout:     transportIdleConnTimeout,
		},
	}

	return &Client{
		http:            httpClient,
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:       userAgent,
		timeout:         timeout,
		logger:          logger,
		credential:      cfg.Credential,
		tenantID:        cfg.TenantID,
		tokens:          cfg.Tokens,
		tracer:          tracer,
		meter:           meter,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// checkRedirect follows redirects for GET requests only, capped at
// maxRedirects. Mutating verbs get the redirect response back untouched so
// the dispatcher can classify it.
func checkRedirect(_ *http.Request, via []*http.Request) error {
	if via[0].Method != http.MethodGet {
		return http.ErrUseLastResponse
	}

	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}

	return nil
}

// Credential returns the credential currently attached to outgoing requests.
func (c *Client) Credential() string {
	return c.credential
}

// RefreshCredential exchanges the tenant for a federated token and installs
// it as the current credential. An empty tenant falls back to the configured
// one. The previous credential is never restored.
func (c *Client) RefreshCredential(ctx context.Context, tenantID string) (string, error) {
	if c.tokens == nil {
		return "", domain.NewUsageError("no token provider configured")
	}

	if tenantID == "" {
		tenantID = c.tenantID
	}

	token, err := c.tokens.FederatedToken(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("refreshing credential: %w", err)
	}

	c.credential = token

	return token, nil
}

// Dispatch performs one HTTP call and returns the normalized result record.
//
// A second attempt happens in exactly one case: the response is an HTTP
// error whose diagnostic text carries a legacy-auth rejection marker and a
// token provider is configured. The credential is then refreshed and the
// identical request resent once under a fresh correlation id. Connection
// failures and timeouts are never retried.
func (c *Client) Dispatch(ctx context.Context, verb Verb, url string, payload any, extraHeaders map[string]string) (Result, error) {
	if !verb.valid() {
		return nil, domain.NewUsageError(fmt.Sprintf("unsupported http verb %q", string(verb)))
	}

	body, contentType, err := encodePayload(verb, payload)
	if err != nil {
		return nil, domain.NewUsageError(fmt.Sprintf("encoding %s payload: %v", verb.method(), err))
	}

	logger := logging.FromContext(ctx).With(
		slog.String("component", "clients.Client"),
		slog.String("method", verb.method()),
		slog.String("url", url),
	)

	ctx, span := c.tracer.Start(ctx, "HTTP "+verb.method(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", verb.method()),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	result, err := c.attempt(ctx, verb, url, body, contentType, extraHeaders, logger, true)

	if err != nil && c.tokens != nil && isLegacyAuthRejection(err) {
		logger.Debug("access key rejected, retrying with federated token")

		if _, refreshErr := c.RefreshCredential(ctx, c.tenantID); refreshErr != nil {
			span.SetStatus(codes.Error, refreshErr.Error())
			return nil, refreshErr
		}

		result, err = c.attempt(ctx, verb, url, body, contentType, extraHeaders, logger, false)
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", result.StatusCode()))

	return result, nil
}

// attempt performs a single request round trip. first marks the initial
// attempt, which additionally logs the redacted header dump.
func (c *Client) attempt(ctx context.Context, verb Verb, url string, body []byte, contentType string, extraHeaders map[string]string, logger *slog.Logger, first bool) (Result, error) {
	correlationID := uuid.NewString()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, verb.method(), url, reader)
	if err != nil {
		return nil, domain.NewUsageError(fmt.Sprintf("creating %s request for %s: %v", verb.method(), url, err))
	}

	c.setHeaders(ctx, req, correlationID, contentType, extraHeaders)

	logger.Debug("dispatching request", slog.String("request_id", correlationID))

	if first {
		logger.Debug("request headers", slog.Any("headers", redactHeaders(req.Header)))
	}

	// Elapsed mirrors time-to-response-headers, so it is taken before the
	// body is read.
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		return nil, c.classifyTransportFailure(ctx, verb, url, correlationID, elapsed, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("failed to close response body", slog.Any("error", closeErr))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordMetrics(ctx, verb.method(), resp.StatusCode, elapsed, "read_error")
		return nil, domain.NewConnectionError(url, correlationID, err)
	}

	logger.Log(ctx, logging.LevelTrace, "response received",
		slog.String("request_id", correlationID),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(respBody)),
	)

	// Redirects that reach this point were either not followed (mutating
	// verbs) or unfollowable (no Location); both mean the configured base
	// URL is wrong.
	if resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest {
		c.recordMetrics(ctx, verb.method(), resp.StatusCode, elapsed, "redirect")
		return nil, domain.NewMisconfiguredRedirectError(resp.StatusCode, c.baseURL)
	}

	statusCategory := fmt.Sprintf("%dxx", resp.StatusCode/httpStatusCategoryDivisor)
	c.recordMetrics(ctx, verb.method(), resp.StatusCode, elapsed, statusCategory)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classify(resp, respBody, correlationID, elapsed)
	}

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", elapsed),
	)

	return normalize(resp, respBody, elapsed), nil
}

// setHeaders builds the uniform header set. Caller-supplied extra headers
// are overlaid last and may override any default.
func (c *Client) setHeaders(ctx context.Context, req *http.Request, correlationID, contentType string, extra map[string]string) {
	req.Header.Set(headerAuthorization, c.credential)
	req.Header.Set(headerUserAgent, c.userAgent)
	req.Header.Set(HeaderRequestID, correlationID)

	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	for k, v := range extra {
		req.Header.Set(k, v)
	}
}

// classifyTransportFailure distinguishes timeouts from connection failures.
// Neither is retried.
func (c *Client) classifyTransportFailure(ctx context.Context, verb Verb, url, correlationID string, elapsed time.Duration, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.recordMetrics(ctx, verb.method(), 0, elapsed, "timeout")
		return domain.NewTimeoutError(url, c.timeout, correlationID, err)
	}

	c.recordMetrics(ctx, verb.method(), 0, elapsed, "connection_error")

	return domain.NewConnectionError(url, correlationID, err)
}

// recordMetrics records request metrics.
func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// encodePayload prepares the request body. JSON verbs marshal the payload
// and pick up the JSON content type; raw verbs pass caller-encoded bytes
// through untouched. GET and DELETE never carry a body.
func encodePayload(verb Verb, payload any) ([]byte, string, error) {
	if payload == nil || verb == VerbGet || verb == VerbDelete {
		return nil, "", nil
	}

	if verb.raw() {
		switch data := payload.(type) {
		case []byte:
			return data, "", nil
		case string:
			return []byte(data), "", nil
		default:
			return nil, "", fmt.Errorf("raw payload must be []byte or string, got %T", payload)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	return body, contentTypeJSON, nil
}

// isLegacyAuthRejection reports whether the error is a server error whose
// diagnostic text carries a legacy-auth rejection marker.
func isLegacyAuthRejection(err error) bool {
	var serverErr *domain.ServerError
	if !errors.As(err, &serverErr) {
		return false
	}

	text := serverErr.Error()
	for _, marker := range fallbackSentinels {
		if strings.Contains(text, marker) {
			return true
		}
	}

	return false
}

// redactHeaders returns a loggable copy of the headers with the credential
// scrubbed.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		v := h.Get(k)
		if k == headerAuthorization {
			v = ScrubCredential(v)
		}
		out[k] = v
	}

	return out
}

// ScrubCredential masks all but the last characters of a credential for
// safe display.
func ScrubCredential(credential string) string {
	if len(credential) <= credentialTailLen {
		return "***"
	}

	return "***" + credential[len(credential)-credentialTailLen:]
}

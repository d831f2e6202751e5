package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request builds and executes one HTTP call.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
}

// Response wraps http.Response with the already-read body.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError reports a status code of 400 or above.
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

type requestBuilder struct {
	client       *InstrumentedClient
	headers      map[string]string
	query        url.Values
	body         any
	result       any
	errorHandler ResponseErrorHandler
	labels       []Label
}

func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

// SetBody sets the body; values other than []byte, string and io.Reader
// are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

// SetResult decodes a successful JSON response into result.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	c := r.client
	fullURL := r.resolve(path)

	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", fullURL),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	start := time.Now()

	bodyReader, err := r.encodeBody(span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		r.recordError(ctx, span, err, start)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.recordError(ctx, span, err, start)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.logResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(body)),
		))
	}

	response := &Response{Response: resp, body: body}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, body); handlerErr != nil {
			span.SetStatus(codes.Error, handlerErr.Error())
			r.recordMetrics(ctx, false, start)
			return response, handlerErr
		}
	}

	if r.result != nil && !response.IsError() && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to decode response")
			r.recordMetrics(ctx, false, start)
			return response, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	r.recordMetrics(ctx, !response.IsError(), start)
	return response, nil
}

func (r *requestBuilder) resolve(path string) string {
	fullURL := path
	if base := r.client.baseURL; base != "" && !strings.HasPrefix(path, "http") {
		fullURL = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) == 0 {
		return fullURL
	}
	sep := "?"
	if strings.Contains(fullURL, "?") {
		sep = "&"
	}
	return fullURL + sep + r.query.Encode()
}

func (r *requestBuilder) encodeBody(span trace.Span) (io.Reader, error) {
	var raw []byte
	switch b := r.body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case []byte:
		raw = b
	case string:
		raw = []byte(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		raw = encoded
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
	}

	if r.client.logRequest {
		span.AddEvent("request.body", trace.WithAttributes(
			attribute.String("http.request_body", string(raw)),
		))
	}
	return bytes.NewReader(raw), nil
}

func (r *requestBuilder) recordError(ctx context.Context, span trace.Span, err error, start time.Time) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.recordMetrics(ctx, false, start)
}

func (r *requestBuilder) recordMetrics(ctx context.Context, success bool, start time.Time) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", r.client.providerName),
		attribute.Bool("success", success),
	}
	for _, label := range r.labels {
		attrs = append(attrs, attribute.String(label.Key, label.Value))
	}

	set := metric.WithAttributes(attrs...)
	r.client.requestCounter.Add(ctx, 1, set)
	r.client.requestLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0, set)
}

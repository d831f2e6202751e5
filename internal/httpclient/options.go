// Package httpclient provides an otel-instrumented HTTP client with a small
// request builder.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TraceOption selects which bodies are attached to spans.
type TraceOption string

const (
	TraceRequest  TraceOption = "request"
	TraceResponse TraceOption = "response"
)

// ClientOptions holds configuration for the instrumented client.
type ClientOptions struct {
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	roundTripper   http.RoundTripper
	requestTimeout *time.Duration
	providerName   string
	baseURL        string
	headers        map[string]string
	logRequest     bool
	logResponse    bool
}

// ClientOption configures ClientOptions.
type ClientOption func(*ClientOptions)

func newClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithMeterProvider sets the meter provider used for client metrics.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *ClientOptions) {
		o.meterProvider = mp
	}
}

// WithProviderName names the upstream in metrics and spans.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) {
		o.providerName = name
	}
}

// WithRoundTripper replaces the base transport.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *ClientOptions) {
		o.roundTripper = rt
	}
}

// WithRequestTimeout bounds each request. Zero means no timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.requestTimeout = &timeout
	}
}

// WithHeaders sets headers sent with every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		o.headers = headers
	}
}

// WithBaseURL resolves relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}

// WithTraceOptions sets the tracer and enables body capture on spans.
func WithTraceOptions(tracer trace.Tracer, opts ...TraceOption) ClientOption {
	return func(o *ClientOptions) {
		o.tracer = tracer
		for _, opt := range opts {
			switch opt {
			case TraceRequest:
				o.logRequest = true
			case TraceResponse:
				o.logResponse = true
			}
		}
	}
}

// RequestOptions holds per-request configuration.
type RequestOptions struct {
	responseErrorHandler ResponseErrorHandler
	labels               []Label
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// ResponseErrorHandler turns an upstream response into an error, or nil.
type ResponseErrorHandler func(statusCode int, body []byte) error

// WithResponseErrorHandler sets the handler run after the body is read.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *RequestOptions) {
		o.responseErrorHandler = handler
	}
}

// Label is a metric attribute attached to one request.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a label.
func NewLabel(key, value string) Label {
	return Label{Key: key, Value: value}
}

// WithLabels attaches labels to the request metrics.
func WithLabels(labels ...Label) RequestOption {
	return func(o *RequestOptions) {
		o.labels = append(o.labels, labels...)
	}
}

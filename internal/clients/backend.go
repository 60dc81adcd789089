package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/flightdeck/gateway-api/internal/metrics"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gateway-clients")

// TokenSource supplies the bearer token attached to authenticated backend
// requests. It returns "" when no session is live.
type TokenSource func(ctx context.Context) string

// Backend is the shared HTTP plumbing for the flight booking API. Every call
// is fire-once: no retries, no caching, no request dedup.
type Backend struct {
	service     string
	baseURL     string
	httpClient  *http.Client
	logger      *logrus.Logger
	tokenSource TokenSource
}

// NewBackend creates the request plumbing for one backend service area.
// tokenSource may be nil for unauthenticated surfaces.
func NewBackend(service, baseURL string, logger *logrus.Logger, tokenSource TokenSource) *Backend {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Backend{
		service:     service,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
		tokenSource: tokenSource,
	}
}

func (b *Backend) get(ctx context.Context, path string, query url.Values, out interface{}, fallback string) error {
	return b.Do(ctx, http.MethodGet, path, query, nil, out, fallback)
}

func (b *Backend) post(ctx context.Context, path string, body, out interface{}, fallback string) error {
	return b.Do(ctx, http.MethodPost, path, nil, body, out, fallback)
}

func (b *Backend) delete(ctx context.Context, path string, out interface{}, fallback string) error {
	return b.Do(ctx, http.MethodDelete, path, nil, nil, out, fallback)
}

func (b *Backend) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}, fallback string) error {
	start := time.Now()

	ctx, span := tracer.Start(ctx, b.service+" "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("backend.service", b.service),
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)

	reqURL := b.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to encode request", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if b.tokenSource != nil {
		if token := b.tokenSource(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := b.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendCall(b.service, method, 0, time.Since(start))
		span.RecordError(err)
		return b.transportError(ctx, err)
	}
	defer resp.Body.Close()

	metrics.RecordBackendCall(b.service, method, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return b.transportError(ctx, err)
	}

	if resp.StatusCode >= 400 {
		message := backendMessage(respBody)
		if message == "" {
			message = fallback
		}
		b.logger.WithFields(logrus.Fields{
			"service": b.service,
			"method":  method,
			"path":    path,
			"status":  resp.StatusCode,
		}).Debug("Backend call failed")
		return apperrors.NewBackendError(resp.StatusCode, message, nil)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperrors.NewAppError(apperrors.CodeBackendError,
				fmt.Sprintf("Unexpected response from %s service", b.service), err)
		}
	}

	return nil
}

// transportError distinguishes a timed-out call from an unreachable backend.
func (b *Backend) transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewAppError(apperrors.CodeUpstreamTimeout,
			"The booking service did not respond in time.", err)
	}
	return apperrors.NewAppError(apperrors.CodeUpstreamUnavailable,
		"Unable to reach the booking service. Please try again later.", err)
}

// backendMessage extracts the backend-reported message from an error body.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// retimeout swaps the generic timeout message for an operation-specific one.
func retimeout(err error, message string) error {
	if err == nil || !apperrors.IsTimeout(err) {
		return err
	}
	return apperrors.NewAppError(apperrors.CodeUpstreamTimeout, message, err)
}

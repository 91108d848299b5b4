// Package handler adapts AWS Lambda events onto the HTTP router.
package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

const requestIDHeader = "X-Request-Id"

// Flusher waits for background work started while serving a request.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Handler serves API Gateway proxy events through an http.Handler.
type Handler struct {
	router       http.Handler
	flusher      Flusher
	flushTimeout time.Duration
}

func NewHandler(router http.Handler, flusher Flusher) (*Handler, error) {
	if router == nil {
		return nil, errors.New("handler: router must not be nil")
	}
	if flusher == nil {
		return nil, errors.New("handler: flusher must not be nil")
	}
	return &Handler{router: router, flusher: flusher, flushTimeout: 30 * time.Second}, nil
}

// Handle converts the event to an *http.Request, serves it, and waits for
// pending conversation writes before returning so none are lost when the
// execution environment freezes.
func (h *Handler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := toHTTPRequest(ctx, ev)
	if err != nil {
		slog.Error("handler: build request", "path", ev.Path, "err", err)
		return textResponse(http.StatusBadRequest, "Bad Request"), nil
	}

	rec := newResponseRecorder()
	h.router.ServeHTTP(rec, req)

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.flushTimeout)
	defer cancel()
	if err := h.flusher.Flush(flushCtx); err != nil {
		slog.Error("handler: pending writes did not finish", "err", err)
	}

	return rec.toProxyResponse(), nil
}

func toHTTPRequest(ctx context.Context, ev events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		body = decoded
	}

	method := ev.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	path := ev.Path
	if path == "" {
		path = "/"
	}
	u := &url.URL{Path: path, RawQuery: queryString(ev).Encode()}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range ev.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range ev.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get(requestIDHeader) == "" && ev.RequestContext.RequestID != "" {
		req.Header.Set(requestIDHeader, ev.RequestContext.RequestID)
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	req.RemoteAddr = ev.RequestContext.Identity.SourceIP
	req.ContentLength = int64(len(body))
	return req, nil
}

func queryString(ev events.APIGatewayProxyRequest) url.Values {
	q := url.Values{}
	for k, vs := range ev.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, v := range ev.QueryStringParameters {
		if _, ok := q[k]; !ok {
			q.Set(k, v)
		}
	}
	return q
}

// responseRecorder buffers a full response for the proxy integration.
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: http.Header{}}
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *responseRecorder) toProxyResponse() events.APIGatewayProxyResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(r.header))
	multi := make(map[string][]string, len(r.header))
	for k, vs := range r.header {
		if len(vs) == 0 {
			continue
		}
		headers[k] = strings.Join(vs, ", ")
		multi[k] = append([]string(nil), vs...)
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: multi,
		Body:              r.body.String(),
	}
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}

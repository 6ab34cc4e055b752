package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/translate-queue/internal/api/domain"
	"github.com/cuongbtq/translate-queue/internal/api/handler"
	"github.com/cuongbtq/translate-queue/internal/api/model"
	"github.com/cuongbtq/translate-queue/internal/api/service"
	"github.com/cuongbtq/translate-queue/shared/callbackauth"
	"github.com/cuongbtq/translate-queue/shared/logger"
	"github.com/cuongbtq/translate-queue/shared/metrics"
)

const testRequestID = "3f2b8c1e-5d4a-4c6b-9e7f-1a2b3c4d5e6f"

type stubService struct {
	updates int
}

func (s *stubService) Create(context.Context, string, string, string) (*model.Translation, error) {
	return nil, errors.New("not used")
}

func (s *stubService) Get(_ context.Context, id string) (*model.Translation, error) {
	return &model.Translation{RequestID: id, Status: string(domain.StatusQueued)}, nil
}

func (s *stubService) List(context.Context, service.ListQuery) (*service.ListResult, error) {
	return &service.ListResult{PageSize: service.DefaultPageSize}, nil
}

func (s *stubService) UpdateStatus(_ context.Context, id string, in domain.StatusUpdateInput) (*model.Translation, error) {
	s.updates++
	return &model.Translation{RequestID: id, Status: in.Status}, nil
}

type stubCheck struct{ err error }

func (s stubCheck) HealthCheck(context.Context) error { return s.err }

type fixture struct {
	engine  *gin.Engine
	svc     *stubService
	signer  *callbackauth.Signer
	checks  map[string]HealthChecker
	reg     *prometheus.Registry
	metrics *metrics.Collector
}

func newFixture(t *testing.T, cidrs ...string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prefixes, err := ParseCIDRs(cidrs)
	require.NoError(t, err)
	signer, err := callbackauth.NewSigner("test-secret", time.Minute)
	require.NoError(t, err)

	f := &fixture{
		svc:    &stubService{},
		signer: signer,
		checks: map[string]HealthChecker{"database": stubCheck{}, "rabbitmq": stubCheck{}},
		reg:    prometheus.NewRegistry(),
	}
	f.metrics = metrics.NewCollector(f.reg)

	f.engine = SetupRouter(&Dependencies{
		Logger:      logger.NewNop(),
		ServiceName: "translate-api",
		Handler: handler.NewTranslationHandler(&handler.Dependencies{
			Logger:   logger.NewNop(),
			Service:  f.svc,
			BasePath: TranslationsPath,
		}),
		Verifier:             signer,
		CallbackAllowedCIDRs: prefixes,
		Checks:               f.checks,
		Metrics:              metrics.Handler(f.reg),
	})
	return f
}

func (f *fixture) callback(remoteAddr, token, requestID string) *httptest.ResponseRecorder {
	body := bytes.NewBufferString(`{"status":"PROCESSING"}`)
	req := httptest.NewRequest(http.MethodPut, TranslationsPath+"/"+requestID+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"translate-api"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestReadiness(t *testing.T) {
	t.Run("all components up", func(t *testing.T) {
		f := newFixture(t)
		rec := httptest.NewRecorder()
		f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready","components":{"database":"ok","rabbitmq":"ok"}}`, rec.Body.String())
	})

	t.Run("broker down", func(t *testing.T) {
		f := newFixture(t)
		f.checks["rabbitmq"] = stubCheck{err: errors.New("not connected to RabbitMQ")}

		rec := httptest.NewRecorder()
		f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "not connected to RabbitMQ")
	})
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t)
	f.metrics.RecordRequest("queued")

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `translate_requests_total{outcome="queued"} 1`)
}

func TestRequestIDPropagation(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "trace-1")

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	assert.Equal(t, "trace-1", rec.Header().Get(RequestIDHeader))
}

func TestCallbackAllowList(t *testing.T) {
	f := newFixture(t, "10.0.0.0/8", "::1/128")
	token, err := f.signer.Sign(testRequestID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		wantStatus int
	}{
		{name: "private ipv4", remoteAddr: "10.1.2.3:5555", wantStatus: http.StatusOK},
		{name: "ipv4 mapped ipv6", remoteAddr: "[::ffff:10.1.2.3]:5555", wantStatus: http.StatusOK},
		{name: "loopback ipv6", remoteAddr: "[::1]:5555", wantStatus: http.StatusOK},
		{name: "public peer", remoteAddr: "203.0.113.9:5555", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.callback(tt.remoteAddr, token, testRequestID)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, 3, f.svc.updates)
}

func TestCallbackAllowList_IgnoresForwardedFor(t *testing.T) {
	f := newFixture(t, "10.0.0.0/8")
	token, err := f.signer.Sign(testRequestID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, TranslationsPath+"/"+testRequestID+"/status",
		bytes.NewBufferString(`{"status":"PROCESSING"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.RemoteAddr = "203.0.113.9:5555"
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCallbackAuth(t *testing.T) {
	f := newFixture(t)
	good, err := f.signer.Sign(testRequestID)
	require.NoError(t, err)
	other, err := f.signer.Sign("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", token: "not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "token for another request", token: other, wantStatus: http.StatusUnauthorized},
		{name: "valid token", token: good, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.callback("127.0.0.1:4000", tt.token, testRequestID)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, 1, f.svc.updates)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, TranslationsPath, nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseCIDRs(t *testing.T) {
	got, err := ParseCIDRs([]string{" 172.16.0.0/12 ", "10.1.2.3/8"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("172.16.0.0/12"),
		netip.MustParsePrefix("10.0.0.0/8"),
	}, got)

	_, err = ParseCIDRs([]string{"10.0.0.0"})
	require.Error(t, err)
}

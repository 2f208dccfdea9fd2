package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/pdf"
	"creator-growth/internal/repository"
	"creator-growth/internal/service"
)

const testAdminKey = "let-me-in"

type testServer struct {
	router  *gin.Engine
	analyze *service.AnalysisService
	repos   repository.Set
}

// fakeResponder contesta JSON a las consultas de research y prosa al resto.
func fakeResponder(system, _ string) (string, error) {
	if strings.Contains(system, "JSON") {
		return `{"trends": ["Short tutorials"], "topCompetitors": [{"name": "Rival", "followers": 90000}]}`, nil
	}
	return "Keep going, the numbers are on your side.", nil
}

func newTestServer(t *testing.T, providers []llm.Provider, limiter service.RateLimiter, adminHash string) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	repos := repository.NewMemorySet()
	reports := service.NewReportService(
		service.NewMemoryReportStore(),
		service.NewReportTokenService("test-secret", time.Hour),
		repos.Downloads,
		"http://localhost:8080",
		logger,
	)
	analysis := service.NewAnalysisService(service.AnalysisDeps{
		Providers: providers,
		Research:  service.NewResearchService(providers, time.Second, logger),
		Renderer:  pdf.NewRenderer("Fame Score"),
		Reports:   reports,
		Quizzes:   repos.Quizzes,
		Limiter:   limiter,
		Logger:    logger,
	})
	records := service.NewRecordsService(repos, logger)
	r := NewRouter(logger, NewAnalysisHandler(logger, analysis, reports), NewRecordsHandler(logger, records), adminHash)
	return testServer{router: r, analyze: analysis, repos: repos}
}

func mockProviders() []llm.Provider {
	return []llm.Provider{{Name: llm.ProviderAnthropic, Client: &llm.MockClient{Responder: fakeResponder}}}
}

func performRequest(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var validAnalyzeBody = map[string]any{
	"userId": "u1",
	"email":  "ana@example.com",
	"profile": map[string]any{
		"name":           "Ana",
		"niche":          "Fitness",
		"platform":       "TikTok",
		"followers":      12000,
		"engagementRate": 0.06,
		"monthlyViews":   300000,
	},
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := performRequest(s.router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeAndDownloadReport(t *testing.T) {
	s := newTestServer(t, mockProviders(), nil, "")

	rec := performRequest(s.router, http.MethodPost, "/analyze", validAnalyzeBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result domain.AnalysisResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	s.analyze.Wait()

	res := resp.Result
	if res.Analysis.Tier == "" || res.Analysis.Narrative != "Keep going, the numbers are on your side." {
		t.Fatalf("unexpected analysis %+v", res.Analysis)
	}
	if res.PDFURL == "" {
		t.Fatalf("expected pdf url")
	}

	u, err := url.Parse(res.PDFURL)
	if err != nil {
		t.Fatalf("parse pdf url: %v", err)
	}
	rec = performRequest(s.router, http.MethodGet, u.RequestURI(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for report, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf bytes")
	}

	rec = performRequest(s.router, http.MethodGet, "/reports/"+res.ReportID+"?token=forged", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}
	rec = performRequest(s.router, http.MethodGet, "/reports/"+res.ReportID, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAnalyzeStatusCodes(t *testing.T) {
	badRate := map[string]any{"userId": "u1", "profile": map[string]any{"engagementRate": 2}}
	missingUser := map[string]any{"profile": map[string]any{"followers": 10}}
	negativeFollowers := map[string]any{"userId": "u1", "profile": map[string]any{"followers": -10}}

	tests := []struct {
		name      string
		providers []llm.Provider
		body      any
		want      int
	}{
		{name: "engagement above one", providers: mockProviders(), body: badRate, want: http.StatusBadRequest},
		{name: "missing user", providers: mockProviders(), body: missingUser, want: http.StatusBadRequest},
		{name: "negative followers", providers: mockProviders(), body: negativeFollowers, want: http.StatusBadRequest},
		{name: "no provider", providers: nil, body: validAnalyzeBody, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.providers, nil, "")
			rec := performRequest(s.router, http.MethodPost, "/analyze", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAnalyzeNoProviderMessage(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := performRequest(s.router, http.MethodPost, "/analyze", validAnalyzeBody)
	if !strings.Contains(rec.Body.String(), "no llm provider configured") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	s := newTestServer(t, mockProviders(), service.NewMemoryRateLimiter(time.Hour, 1), "")
	if rec := performRequest(s.router, http.MethodPost, "/analyze", validAnalyzeBody); rec.Code != http.StatusCreated {
		t.Fatalf("expected first call to pass, got %d", rec.Code)
	}
	if rec := performRequest(s.router, http.MethodPost, "/analyze", validAnalyzeBody); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	s.analyze.Wait()
}

func TestAnalyzeRateLimitIgnoresRotatedUserIDs(t *testing.T) {
	s := newTestServer(t, mockProviders(), service.NewMemoryRateLimiter(time.Hour, 1), "")
	if rec := performRequest(s.router, http.MethodPost, "/analyze", validAnalyzeBody); rec.Code != http.StatusCreated {
		t.Fatalf("expected first call to pass, got %d", rec.Code)
	}
	for i := 0; i < 5; i++ {
		body := map[string]any{
			"userId":  fmt.Sprintf("rotated-%d", i),
			"profile": validAnalyzeBody["profile"],
		}
		if rec := performRequest(s.router, http.MethodPost, "/analyze", body); rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for rotated user id %d, got %d", i, rec.Code)
		}
	}
	s.analyze.Wait()
}

func TestRecordEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := performRequest(s.router, http.MethodPost, "/quiz", map[string]any{
		"userId":  "u1",
		"profile": map[string]any{"followers": 1200, "engagementRate": 0.05},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for quiz, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(s.router, http.MethodPost, "/downloads", map[string]any{"userId": "u1", "productId": "brand-pitch-pack"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for download, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = performRequest(s.router, http.MethodPost, "/downloads", map[string]any{"userId": "u1", "productId": "unknown"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
	rec = performRequest(s.router, http.MethodPost, "/downloads", map[string]any{"userId": "u1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without product or report, got %d", rec.Code)
	}

	rec = performRequest(s.router, http.MethodPost, "/payments", map[string]any{
		"userId": "u1", "productId": "brand-pitch-pack", "amountCents": 1900, "status": "succeeded",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for payment, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = performRequest(s.router, http.MethodPost, "/payments", map[string]any{"userId": "u1", "productId": "brand-pitch-pack", "amountCents": -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", rec.Code)
	}

	payments, _ := s.repos.Payments.GetByUserID(t.Context(), "u1")
	if len(payments) != 1 || payments[0].Status != domain.PaymentStatusSucceeded {
		t.Fatalf("unexpected payments %+v", payments)
	}
}

func TestProductEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := performRequest(s.router, http.MethodGet, "/products?engagement=0.8", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Products []domain.ProductViability `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list.Products) == 0 {
		t.Fatalf("unexpected products %s (%v)", rec.Body.String(), err)
	}

	rec = performRequest(s.router, http.MethodGet, "/products/ghost/viability", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"commercialScore":0`) {
		t.Fatalf("unknown products score zero, got %d %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(s.router, http.MethodGet, "/products/brand-pitch-pack/viability?engagement=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad engagement, got %d", rec.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}
	s := newTestServer(t, nil, nil, string(hash))
	performRequest(s.router, http.MethodPost, "/quiz", map[string]any{"userId": "u7", "profile": map[string]any{}})

	if rec := performRequest(s.router, http.MethodGet, "/admin/quizzes", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}
	if rec := performRequest(s.router, http.MethodGet, "/admin/quizzes", nil, adminKeyHeader, "nope"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}

	rec := performRequest(s.router, http.MethodGet, "/admin/quizzes/u7", nil, adminKeyHeader, testAdminKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Quizzes []domain.QuizSubmission `json:"quizzes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp.Quizzes) != 1 {
		t.Fatalf("unexpected quizzes %s (%v)", rec.Body.String(), err)
	}

	for _, path := range []string{"/admin/downloads", "/admin/payments?userId=u7"} {
		if rec := performRequest(s.router, http.MethodGet, path, nil, adminKeyHeader, testAdminKey); rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, rec.Code)
		}
	}
}

func TestAdminRoutesDisabledWithoutHash(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := performRequest(s.router, http.MethodGet, "/admin/payments", nil, adminKeyHeader, testAdminKey)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

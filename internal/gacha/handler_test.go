package gacha

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(f *fixture, authz auth.Authorization) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.AuthorizationKey, authz)
		c.Next()
	})
	r.GET("/gacha/daily/latest", h.GetLatestDaily)
	r.GET("/gacha/daily", h.GetDaily)
	r.POST("/gacha/daily", h.TryDaily)
	return r
}

func doRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandlerTryDaily(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, alice)

	w := doRequest(r, http.MethodPost, "/gacha/daily")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var result TryDailyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Obtained != 7 {
		t.Fatalf("obtained = %d", result.Obtained)
	}

	w = doRequest(r, http.MethodPost, "/gacha/daily")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Daily Gacha Rate Limit Exceeded" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestHandlerAnonymous(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, auth.Anonymous())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/gacha/daily/latest"},
		{http.MethodGet, "/gacha/daily"},
		{http.MethodPost, "/gacha/daily"},
	} {
		if w := doRequest(r, tc.method, tc.path); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestHandlerLatestDailyNull(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, alice)

	w := doRequest(r, http.MethodGet, "/gacha/daily/latest")
	if w.Code != http.StatusOK || w.Body.String() != "null" {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/gacha/daily")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var record map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["is_available"] != true || record["latest_event"] != nil {
		t.Fatalf("record = %v", record)
	}
}

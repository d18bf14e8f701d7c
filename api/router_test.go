package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/gacha"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/clock"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/database/dbtest"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/random"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/startup"
	"github.com/SlpAus/daily-gacha-backend/internal/ranking"
	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "router-test-secret"

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	db := dbtest.Open(t)
	if err := startup.InitializeApplication(db, logger); err != nil {
		t.Fatalf("InitializeApplication: %v", err)
	}

	verifier, err := auth.NewVerifier(config.AuthConfig{HMACSecret: testSecret, RolesClaim: "roles"})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	users := user.NewGormStore(db)
	clk := &clock.Fixed{T: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	gachaService := gacha.NewService(users, gacha.NewGormEventStore(db), clk, random.Uniform{}, nil, logger,
		config.GachaConfig{MinReward: 5, MaxRewardExclusive: 16})
	rankingService := ranking.NewModule(db, nil, logger, config.RankingConfig{DefaultLimit: 20, MaxLimit: 100})

	r := gin.New()
	SetupRoutes(r, verifier, Handlers{
		User:    user.NewHandler(user.NewService(users, logger), logger),
		Gacha:   gacha.NewHandler(gachaService, logger),
		Ranking: ranking.NewHandler(rankingService, logger),
	})
	return r
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func call(r http.Handler, method, path, authorization string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDailyGachaFlow(t *testing.T) {
	r := newTestServer(t)
	alice := bearer(t, "auth0|alice")

	// 未注册的主体无法抽奖
	if w := call(r, http.MethodPost, "/api/gacha/daily", alice, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unregistered draw status = %d, want 404", w.Code)
	}

	if w := call(r, http.MethodPost, "/api/users/me", alice, map[string]string{"display_name": "Alice"}); w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	// 注册后尚无台账行，不出现在排行榜中
	w := call(r, http.MethodGet, "/api/ranking/points", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("ranking before draw = %d %s", w.Code, w.Body.String())
	}

	w = call(r, http.MethodPost, "/api/gacha/daily", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("draw status = %d, body = %s", w.Code, w.Body.String())
	}
	var result gacha.TryDailyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if w := call(r, http.MethodPost, "/api/gacha/daily", alice, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second draw status = %d, want 429", w.Code)
	}

	w = call(r, http.MethodGet, "/api/users/me", alice, nil)
	var me map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me["point"] != float64(result.Obtained) {
		t.Fatalf("point = %v, want %d", me["point"], result.Obtained)
	}

	w = call(r, http.MethodGet, "/api/ranking/point-diffs?limit=5", "", nil)
	var rows []ranking.PointDiffRankingRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Diff != int64(result.Obtained) || rows[0].Current != uint64(result.Obtained) {
		t.Fatalf("ranking = %+v", rows)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	r := newTestServer(t)

	w := call(r, http.MethodGet, "/api/ranking/points", "Bearer not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

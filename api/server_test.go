package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/auth"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/cache"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/events"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/db"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
)

type testEnv struct {
	server *Server
	tokens *auth.Tokens
	cache  *cache.MemoryCache
	events *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	calc, err := NewCalculator(cfg.Pricing)
	require.NoError(t, err)

	tokens := auth.NewTokens(config.AuthConfig{JWTSecret: "test", Issuer: "test", TokenTTLMinutes: 5})
	quotes := cache.NewMemoryCache(0)
	rec := &events.Recorder{}

	return &testEnv{
		server: NewServer(Deps{
			Calculator: calc,
			Workflow:   workflow.NewService(db.NewMemoryStore(), calc.Tiers(), rec, nil),
			Cache:      quotes,
			Tokens:     tokens,
			Version:    "test",
		}),
		tokens: tokens,
		cache:  quotes,
		events: rec,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) token(t *testing.T, role auth.Role, partnerID string) string {
	t.Helper()
	tok, err := e.tokens.Issue(role, partnerID)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	detail, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected an error body, got %s", w.Body.String())
	return detail["code"].(string)
}

var scenarioBody = map[string]interface{}{
	"sales_revenue":               20000000,
	"product_cost":                12000000,
	"quantity":                    1,
	"tier_id":                     "starter_pro",
	"marketplace_commission_rate": 3,
	"logistics_size":              "medium",
}

func TestCalculateScenario(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/calculate", "", scenarioBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "6794000", body["gross_profit"])
	assert.Equal(t, "5000000", body["variable_fee"])
	assert.Equal(t, "7500000", body["total_fulfillment_fee"])
	assert.Equal(t, "-706000", body["partner_final_profit"])
	assert.Equal(t, "-3.53", body["profit_margin_percent"])

	meta := body["metadata"].(map[string]interface{})
	assert.Equal(t, false, meta["cached"])
	assert.Len(t, meta["input_hash"], 64)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestCalculateServesRepeatsFromCache(t *testing.T) {
	env := newTestEnv(t)

	first := decode(t, env.do(t, http.MethodPost, "/api/v1/calculate", "", scenarioBody))

	// same request, different spelling
	respelled := map[string]interface{}{}
	for k, v := range scenarioBody {
		respelled[k] = v
	}
	respelled["marketplace"] = " UZUM "
	respelled["tier_id"] = "starter_pro "

	w := env.do(t, http.MethodPost, "/api/v1/calculate", "", respelled)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode(t, w)

	assert.Equal(t, true, second["metadata"].(map[string]interface{})["cached"])
	assert.Equal(t, first["partner_final_profit"], second["partner_final_profit"])
	assert.Equal(t, 1, env.cache.Len())
}

func TestQuoteCacheKeyedByPricing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shared := cache.NewMemoryCache(0)

	newEnv := func(deduct bool) *testEnv {
		pricing := config.Default().Pricing
		pricing.DeductSPTFee = deduct
		calc, err := NewCalculator(pricing)
		require.NoError(t, err)
		return &testEnv{
			server: NewServer(Deps{Calculator: calc, Cache: shared, Version: "test"}),
			cache:  shared,
		}
	}
	keep, deduct := newEnv(false), newEnv(true)

	w := keep.do(t, http.MethodPost, "/api/v1/calculate", "", scenarioBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "6794000", decode(t, w)["gross_profit"])

	w = deduct.do(t, http.MethodPost, "/api/v1/calculate", "", scenarioBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "6792000", body["gross_profit"])
	assert.Equal(t, false, body["metadata"].(map[string]interface{})["cached"])
	assert.Equal(t, 2, shared.Len())
}

func TestCalculateErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		status int
		code   string
	}{
		{"unknown tier", func(b map[string]interface{}) { b["tier_id"] = "gold_legacy" }, http.StatusNotFound, "TIER_NOT_FOUND"},
		{"negative revenue", func(b map[string]interface{}) { b["sales_revenue"] = -1 }, http.StatusBadRequest, "INPUT_ERROR"},
		{"zero quantity", func(b map[string]interface{}) { b["quantity"] = 0 }, http.StatusBadRequest, "INPUT_ERROR"},
		{"bad size", func(b map[string]interface{}) { b["logistics_size"] = "pallet" }, http.StatusBadRequest, "INPUT_ERROR"},
		{"wrong type", func(b map[string]interface{}) { b["quantity"] = "one" }, http.StatusBadRequest, "INPUT_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]interface{}{}
			for k, v := range scenarioBody {
				body[k] = v
			}
			tt.mutate(body)

			w := env.do(t, http.MethodPost, "/api/v1/calculate", "", body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/tiers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["count"])

	w = env.do(t, http.MethodGet, "/api/v1/tiers/business_standard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "net_profit", decode(t, w)["fee_basis"])

	w = env.do(t, http.MethodGet, "/api/v1/tiers/platinum", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TIER_NOT_FOUND", errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/v1/tiers?revenue=100000000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	tiers := body["tiers"].([]interface{})
	assert.Equal(t, "business_standard", tiers[0].(map[string]interface{})["id"])

	w = env.do(t, http.MethodGet, "/api/v1/tiers?revenue=lots", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommissionEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/marketplaces/uzum/commission?category=electronics&price=6000000", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "premium", body["bracket"])
	assert.Equal(t, "3", body["percent"])

	w = env.do(t, http.MethodGet, "/api/v1/marketplaces/amazon/commission?category=electronics&price=1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/marketplaces/uzum/commission?category=electronics&price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)

	line := map[string]interface{}{
		"sales_revenue":               1000000,
		"product_cost":                400000,
		"quantity":                    2,
		"marketplace_commission_rate": 10,
		"logistics_size":              "small",
	}
	ozon := map[string]interface{}{}
	for k, v := range line {
		ozon[k] = v
	}
	ozon["marketplace"] = "ozon"

	w := env.do(t, http.MethodPost, "/api/v1/analytics/summary", "", map[string]interface{}{
		"tier_id": "business_standard",
		"lines":   []interface{}{line, ozon},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "5000000", body["monthly_fee"])
	assert.Len(t, body["by_marketplace"], 2)

	w = env.do(t, http.MethodPost, "/api/v1/analytics/summary", "", map[string]interface{}{"tier_id": "business_standard"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

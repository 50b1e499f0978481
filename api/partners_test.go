package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/auth"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
)

func registerPartner(t *testing.T, env *testEnv, tier string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/partners", "", map[string]interface{}{
		"business_name": "Farg'ona Silk",
		"tier_id":       tier,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["id"].(string)
}

func TestUpgradeFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, auth.RoleAdmin, "")

	partnerID := registerPartner(t, env, "starter_pro")
	partner := env.token(t, auth.RolePartner, partnerID)

	// pending partners cannot request upgrades
	w := env.do(t, http.MethodPost, "/api/v1/partners/me/tier-upgrades", partner, map[string]string{"requested_tier": "business_standard"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/admin/partners/"+partnerID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["status"])

	w = env.do(t, http.MethodPost, "/api/v1/partners/me/tier-upgrades", partner, map[string]string{
		"requested_tier": "business_standard",
		"reason":         "monthly revenue above 50M",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := decode(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/v1/partners/me/tier-upgrades", partner, map[string]string{"requested_tier": "professional_plus"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/tier-upgrades?status=pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = env.do(t, http.MethodPost, "/api/v1/admin/tier-upgrades/"+requestID+"/approve", admin, map[string]string{"note": "welcome"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["status"])

	w = env.do(t, http.MethodPost, "/api/v1/admin/tier-upgrades/"+requestID+"/reject", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/partners/me", partner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "business_standard", decode(t, w)["pricing_tier"])

	w = env.do(t, http.MethodGet, "/api/v1/partners/me/tier-upgrades", partner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	types := []workflow.EventType{}
	for _, e := range env.events.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []workflow.EventType{workflow.EventPartnerApproved, workflow.EventTierUpgradeApproved}, types)
}

func TestPartnerCalculateUsesActiveTier(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, auth.RoleAdmin, "")

	partnerID := registerPartner(t, env, "business_standard")
	partner := env.token(t, auth.RolePartner, partnerID)

	w := env.do(t, http.MethodPost, "/api/v1/partners/me/calculate", partner, scenarioBody)
	assert.Equal(t, http.StatusForbidden, w.Code, "pending partner")

	w = env.do(t, http.MethodPost, "/api/v1/admin/partners/"+partnerID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/partners/me/calculate", partner, scenarioBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "business_standard", body["tier_id"])
	assert.Equal(t, "net_profit", body["fee_basis"])
	// 6,794,000 × 20%
	assert.Equal(t, "1358800", body["variable_fee"])
}

func TestAuthorization(t *testing.T) {
	env := newTestEnv(t)
	partner := env.token(t, auth.RolePartner, "someone")
	admin := env.token(t, auth.RoleAdmin, "")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"no token", http.MethodGet, "/api/v1/admin/partners", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/v1/admin/partners", "junk", http.StatusUnauthorized},
		{"partner on admin route", http.MethodGet, "/api/v1/admin/partners", partner, http.StatusForbidden},
		{"admin on partner route", http.MethodGet, "/api/v1/partners/me", admin, http.StatusForbidden},
		{"admin lists partners", http.MethodGet, "/api/v1/admin/partners", admin, http.StatusOK},
		{"unknown partner", http.MethodGet, "/api/v1/partners/me", partner, http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/api/v1/admin/partners?status=archived", admin, http.StatusBadRequest},
		{"unknown request", http.MethodPost, "/api/v1/admin/tier-upgrades/nope/approve", admin, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRegisterPartnerValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/partners", "", map[string]string{"tier_id": "starter_pro"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/partners", "", map[string]string{"business_name": "X", "tier_id": "gold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

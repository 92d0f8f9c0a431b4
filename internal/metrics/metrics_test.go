package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                        "/",
		"/":                       "/",
		"/products/approve/12":    "/products/approve/:id",
		"/admin/approveClaim/7/":  "/admin/approveClaim/:id",
		"/auth/me?t=1700000000":   "/auth/me",
		"/policies/myPolicies":    "/policies/myPolicies",
		"/my-policies/3/claim":    "/my-policies/:id/claim",
	}
	for in, want := range cases {
		assert.Equal(t, want, Endpoint(in), in)
	}
}

func TestInstrumentHandler_ExposesCounters(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/5/buy", nil))
	ObserveAPICall("get", "/claims/userClaims", "ok", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.Contains(out, `policydesk_portal_requests_total{method="GET",path="/products/:id/buy",status="418"}`), out)
	assert.True(t, strings.Contains(out, `policydesk_api_requests_total{endpoint="/claims/userClaims",method="GET",outcome="ok"}`), out)
}

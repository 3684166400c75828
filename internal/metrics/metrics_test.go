package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersIncrement(t *testing.T) {
	m := New()

	m.AccountCreated()
	m.AccountCreated()
	m.IdentityFallback()
	m.VoicemailCreated("api")
	m.VoicemailCreated("smtp")
	m.VoicemailCreated("api")
	m.VoicemailReturned()
	m.VoicemailDeleted()
	m.StoreError("list_active")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccountsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityFallbacks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VoicemailsCreated.WithLabelValues("api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VoicemailsCreated.WithLabelValues("smtp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VoicemailsReturned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VoicemailsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("list_active")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.AccountCreated()
		m.IdentityFallback()
		m.VoicemailCreated("api")
		m.VoicemailReturned()
		m.VoicemailDeleted()
		m.StoreError("create")
	})
}

func TestMetrics_HandlerExposesCounters(t *testing.T) {
	m := New()
	m.AccountCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "voicemail_accounts_created_total 1")
}

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New()
	m.FileIngested("csv", OutcomeOK)
	m.FileIngested("csv", OutcomeOK)
	m.FileIngested("", OutcomeUnsupported)
	m.DuplicatesRemoved(3)
	m.MissingFilled(2)
	m.Exported("excel")
	m.SetSessions(4)

	if got := testutil.ToFloat64(m.filesIngested.WithLabelValues("csv", OutcomeOK)); got != 2 {
		t.Errorf("files_ingested{csv,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.filesIngested.WithLabelValues("unknown", OutcomeUnsupported)); got != 1 {
		t.Errorf("files_ingested{unknown,unsupported} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rowsRemoved); got != 3 {
		t.Errorf("rows removed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.sessions); got != 4 {
		t.Errorf("sessions = %v, want 4", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "datasweeper_exports_total") {
		t.Errorf("exposition missing exports counter:\n%s", body)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.FileIngested("csv", OutcomeOK)
	m.DuplicatesRemoved(1)
	m.MissingFilled(1)
	m.ColumnsSelected()
	m.Exported("csv")
	m.SetSessions(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil metrics handler status = %d, want 404", rec.Code)
	}
}

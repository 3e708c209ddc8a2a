package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/starford/fitch/internal/modal"
	"github.com/starford/fitch/internal/verify"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObservePass(t *testing.T) {
	report := &verify.Report{
		System: modal.K,
		Diagnostics: []verify.Diagnostic{
			{Line: 1, Status: verify.Valid},
			{Line: 2, Status: verify.Invalid, Reason: verify.OutOfScope},
		},
	}
	passCounter := passes.WithLabelValues(SourceCLI, "K", "invalid")
	reasonCounter := invalidLines.WithLabelValues(string(verify.OutOfScope))
	before, reasonsBefore := counterValue(t, passCounter), counterValue(t, reasonCounter)

	ObservePass(SourceCLI, verify.Pass{Report: report, Duration: time.Millisecond})

	if got := counterValue(t, passCounter) - before; got != 1 {
		t.Errorf("passes delta = %v, want 1", got)
	}
	if got := counterValue(t, reasonCounter) - reasonsBefore; got != 1 {
		t.Errorf("invalid lines delta = %v, want 1", got)
	}

	// A pass without a report is ignored.
	ObservePass(SourceCLI, verify.Pass{})
}

func TestHandler(t *testing.T) {
	ObservePass(SourceAPI, verify.Pass{Report: &verify.Report{System: modal.None}})

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "fitch_verify_passes_total") {
		t.Error("metrics output missing fitch_verify_passes_total")
	}
}

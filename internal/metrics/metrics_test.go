package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.RecordEvaluation("momentum", "AAPL", 0.01)
	r.RecordEvaluation("momentum", "AAPL", 0.02)
	r.RecordSignal("momentum", "buy")
	r.RecordDuplicate("momentum", "AAPL")
	r.RecordOrder("momentum", "matched")
	r.RecordOrder("momentum", "rejected")
	r.RecordSkip("momentum", "interval")
	r.RecordBacktest("success", 1.5)
	r.SetStrategiesEnabled(3)

	expected := `
		# HELP tradewind_signals_generated_total Total number of signals generated
		# TYPE tradewind_signals_generated_total counter
		tradewind_signals_generated_total{action="buy",strategy="momentum"} 1
	`
	if err := testutil.CollectAndCompare(r.signalsGenerated, strings.NewReader(expected)); err != nil {
		t.Errorf("signals: %v", err)
	}

	if got := testutil.ToFloat64(r.evaluationsTotal.WithLabelValues("momentum", "AAPL")); got != 2 {
		t.Errorf("evaluations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.duplicatesSuppressed.WithLabelValues("momentum", "AAPL")); got != 1 {
		t.Errorf("duplicates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ordersTotal.WithLabelValues("momentum", "rejected")); got != 1 {
		t.Errorf("rejected orders = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.strategiesEnabled); got != 3 {
		t.Errorf("enabled gauge = %v, want 3", got)
	}
}

func TestRegistry_GathersWithoutConflicts(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

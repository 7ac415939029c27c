package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ChallengeFinished("expired")
	m.SetOpenChallenges(3)
	m.Report("win")
	m.Resolved("confirmed", "sweep")
	m.ObserveSweep(time.Second, 1)
	if m.Registry() != nil {
		t.Error("nil metrics returned a registry")
	}
}

func TestCounters(t *testing.T) {
	m := New("test")
	m.Resolved("confirmed", "report")
	m.Resolved("confirmed", "report")
	m.Resolved("timed_out", "sweep")
	m.ObserveSweep(20*time.Millisecond, 2)
	m.SetOpenChallenges(4)

	if got := testutil.ToFloat64(m.resolutions.WithLabelValues("confirmed", "report")); got != 2 {
		t.Errorf("confirmed/report = %v", got)
	}
	if got := testutil.ToFloat64(m.sweepFailures); got != 2 {
		t.Errorf("sweep failures = %v", got)
	}
	if got := testutil.ToFloat64(m.openChallenges); got != 4 {
		t.Errorf("open challenges = %v", got)
	}
	if n, err := testutil.GatherAndCount(m.Registry(), "test_match_resolutions_total"); err != nil || n != 2 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}

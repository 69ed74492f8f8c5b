package perf

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/tempest-stays/tempest/internal/jobs"
)

func TestExportJobThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)

	// Single-host exports triggered from the dashboard.
	for i := 0; i < 60; i++ {
		tracker := metrics.Track("dashboard:export")
		time.Sleep(2 * time.Millisecond)
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending export tracker: %v", err)
		}
	}

	// Nightly runs covering every active host.
	for i := 0; i < 15; i++ {
		tracker := metrics.Track("dashboard:export_all")
		time.Sleep(10 * time.Millisecond)
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending nightly tracker: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		tracker := metrics.Track("dashboard:export")
		time.Sleep(2 * time.Millisecond)
		if err := tracker.End(errors.New("store timeout")); err == nil {
			t.Fatal("expected error to propagate")
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "tempest_jobs_total", map[string]string{"job": "dashboard:export", "status": "success"})
	failure := metricValue(t, families, "tempest_jobs_total", map[string]string{"job": "dashboard:export", "status": "failure"})
	if success+failure == 0 {
		t.Fatal("no export executions recorded")
	}
	ratio := success / (success + failure)
	if ratio < 0.9 {
		t.Fatalf("export success ratio too low: %f", ratio)
	}

	nightly := histogramMean(t, families, "tempest_job_duration_seconds", map[string]string{"job": "dashboard:export_all"})
	if nightly > 2.0 {
		t.Fatalf("nightly export duration above budget: %f", nightly)
	}

	single := histogramMean(t, families, "tempest_job_duration_seconds", map[string]string{"job": "dashboard:export"})
	if single > 0.5 {
		t.Fatalf("single export duration above budget: %f", single)
	}

	failures := metricValue(t, families, "tempest_jobs_failures_total", map[string]string{"job": "dashboard:export"})
	if failures != 3 {
		t.Fatalf("expected 3 failures, got %f", failures)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

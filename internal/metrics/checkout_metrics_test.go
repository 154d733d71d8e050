package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCheckoutMetrics(t *testing.T) {
	metrics := NewCheckoutMetrics()

	if metrics == nil {
		t.Fatal("NewCheckoutMetrics should not return nil")
	}

	if metrics.checkoutStarted == nil {
		t.Error("checkoutStarted counter should not be nil")
	}

	if metrics.checkoutCompleted == nil {
		t.Error("checkoutCompleted counter should not be nil")
	}

	if metrics.checkoutFailed == nil {
		t.Error("checkoutFailed counter should not be nil")
	}

	if metrics.checkoutCancelled == nil {
		t.Error("checkoutCancelled counter should not be nil")
	}

	if metrics.checkoutRejected == nil {
		t.Error("checkoutRejected counter should not be nil")
	}

	if metrics.checkoutDuration == nil {
		t.Error("checkoutDuration histogram should not be nil")
	}

	if metrics.stepDuration == nil {
		t.Error("stepDuration histogram vec should not be nil")
	}

	if metrics.timelineEvents == nil {
		t.Error("timelineEvents counter should not be nil")
	}

	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}

	if metrics.gatewayEvents == nil {
		t.Error("gatewayEvents counter vec should not be nil")
	}

	if metrics.activeCheckouts == nil {
		t.Error("activeCheckouts gauge should not be nil")
	}
}

func TestRecordCheckoutStarted(t *testing.T) {
	reg := prometheus.NewRegistry()

	checkoutStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_started_total",
		Help: "Test counter",
	})
	activeCheckouts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_active_checkouts",
		Help: "Test gauge",
	})

	reg.MustRegister(checkoutStarted, activeCheckouts)

	metrics := &CheckoutMetrics{
		checkoutStarted: checkoutStarted,
		activeCheckouts: activeCheckouts,
	}

	metrics.RecordCheckoutStarted()

	metric := &dto.Metric{}
	if err := checkoutStarted.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := activeCheckouts.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected active checkouts 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordCheckoutFinished(t *testing.T) {
	reg := prometheus.NewRegistry()

	activeCheckouts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_active_checkouts_finished",
		Help: "Test gauge",
	})

	reg.MustRegister(activeCheckouts)

	metrics := &CheckoutMetrics{
		activeCheckouts: activeCheckouts,
	}

	metrics.activeCheckouts.Set(2)
	metrics.RecordCheckoutFinished()

	gaugeMetric := &dto.Metric{}
	if err := activeCheckouts.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected active checkouts 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordCheckoutOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()

	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_completed_total",
		Help: "Test counter",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_failed_total",
		Help: "Test counter",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_cancelled_total",
		Help: "Test counter",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_rejected_total",
		Help: "Test counter",
	})

	reg.MustRegister(completed, failed, cancelled, rejected)

	metrics := &CheckoutMetrics{
		checkoutCompleted: completed,
		checkoutFailed:    failed,
		checkoutCancelled: cancelled,
		checkoutRejected:  rejected,
	}

	metrics.RecordCheckoutCompleted()
	metrics.RecordCheckoutCompleted()
	metrics.RecordCheckoutFailed()
	metrics.RecordCheckoutCancelled()
	metrics.RecordCheckoutRejected()

	checks := []struct {
		name    string
		counter prometheus.Counter
		want    float64
	}{
		{"completed", completed, 2.0},
		{"failed", failed, 1.0},
		{"cancelled", cancelled, 1.0},
		{"rejected", rejected, 1.0},
	}
	for _, check := range checks {
		metric := &dto.Metric{}
		if err := check.counter.Write(metric); err != nil {
			t.Fatalf("failed to write %s metric: %v", check.name, err)
		}
		if metric.Counter.GetValue() != check.want {
			t.Errorf("expected %s counter %f, got %f", check.name, check.want, metric.Counter.GetValue())
		}
	}
}

func TestRecordCheckoutDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_checkout_duration_seconds",
		Help:    "Test histogram",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(checkoutDuration)

	metrics := &CheckoutMetrics{
		checkoutDuration: checkoutDuration,
	}

	metrics.RecordCheckoutDuration(100 * time.Millisecond)
	metrics.RecordCheckoutDuration(500 * time.Millisecond)
	metrics.RecordCheckoutDuration(1 * time.Second)

	metric := &dto.Metric{}
	if err := checkoutDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordStepDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_checkout_step_duration_seconds",
		Help:    "Test histogram vec",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"step"})

	reg.MustRegister(stepDuration)

	metrics := &CheckoutMetrics{
		stepDuration: stepDuration,
	}

	metrics.RecordStepDuration("create_order", 50*time.Millisecond)
	metrics.RecordStepDuration("verify", 100*time.Millisecond)

	createMetric := &dto.Metric{}
	observer := stepDuration.WithLabelValues("create_order")
	if err := observer.(prometheus.Histogram).Write(createMetric); err != nil {
		t.Fatalf("failed to write create_order metric: %v", err)
	}

	if createMetric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 sample for create_order, got %d", createMetric.Histogram.GetSampleCount())
	}
}

func TestRecordGatewayEvent(t *testing.T) {
	reg := prometheus.NewRegistry()

	gatewayEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_gateway_events_total",
		Help: "Test counter vec",
	}, []string{"kind"})

	reg.MustRegister(gatewayEvents)

	metrics := &CheckoutMetrics{
		gatewayEvents: gatewayEvents,
	}

	metrics.RecordGatewayEvent("success")
	metrics.RecordGatewayEvent("success")
	metrics.RecordGatewayEvent("dismissed")

	metric := &dto.Metric{}
	if err := gatewayEvents.WithLabelValues("success").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 success events, got %f", metric.Counter.GetValue())
	}
}

func TestRecordTimelineAndOutboxEvents(t *testing.T) {
	reg := prometheus.NewRegistry()

	timelineEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_timeline_events_total",
		Help: "Test counter",
	})
	outboxEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_outbox_events_total",
		Help: "Test counter",
	})

	reg.MustRegister(timelineEvents, outboxEvents)

	metrics := &CheckoutMetrics{
		timelineEvents: timelineEvents,
		outboxEvents:   outboxEvents,
	}

	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordOutboxEvent()

	metric := &dto.Metric{}
	if err := timelineEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 3.0 {
		t.Errorf("expected counter value 3.0, got %f", metric.Counter.GetValue())
	}

	outboxMetric := &dto.Metric{}
	if err := outboxEvents.Write(outboxMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if outboxMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", outboxMetric.Counter.GetValue())
	}
}

func TestCheckoutLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()

	activeCheckouts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_checkout_lifecycle_active",
		Help: "Test gauge",
	})
	checkoutStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_lifecycle_started",
		Help: "Test counter",
	})
	checkoutCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_checkout_lifecycle_completed",
		Help: "Test counter",
	})

	reg.MustRegister(activeCheckouts, checkoutStarted, checkoutCompleted)

	metrics := &CheckoutMetrics{
		activeCheckouts:   activeCheckouts,
		checkoutStarted:   checkoutStarted,
		checkoutCompleted: checkoutCompleted,
	}

	metrics.RecordCheckoutStarted()
	metrics.RecordCheckoutCompleted()
	metrics.RecordCheckoutFinished()

	metrics.RecordCheckoutStarted()

	gaugeMetric := &dto.Metric{}
	if err := activeCheckouts.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1 active checkout, got %f", gaugeMetric.Gauge.GetValue())
	}

	startedMetric := &dto.Metric{}
	if err := checkoutStarted.Write(startedMetric); err != nil {
		t.Fatalf("failed to write started metric: %v", err)
	}

	if startedMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 started checkouts, got %f", startedMetric.Counter.GetValue())
	}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the submission flow.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	imageBytes       prometheus.Histogram
	notifyTotal      *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skins",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total submission attempts",
		}, []string{"status"}),
		imageBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skins",
			Subsystem: "intake",
			Name:      "image_bytes",
			Help:      "Size of ingested design images",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 6),
		}),
		notifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skins",
			Subsystem: "intake",
			Name:      "notifications_total",
			Help:      "Lead notification outcomes",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.imageBytes, m.notifyTotal)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(status).Inc()
}

func (m *IntakeMetrics) ObserveImageBytes(n int64) {
	if m == nil {
		return
	}
	m.imageBytes.Observe(float64(n))
}

func (m *IntakeMetrics) ObserveNotification(status string) {
	if m == nil {
		return
	}
	m.notifyTotal.WithLabelValues(status).Inc()
}

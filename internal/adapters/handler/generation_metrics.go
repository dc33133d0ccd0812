package handler

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/services"
)

// GenerationMetrics records meal plan pipeline outcomes in Prometheus
type GenerationMetrics struct {
	PlansGenerated     *prometheus.CounterVec
	GenerationFailures *prometheus.CounterVec
	BackendDuration    *prometheus.HistogramVec
	SummaryMismatches  *prometheus.CounterVec
}

// NewGenerationMetrics creates the pipeline metrics and registers them with reg
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	m := &GenerationMetrics{
		PlansGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplans_generated_total",
				Help: "Total number of meal plans generated, by source",
			},
			[]string{"source", "day_count"},
		),
		GenerationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_backend_failures_total",
				Help: "Total number of backend attempts that fell back, by failing stage",
			},
			[]string{"stage"},
		),
		BackendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mealplan_backend_duration_seconds",
				Help:    "Duration of generation backend calls",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"status"},
		),
		SummaryMismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_summary_mismatches_total",
				Help: "Reported summary totals differing from the meal sums beyond tolerance",
			},
			[]string{"field"},
		),
	}

	reg.MustRegister(m.PlansGenerated, m.GenerationFailures, m.BackendDuration, m.SummaryMismatches)
	return m
}

func (m *GenerationMetrics) PlanGenerated(source domain.Source, dayCount int) {
	m.PlansGenerated.WithLabelValues(string(source), strconv.Itoa(dayCount)).Inc()
}

func (m *GenerationMetrics) GenerationFailed(stage services.FailureStage) {
	m.GenerationFailures.WithLabelValues(string(stage)).Inc()
}

func (m *GenerationMetrics) BackendCompleted(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.BackendDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *GenerationMetrics) SummaryMismatch(mismatch services.SummaryMismatch) {
	m.SummaryMismatches.WithLabelValues(mismatch.Field).Inc()
}

var _ services.GenerationObserver = (*GenerationMetrics)(nil)

package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
	"github.com/BerylCAtieno/multidoc-ai/internal/pipeline"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	otherCategory  = "other"
)

type Collector struct {
	registry            *prometheus.Registry
	invocations         *prometheus.CounterVec
	invocationDurations *prometheus.HistogramVec
	runs                *prometheus.CounterVec
	categories          *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multidoc",
			Name:      "model_invocations_total",
			Help:      "Model calls by pipeline stage and outcome.",
		}, []string{"stage", "outcome"}),
		invocationDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "multidoc",
			Name:      "model_invocation_duration_seconds",
			Help:      "Latency of model calls by pipeline stage.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multidoc",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		categories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multidoc",
			Name:      "categories_total",
			Help:      "Classification labels returned by successful runs.",
		}, []string{"category"}),
	}

	c.registry.MustRegister(
		c.invocations,
		c.invocationDurations,
		c.runs,
		c.categories,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRun records the outcome of one pipeline run. Labels outside the five
// known categories are counted under "other" to keep label cardinality bounded.
func (c *Collector) ObserveRun(category pipeline.Category, err error) {
	if err != nil {
		c.runs.WithLabelValues(outcomeFailure).Inc()
		return
	}

	c.runs.WithLabelValues(outcomeSuccess).Inc()

	label := otherCategory
	if category.IsKnown() {
		label = string(category)
	}
	c.categories.WithLabelValues(label).Inc()
}

type instrumentedModel struct {
	wrapped   llm.Model
	collector *Collector
	stage     string
}

// InstrumentModel counts and times every call made through m under stage.
func (c *Collector) InstrumentModel(m llm.Model, stage string) llm.Model {
	return &instrumentedModel{
		wrapped:   m,
		collector: c,
		stage:     stage,
	}
}

func (i *instrumentedModel) Invoke(ctx context.Context, parts []llm.ContentPart) (*llm.Response, error) {
	start := time.Now()
	resp, err := i.wrapped.Invoke(ctx, parts)
	i.collector.invocationDurations.WithLabelValues(i.stage).Observe(time.Since(start).Seconds())

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	i.collector.invocations.WithLabelValues(i.stage, outcome).Inc()

	return resp, err
}

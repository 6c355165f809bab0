package records

import (
	"context"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/contiamo/typednull/pkg/db/serialization/null"
	"github.com/contiamo/typednull/pkg/sql/typed"
)

// UpdateMetricsType provides access to the prometheus metric objects for record updates
type UpdateMetricsType struct {
	Labels         []string
	UpdateCounter  *prometheus.CounterVec
	UpdateDuration *prometheus.HistogramVec
}

const (
	instanceKey = "instance"
	serviceKey  = "service"
)

var (
	// largest bucket is 5 seconds
	durationMsBuckets = []float64{1, 5, 10, 50, 100, 200, 500, 1000, 2000, 5000}
	constLabels       = prometheus.Labels{
		serviceKey:  filepath.Base(os.Args[0]),
		instanceKey: getHostname(),
	}
	updateMetricLabels  = []string{"strategy"}
	outcomeMetricLabels = []string{"strategy", "outcome"}

	// UpdateMetrics is the global metrics instance for record updates of this instance
	UpdateMetrics = UpdateMetricsType{
		Labels: updateMetricLabels,
		UpdateCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "records",
				Name:        "update_total",
				Help:        "count of count updates by binding strategy and error kind",
				ConstLabels: constLabels,
			},
			outcomeMetricLabels,
		),
		UpdateDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   "records",
				Name:        "update_duration_ms",
				Help:        "duration of the count update in ms",
				Buckets:     durationMsBuckets,
				ConstLabels: constLabels,
			},
			updateMetricLabels,
		),
	}
)

type storeWithMetrics struct {
	Store
}

// StoreWithMetrics returns s wrapped with the standard metrics implementation,
// count updates are counted by strategy and the Kind of the returned error
func StoreWithMetrics(s Store) Store {
	return &storeWithMetrics{s}
}

func (s *storeWithMetrics) UpdateCount(ctx context.Context, id int64, count null.Int64) (int64, error) {
	return s.UpdateCountWith(ctx, StrategyTyped, id, count)
}

func (s *storeWithMetrics) UpdateCountWith(ctx context.Context, strategy Strategy, id int64, count null.Int64) (affected int64, err error) {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
		UpdateMetrics.UpdateDuration.
			With(prometheus.Labels{"strategy": strategy.String()}).
			Observe(seconds * 1000)
	}))
	defer func() {
		timer.ObserveDuration()
		UpdateMetrics.UpdateCounter.
			With(prometheus.Labels{"strategy": strategy.String(), "outcome": typed.Classify(err).String()}).
			Inc()
	}()

	return s.Store.UpdateCountWith(ctx, strategy, id, count)
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		logrus.Errorf("unable to retrieve hostname - setting to unknown")
		hostname = "unknown"
	}

	return hostname
}

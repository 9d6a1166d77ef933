package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chaptersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "header_footer",
		Name:      "chapters_total",
		Help:      "Chapters seen by padding passes, by outcome.",
	}, []string{"outcome"})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "header_footer",
		Name:      "pass_duration_seconds",
		Help:      "Wall time of one padding pass over a book.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})
)

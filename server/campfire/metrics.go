package campfire

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campfire",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Number of Campfire GraphQL requests by operation and outcome.",
	}, []string{"operation", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campfire",
		Subsystem: "client",
		Name:      "retries_total",
		Help:      "Number of retried Campfire GraphQL requests by operation.",
	}, []string{"operation"})
)

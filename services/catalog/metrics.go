package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinebuzz_provider_requests_total",
		Help: "Total number of upstream provider calls by result status",
	}, []string{"provider", "op", "status"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinebuzz_catalog_cache_lookups_total",
		Help: "Total number of catalog cache lookups",
	}, []string{"provider", "op", "result"})
)

// ObserveRequest records the outcome of one upstream provider call.
func ObserveRequest(provider, op string, st Status) {
	providerRequests.WithLabelValues(provider, op, st.String()).Inc()
}

package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebox_files_created_total",
		Help: "File records created.",
	})
	filesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebox_files_deleted_total",
		Help: "File records deleted by their owner.",
	})
	contributionsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharebox_contributions_recorded_total",
		Help: "Contribution events appended, by kind.",
	}, []string{"kind"})
	urlCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebox_url_cache_hits_total",
		Help: "Download URL cache hits.",
	})
	urlCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebox_url_cache_misses_total",
		Help: "Download URL cache misses.",
	})
)

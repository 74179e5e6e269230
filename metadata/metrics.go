package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var localHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "metadata_cache_local_hits_total",
	Help: "Metadata reads served from the process-local mirror",
}, []string{"store"})

var remoteHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "metadata_cache_remote_hits_total",
	Help: "Metadata reads served from the cache backend",
}, []string{"store"})

var missesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "metadata_cache_misses_total",
	Help: "Metadata reads that found no row",
}, []string{"store"})

var computesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "metadata_cache_computes_total",
	Help: "Reflection callbacks invoked on a miss",
}, []string{"store", "kind"})

var remoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "metadata_cache_remote_errors_total",
	Help: "Failed cache backend calls",
}, []string{"store", "op"})

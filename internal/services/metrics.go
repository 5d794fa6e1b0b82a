package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cubedb_cache_hits_total",
		Help: "Number of cube cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cubedb_cache_misses_total",
		Help: "Number of cube cache misses",
	})

	classpathBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cubedb_classpath_builds_total",
		Help: "Classpath resolutions by outcome",
	}, []string{"cached"})

	branchOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cubedb_branch_operations_total",
		Help: "Cubes touched by branch operations",
	}, []string{"operation"})

	mergeConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cubedb_merge_conflicts_total",
		Help: "Conflicting cubes reported by commit and update",
	}, []string{"operation"})
)

package cache

// metrics.go is a thin, strictly optional Prometheus sink. It is never
// on the path of get/insert/delete correctness: the default is a
// no-op and the core (internal/s3fifo) has no dependency on it at
// all.
//
// © 2025 also-cache authors. MIT License.

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink abstracts the concrete backend (Prometheus vs. noop) so
// that Cache and shard only know about these generic methods.
type metricsSink interface {
	incHit(shard int)
	incMiss(shard int)
	incEvict(shard int)
	setQueueBytes(shard int, queue string, value int64)
}

type noopMetrics struct{}

func (noopMetrics) incHit(int)                       {}
func (noopMetrics) incMiss(int)                      {}
func (noopMetrics) incEvict(int)                     {}
func (noopMetrics) setQueueBytes(int, string, int64) {}

type promMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	queue     *prometheus.GaugeVec

	queueMirror []atomic.Int64 // indexed shard*3 + {small,main,ghost}
}

func newPromMetrics(shardCount int, reg *prometheus.Registry) *promMetrics {
	shardLabel := []string{"shard"}
	pm := &promMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "also_cache", Name: "hits_total", Help: "Number of cache hits.",
		}, shardLabel),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "also_cache", Name: "misses_total", Help: "Number of cache misses.",
		}, shardLabel),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "also_cache", Name: "evictions_total", Help: "Number of slots freed out of Ghost or Main overflow.",
		}, shardLabel),
		queue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "also_cache", Name: "queue_bytes", Help: "Live byte-weight per queue.",
		}, []string{"shard", "queue"}),
		queueMirror: make([]atomic.Int64, shardCount*3),
	}
	reg.MustRegister(pm.hits, pm.misses, pm.evictions, pm.queue)
	return pm
}

func (m *promMetrics) incHit(shard int) {
	m.hits.WithLabelValues(strconv.Itoa(shard)).Inc()
}
func (m *promMetrics) incMiss(shard int) {
	m.misses.WithLabelValues(strconv.Itoa(shard)).Inc()
}
func (m *promMetrics) incEvict(shard int) {
	m.evictions.WithLabelValues(strconv.Itoa(shard)).Inc()
}
func (m *promMetrics) setQueueBytes(shard int, queue string, value int64) {
	m.queueMirror[shard*3+queueOffset(queue)].Store(value)
	m.queue.WithLabelValues(strconv.Itoa(shard), queue).Set(float64(value))
}

// queueOffset maps a queue label to its slot within a shard's 3-wide
// slice of queueMirror.
func queueOffset(queue string) int {
	switch queue {
	case "small":
		return 0
	case "main":
		return 1
	case "ghost":
		return 2
	default:
		return 0
	}
}

// newMetricsSink returns noopMetrics unless reg is non-nil.
func newMetricsSink(shardCount int, reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(shardCount, reg)
}

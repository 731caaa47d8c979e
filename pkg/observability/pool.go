package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhuss/castservice/pkg/storage/postgres"
)

// PoolStatter is implemented by *postgres.Pool.
type PoolStatter interface {
	Stat() postgres.PoolStats
}

// PoolCollector exports connection pool statistics. Values are read from
// the pool on every scrape.
type PoolCollector struct {
	pool PoolStatter

	acquired        *prometheus.Desc
	idle            *prometheus.Desc
	total           *prometheus.Desc
	constructing    *prometheus.Desc
	max             *prometheus.Desc
	min             *prometheus.Desc
	acquireCount    *prometheus.Desc
	emptyAcquire    *prometheus.Desc
	canceledAcquire *prometheus.Desc
	newConns        *prometheus.Desc
	acquireSeconds  *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector creates a collector for pool. The database label tells
// pools apart when a process holds more than one.
func NewPoolCollector(database string, pool PoolStatter) *PoolCollector {
	labels := prometheus.Labels{"database": database}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("cast_service_db_pool_"+name, help, nil, labels)
	}

	return &PoolCollector{
		pool:            pool,
		acquired:        desc("acquired_connections", "Connections currently lent out"),
		idle:            desc("idle_connections", "Idle connections in the pool"),
		total:           desc("total_connections", "Open connections in the pool"),
		constructing:    desc("constructing_connections", "Connections being established"),
		max:             desc("max_connections", "Maximum pool size"),
		min:             desc("min_connections", "Minimum pool size"),
		acquireCount:    desc("acquires_total", "Successful acquisitions"),
		emptyAcquire:    desc("empty_acquires_total", "Acquisitions that had to wait or dial"),
		canceledAcquire: desc("canceled_acquires_total", "Acquisitions abandoned by the caller"),
		newConns:        desc("new_connections_total", "Connections opened"),
		acquireSeconds:  desc("acquire_seconds_total", "Cumulative time spent acquiring connections"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.acquired, c.idle, c.total, c.constructing, c.max, c.min,
		c.acquireCount, c.emptyAcquire, c.canceledAcquire, c.newConns, c.acquireSeconds,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}

	gauge(c.acquired, float64(s.AcquiredConns))
	gauge(c.idle, float64(s.IdleConns))
	gauge(c.total, float64(s.TotalConns))
	gauge(c.constructing, float64(s.ConstructingConns))
	gauge(c.max, float64(s.MaxConns))
	gauge(c.min, float64(s.MinConns))
	counter(c.acquireCount, float64(s.AcquireCount))
	counter(c.emptyAcquire, float64(s.EmptyAcquireCount))
	counter(c.canceledAcquire, float64(s.CanceledAcquireCount))
	counter(c.newConns, float64(s.NewConnsCount))
	counter(c.acquireSeconds, s.AcquireDuration.Seconds())
}

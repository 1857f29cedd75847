package database

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/v2/event"
)

// Connection pool event types, as named by the driver's CMAP monitoring.
const (
	poolConnectionCreated    = "ConnectionCreated"
	poolConnectionClosed     = "ConnectionClosed"
	poolConnectionCheckedOut = "ConnectionCheckedOut"
	poolConnectionCheckedIn  = "ConnectionCheckedIn"
	poolCheckOutFailed       = "ConnectionCheckOutFailed"
)

// PoolStatsCollector turns driver pool events into Prometheus metrics. Wire
// Monitor() into the client options, then register the collector.
type PoolStatsCollector struct {
	service string

	open      atomic.Int64
	inUse     atomic.Int64
	checkouts atomic.Uint64
	failures  atomic.Uint64
	created   atomic.Uint64
	closed    atomic.Uint64

	openDesc      *prometheus.Desc
	inUseDesc     *prometheus.Desc
	checkoutsDesc *prometheus.Desc
	failuresDesc  *prometheus.Desc
	createdDesc   *prometheus.Desc
	closedDesc    *prometheus.Desc
}

func NewPoolStatsCollector(service string) *PoolStatsCollector {
	labels := []string{"service"}
	return &PoolStatsCollector{
		service:       service,
		openDesc:      prometheus.NewDesc("db_pool_open_connections", "Connections currently open", labels, nil),
		inUseDesc:     prometheus.NewDesc("db_pool_acquired_connections", "Connections currently checked out", labels, nil),
		checkoutsDesc: prometheus.NewDesc("db_pool_acquire_count_total", "Total successful connection checkouts", labels, nil),
		failuresDesc:  prometheus.NewDesc("db_pool_acquire_failed_total", "Total failed connection checkouts", labels, nil),
		createdDesc:   prometheus.NewDesc("db_pool_new_connections_total", "Total connections created", labels, nil),
		closedDesc:    prometheus.NewDesc("db_pool_closed_connections_total", "Total connections closed", labels, nil),
	}
}

// Monitor returns the driver hook feeding this collector.
func (c *PoolStatsCollector) Monitor() *event.PoolMonitor {
	return &event.PoolMonitor{Event: c.observe}
}

func (c *PoolStatsCollector) observe(ev *event.PoolEvent) {
	switch ev.Type {
	case poolConnectionCreated:
		c.created.Add(1)
		c.open.Add(1)
	case poolConnectionClosed:
		c.closed.Add(1)
		c.open.Add(-1)
	case poolConnectionCheckedOut:
		c.checkouts.Add(1)
		c.inUse.Add(1)
	case poolConnectionCheckedIn:
		c.inUse.Add(-1)
	case poolCheckOutFailed:
		c.failures.Add(1)
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.inUseDesc
	ch <- c.checkoutsDesc
	ch <- c.failuresDesc
	ch <- c.createdDesc
	ch <- c.closedDesc
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(c.open.Load()), c.service)
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(c.inUse.Load()), c.service)
	ch <- prometheus.MustNewConstMetric(c.checkoutsDesc, prometheus.CounterValue, float64(c.checkouts.Load()), c.service)
	ch <- prometheus.MustNewConstMetric(c.failuresDesc, prometheus.CounterValue, float64(c.failures.Load()), c.service)
	ch <- prometheus.MustNewConstMetric(c.createdDesc, prometheus.CounterValue, float64(c.created.Load()), c.service)
	ch <- prometheus.MustNewConstMetric(c.closedDesc, prometheus.CounterValue, float64(c.closed.Load()), c.service)
}

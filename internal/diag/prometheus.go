package diag

import "github.com/prometheus/client_golang/prometheus"

// Collector adapts a Registry into a prometheus.Collector, exposing
// every registered pool's stats as gauges labelled by pool name. This
// is additive to Registry.Snapshot, which remains the Go-native
// query path used by internal/api's JSON diagnostics route.
type Collector struct {
	reg *Registry

	cellsTotal   *prometheus.Desc
	cellBytes    *prometheus.Desc
	cellsUsed    *prometheus.Desc
	cellsUsedMax *prometheus.Desc
}

// NewCollector wraps reg for Prometheus registration.
func NewCollector(reg *Registry) *Collector {
	return &Collector{
		reg: reg,
		cellsTotal: prometheus.NewDesc(
			"denpa_pool_cells_total", "Configured capacity of a message/buffer pool.",
			[]string{"pool"}, nil),
		cellBytes: prometheus.NewDesc(
			"denpa_pool_cell_bytes", "Byte size of a single cell in a pool.",
			[]string{"pool"}, nil),
		cellsUsed: prometheus.NewDesc(
			"denpa_pool_cells_used", "Cells currently checked out of a pool.",
			[]string{"pool"}, nil),
		cellsUsedMax: prometheus.NewDesc(
			"denpa_pool_cells_used_max", "High-water mark of cells checked out of a pool.",
			[]string{"pool"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cellsTotal
	ch <- c.cellBytes
	ch <- c.cellsUsed
	ch <- c.cellsUsedMax
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, s := range c.reg.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.cellsTotal, prometheus.GaugeValue, float64(s.CellsTotal), name)
		ch <- prometheus.MustNewConstMetric(c.cellBytes, prometheus.GaugeValue, float64(s.CellBytes), name)
		ch <- prometheus.MustNewConstMetric(c.cellsUsed, prometheus.GaugeValue, float64(s.CellsUsed), name)
		ch <- prometheus.MustNewConstMetric(c.cellsUsedMax, prometheus.GaugeValue, float64(s.CellsUsedMax), name)
	}
}

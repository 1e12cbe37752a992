package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshot is a point-in-time view of a connection pool.
type PoolSnapshot struct {
	Total    int32
	Acquired int32
	Idle     int32
	Max      int32
}

// RegisterPoolGauges exposes a connection pool through gauges that sample
// snapshot on every scrape. Registering the same name twice returns the
// registerer's AlreadyRegisteredError.
func RegisterPoolGauges(reg prometheus.Registerer, name string, snapshot func() PoolSnapshot) error {
	gauges := []struct {
		metric string
		help   string
		value  func(PoolSnapshot) int32
	}{
		{"total_conns", "Total connections in the pool", func(s PoolSnapshot) int32 { return s.Total }},
		{"acquired_conns", "Connections currently in use", func(s PoolSnapshot) int32 { return s.Acquired }},
		{"idle_conns", "Idle connections", func(s PoolSnapshot) int32 { return s.Idle }},
		{"max_conns", "Maximum pool size", func(s PoolSnapshot) int32 { return s.Max }},
	}

	for _, g := range gauges {
		value := g.value
		collector := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "tracker_db_pool_" + g.metric,
				Help:        g.help,
				ConstLabels: prometheus.Labels{"pool": name},
			},
			func() float64 { return float64(value(snapshot())) },
		)
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

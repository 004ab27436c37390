package ingest

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Passes        prometheus.Counter
	PassErrors    prometheus.Counter
	ItemsAdded    prometheus.Counter
	ItemsSkipped  prometheus.Counter
	ItemsRejected prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_passes_total",
			Help: "Completed ingestion passes",
		}),
		PassErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_pass_errors_total",
			Help: "Passes abandoned because of fetch or parse failures",
		}),
		ItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_items_added_total",
			Help: "Scraped items inserted as new records",
		}),
		ItemsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_items_skipped_total",
			Help: "Scraped items skipped because the name already exists",
		}),
		ItemsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_items_rejected_total",
			Help: "Scraped items dropped for bad prices or store errors",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Passes, m.PassErrors, m.ItemsAdded, m.ItemsSkipped, m.ItemsRejected)
	}
	return m
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plantops_netmon_build_info",
			Help: "Build information of the network monitor",
		},
		[]string{"version", "commit", "date"},
	)

	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plantops_netmon_scans_total",
		Help: "Total number of completed device scans",
	})

	// 2 = online, 1 = degraded, 0 = offline.
	DeviceStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plantops_netmon_device_status",
		Help: "Last observed status per device",
	}, []string{"host"})

	ProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plantops_netmon_probe_duration_seconds",
		Help:    "Duration of ICMP probes per device",
		Buckets: prometheus.ExponentialBuckets(0.005, 1.8, 10),
	}, []string{"host"})
)

package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mindtower/pkg/errors"
)

// Prometheus implements LayoutHooks, StoreHooks and HTTPHooks on top of a
// private Prometheus registry, so several instances can coexist in tests.
type Prometheus struct {
	registry *prometheus.Registry

	layoutDuration prometheus.Histogram
	layoutOrphans  prometheus.Gauge
	followDuration prometheus.Histogram

	mutations     *prometheus.CounterVec
	snapshotNodes prometheus.Gauge
	snapshotEdges prometheus.Gauge
	version       prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	streams      prometheus.Gauge
	dropped      prometheus.Counter
}

// NewPrometheus creates the collectors under namespace and registers them.
func NewPrometheus(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Duration of full layout recomputes in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		layoutOrphans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_orphans",
			Help:      "Nodes placed by the orphan fallback in the last layout",
		}),
		followDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "follow_duration_seconds",
			Help:      "Duration of drag follow-up placements in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Store mutations by operation and result code",
		}, []string{"op", "code"}),
		snapshotNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_nodes",
			Help:      "Number of nodes in the current snapshot",
		}),
		snapshotEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_edges",
			Help:      "Number of edges in the current snapshot",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_version",
			Help:      "Version of the current snapshot",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected snapshot stream clients",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_clients_dropped_total",
			Help:      "Snapshot stream clients disconnected for falling behind",
		}),
	}

	p.registry.MustRegister(
		p.layoutDuration, p.layoutOrphans, p.followDuration,
		p.mutations, p.snapshotNodes, p.snapshotEdges, p.version,
		p.httpRequests, p.httpDuration, p.streams, p.dropped,
	)
	return p
}

// Registry returns the registry holding the collectors.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the collected metrics in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) OnLayout(_, orphans int, d time.Duration) {
	p.layoutDuration.Observe(d.Seconds())
	p.layoutOrphans.Set(float64(orphans))
}

func (p *Prometheus) OnFollow(_ int, d time.Duration) {
	p.followDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnMutation(op string, err error) {
	code := "OK"
	if err != nil {
		code = string(errors.GetCode(err))
		if code == "" {
			code = string(errors.ErrCodeInternal)
		}
	}
	p.mutations.WithLabelValues(op, code).Inc()
}

func (p *Prometheus) OnSnapshot(version uint64, nodes, edges int) {
	p.version.Set(float64(version))
	p.snapshotNodes.Set(float64(nodes))
	p.snapshotEdges.Set(float64(edges))
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *Prometheus) OnStreamOpen(context.Context) { p.streams.Inc() }

func (p *Prometheus) OnStreamClose(_ context.Context, dropped bool) {
	p.streams.Dec()
	if dropped {
		p.dropped.Inc()
	}
}

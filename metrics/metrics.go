// Package metrics exports antidup cache events as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/probablyarth/antidup-go"
)

// Observer counts cache events. It implements antidup.Observer.
type Observer struct {
	Events *prometheus.CounterVec
}

// NewObserver registers an events counter for the cache called name with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewObserver(reg prometheus.Registerer, namespace, name string) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Observer{
		Events: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "antidup",
			Name:        "events_total",
			Help:        "Cache events by type",
			ConstLabels: prometheus.Labels{"cache": name},
		}, []string{"event"}),
	}
}

// On records one event.
func (o *Observer) On(e antidup.EventData) {
	o.Events.WithLabelValues(e.Event.String()).Inc()
}

// Sizer is satisfied by every antidup cache.
type Sizer interface {
	Count() int
}

// RegisterSize exports the current entry count of c as a gauge.
func RegisterSize(reg prometheus.Registerer, namespace, name string, c Sizer) prometheus.GaugeFunc {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "antidup",
		Name:        "entries",
		Help:        "Current number of stored entries",
		ConstLabels: prometheus.Labels{"cache": name},
	}, func() float64 { return float64(c.Count()) })
}

// Server runs an HTTP server exposing /metrics and /health.
type Server struct {
	server *http.Server
}

// NewServer creates a metrics server on addr serving metrics from g.
// A nil g uses prometheus.DefaultGatherer.
func NewServer(addr string, g prometheus.Gatherer) *Server {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start starts the metrics server (blocking).
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// StartAsync starts the metrics server in a goroutine. The returned channel
// receives the result of Start once the server stops: http.ErrServerClosed
// after Stop, or the listen error.
func (s *Server) StartAsync() <-chan error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.server.ListenAndServe()
	}()
	return errc
}

// Stop closes the metrics server.
func (s *Server) Stop() error {
	return s.server.Close()
}

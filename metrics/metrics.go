package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LocateRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palace_locate_requests_total",
		Help: "Total building resolution requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	LocateDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "palace_locate_duration_ms",
		Help:    "Building resolution duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
	AcquisitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palace_gps_acquisitions_total",
		Help: "Fused fix acquisitions by result",
	}, []string{"result"})
	AcquisitionRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "palace_gps_acquisition_retries_total",
		Help: "Total acquisition retries after too few samples",
	})
	SamplesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palace_gps_samples_total",
		Help: "Raw GPS samples by result (ok, timeout, error, invalid, discarded)",
	}, []string{"result"})
	PlaceRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "palace_place_requests_total",
		Help: "Total place-search REST requests",
	})
	PlaceFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "palace_place_fail_total",
		Help: "Total place-search REST failures",
	})
	PlaceDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "palace_place_duration_ms",
		Help:    "Place-search REST call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	PlaceCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "palace_place_cache_hits_total",
		Help: "Total redis cache hits for place search",
	})
	PlaceCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "palace_place_cache_misses_total",
		Help: "Total redis cache misses for place search",
	})
	IdentifyFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "palace_identify_fallback_total",
		Help: "Identifications that fell back to pure-distance resolution",
	})
	LoginTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palace_login_total",
		Help: "Login attempts by result",
	}, []string{"result"})
	EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palace_events_published_total",
		Help: "Locate events published to MQTT by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(LocateRequestsTotal)
	prometheus.MustRegister(LocateDurationMs)
	prometheus.MustRegister(AcquisitionsTotal)
	prometheus.MustRegister(AcquisitionRetriesTotal)
	prometheus.MustRegister(SamplesTotal)
	prometheus.MustRegister(PlaceRequestsTotal)
	prometheus.MustRegister(PlaceFailTotal)
	prometheus.MustRegister(PlaceDurationMs)
	prometheus.MustRegister(PlaceCacheHitsTotal)
	prometheus.MustRegister(PlaceCacheMissesTotal)
	prometheus.MustRegister(IdentifyFallbackTotal)
	prometheus.MustRegister(LoginTotal)
	prometheus.MustRegister(EventsPublishedTotal)
}

// Handler 返回 Prometheus 指标处理器, 在 /metrics 挂载
func Handler() http.Handler { return promhttp.Handler() }

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_api_requests_total",
			Help: "Outbound catalog API requests by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_api_request_duration_seconds",
			Help:    "Outbound catalog API request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)
	pagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_ingest_pages_total",
			Help: "Catalog pages fetched by outcome.",
		},
		[]string{"outcome"},
	)
	productsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_ingest_products_total",
			Help: "Products processed by result.",
		},
		[]string{"result"},
	)
	lastProcessedID = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_ingest_last_processed_id",
			Help: "Id of the last product recorded in the checkpoint.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(pagesTotal)
	prometheus.MustRegister(productsTotal)
	prometheus.MustRegister(lastProcessedID)
}

// RecordRequest записывает метрики для входящего HTTP-запроса.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordAPIRequest записывает метрики исходящего запроса к каталогу. statusCode 0 - транспортная ошибка.
func RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	if statusCode == 0 {
		status = "transport"
	}
	apiRequestsTotal.WithLabelValues(endpoint, status).Inc()
	apiRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordPage(outcome string) {
	pagesTotal.WithLabelValues(outcome).Inc()
}

func RecordProduct(result string) {
	productsTotal.WithLabelValues(result).Inc()
}

func RecordCheckpoint(productID int64) {
	lastProcessedID.Set(float64(productID))
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// MetricsHandler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

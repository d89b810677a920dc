package handlers

import (
	"fmt"
	"net/http"

	"vid2pdf/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeLog sends collector errors to the application log.
type scrapeLog struct{}

func (scrapeLog) Println(v ...interface{}) {
	logging.Error("metrics scrape: %s", fmt.Sprint(v...))
}

// MetricsHandler serves the conversion and runtime metrics. A failing
// collector is logged and skipped so one bad gauge does not hide the rest.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:          scrapeLog{},
			ErrorHandling:     promhttp.ContinueOnError,
			EnableOpenMetrics: true,
		}),
	)
}

package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymku_bookings_created_total",
		Help: "Bookings successfully created.",
	})

	ConflictsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymku_conflicts_detected_total",
		Help: "Temporal conflicts detected per resource dimension.",
	}, []string{"dimension"})

	SessionsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymku_card_sessions_consumed_total",
		Help: "Card sessions consumed.",
	})

	CardsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymku_cards_expired_total",
		Help: "Cards expired by the sweep.",
	})
)

// Serve exposes /metrics on its own listener, away from the API port.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics listener error: %v", err)
		}
	}()
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "laundry", Name: "bookings_created_total", Help: "Successfully committed pass bookings",
	})
	BookingsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laundry", Name: "bookings_rejected_total", Help: "Booking attempts rejected by a business rule",
	}, []string{"status"})
	LocksAcquired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "laundry", Name: "locks_acquired_total", Help: "Slot locks granted",
	})
	LocksRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "laundry", Name: "locks_rejected_total", Help: "Slot lock attempts rejected",
	})
)

func init() {
	prometheus.MustRegister(BookingsCreated, BookingsRejected, LocksAcquired, LocksRejected)
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler { return promhttp.Handler() }

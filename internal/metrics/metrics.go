package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registration outcomes.
const (
	ResultOK                = "ok"
	ResultFull              = "full"
	ResultAlreadyRegistered = "already_registered"
	ResultNotPublished      = "not_published"
	ResultError             = "error"
)

var (
	EventsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventhub_events_created_total", Help: "Total events created"},
	)
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "eventhub_registrations_total", Help: "Registration attempts by result"},
		[]string{"result"},
	)
	Unregistrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventhub_unregistrations_total", Help: "Total attendee unregistrations"},
	)
	CleanupDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "eventhub_cleanup_deleted_total", Help: "Events deleted by the attendee-owned cleanup"},
	)
)

func Register() {
	prometheus.MustRegister(EventsCreated, Registrations, Unregistrations, CleanupDeleted)
}

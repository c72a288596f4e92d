package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check-in outcomes.
const (
	ResultMarked        = "marked"
	ResultAlreadyMarked = "already_marked"
	ResultUnknownPerson = "unknown_person"
	ResultError         = "error"
)

var (
	// CheckIns counts check-in attempts by outcome.
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facemark_checkins_total",
		Help: "Check-in attempts by outcome.",
	}, []string{"result"})

	// Registrations counts accepted person registrations.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_registrations_total",
		Help: "Accepted person registrations.",
	})

	// Deletions counts person deletions (each cascades to the ledger).
	Deletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_person_deletions_total",
		Help: "Person deletions.",
	})

	// LedgerClears counts records removed by delete-all-attendance calls.
	LedgerClears = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_ledger_cleared_records_total",
		Help: "Attendance records removed by clear operations.",
	})
)

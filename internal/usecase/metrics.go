package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketsim_runs_total",
		Help: "Simulation runs by terminal status",
	}, []string{"status"})
	flightsSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketsim_flights_simulated_total",
		Help: "Flights processed by the simulation engine",
	})
	ticketsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketsim_tickets_generated_total",
		Help: "Tickets written by simulation runs",
	})
	underfilledFlights = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketsim_underfilled_flights_total",
		Help: "Flights that issued fewer tickets than sold seats",
	})
	forcedSeats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketsim_forced_seats_total",
		Help: "Seats filled by the force-fill pass",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ticketsim_run_duration_seconds",
		Help:    "Wall time of a simulation run including persistence",
		Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
	})
)

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package metrics holds the prometheus collectors of the simulation scheduler
// and of the external stimulus adapter.
//
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "logicsim"

	PartLabel    = "part"
	OutcomeLabel = "outcome"

	Consumed = "consumed"
	Ignored  = "ignored"
	Rejected = "rejected"
)

var (
	steps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Number of simulated instants processed",
		},
	)

	events = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of committed driver events",
		},
	)

	evaluations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of component evaluations",
		},
	)

	faults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Number of component faults by part name",
		},
		[]string{PartLabel},
	)

	oscillations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oscillations_total",
			Help:      "Number of runs stopped by an unsettled zero-delay loop",
		},
	)

	stimuli = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stimuli_total",
			Help:      "Number of external stimuli by outcome",
		},
		[]string{OutcomeLabel},
	)

	simTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sim_time",
			Help:      "Current simulated time",
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of pending events in the scheduler queue",
		},
	)
)

// Collectors returns all collectors of the package.
//
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{steps, events, evaluations, faults, oscillations, stimuli, simTime, queueDepth}
}

// Register registers all collectors with r.
//
func Register(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// EmitStep records a processed instant.
func EmitStep(now uint64, pending int) {
	steps.Inc()
	simTime.Set(float64(now))
	queueDepth.Set(float64(pending))
}

func EmitEvents(n int) {
	if n > 0 {
		events.Add(float64(n))
	}
}

func EmitEvaluations(n int) {
	if n > 0 {
		evaluations.Add(float64(n))
	}
}

func EmitFault(part string) {
	faults.WithLabelValues(part).Inc()
}

func EmitOscillation() {
	oscillations.Inc()
}

// EmitStimulus records the outcome of an external stimulus: Consumed, Ignored
// or Rejected.
func EmitStimulus(outcome string) {
	stimuli.WithLabelValues(outcome).Inc()
}

// SetQueueDepth sets the queue depth gauge.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

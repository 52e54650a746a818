// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Default configuration values.
//
const (
	DefaultMaxIterations = 1000
	DefaultStepBudget    = 1 << 20
)

// Config holds the scheduler limits.
//
type Config struct {
	// MaxIterations bounds the number of delta rounds at a single instant.
	// A circuit that does not settle within this bound oscillates.
	MaxIterations int `json:"maxIterations,omitempty"`
	// StepBudget is the default number of steps for Run.
	StepBudget int `json:"stepBudget,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.StepBudget <= 0 {
		c.StepBudget = DefaultStepBudget
	}
	return c
}

// An Option configures a Circuit.
//
type Option func(c *Circuit)

// WithConfig sets the scheduler limits. Zero fields get default values.
//
func WithConfig(cfg Config) Option {
	return func(c *Circuit) { c.cfg = cfg.withDefaults() }
}

// WithLogger sets the logger used to report faults, oscillations, resets and
// aborts. By default nothing is logged.
//
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Circuit) { c.log = l }
}

// WithCells makes the circuit allocate its state cells in cs instead of a
// private registry.
//
func WithCells(cs *Cells) Option {
	return func(c *Circuit) { c.cells = cs }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

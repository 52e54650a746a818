// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logicsim runs YAML netlists with the logicsim simulator.
//
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	debug     bool
	storeKind string
	storePath string
}

func (o *globalOptions) logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if o.debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func newRootCmd() *cobra.Command {
	o := &globalOptions{}
	cmd := &cobra.Command{
		Use:          "logicsim",
		Short:        "Event-driven four-state logic simulator",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "use debug log level")
	cmd.PersistentFlags().StringVar(&o.storeKind, "store", "memory", "checkpoint store backend (memory, sqlite)")
	cmd.PersistentFlags().StringVar(&o.storePath, "store-path", "logicsim.db", "path of the sqlite checkpoint database")

	cmd.AddCommand(newRunCmd(o), newCheckpointsCmd(o))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

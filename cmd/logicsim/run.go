// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	ls "github.com/db47h/logicsim"
	"github.com/db47h/logicsim/export"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/internal/metrics"
	"github.com/db47h/logicsim/netlist"
	"github.com/db47h/logicsim/store"
	"github.com/db47h/logicsim/trace"
)

type runOptions struct {
	*globalOptions

	until         uint64
	maxIterations int
	stepBudget    int

	text     string
	keyboard string
	keyRate  float64

	metricsAddr string

	traceFile string
	traceNets []string
	traceSize string

	mif      map[string]string
	mifDepth int

	checkpoint string
	restore    string
}

func newRunCmd(g *globalOptions) *cobra.Command {
	o := &runOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "run NETLIST",
		Short: "Run a YAML netlist and its stimulus script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := netlist.LoadFile(args[0])
			if err != nil {
				return err
			}
			o.override(cmd.Flags(), n)
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			log := o.logger()
			return o.run(ctx, log.WithField("netlist", filepath.Base(args[0])), n, cmd.OutOrStdout())
		},
	}
	o.addFlags(cmd.Flags())
	return cmd
}

func (o *runOptions) addFlags(f *pflag.FlagSet) {
	f.Uint64Var(&o.until, "until", 0, "simulated time at which to stop (overrides the netlist)")
	f.IntVar(&o.maxIterations, "max-iterations", ls.DefaultMaxIterations, "maximum delta rounds per instant (overrides the netlist)")
	f.IntVar(&o.stepBudget, "step-budget", ls.DefaultStepBudget, "maximum steps per run (overrides the netlist)")
	f.StringVar(&o.text, "type", "", "text typed on the keyboard instance while the simulation runs")
	f.StringVar(&o.keyboard, "keyboard", "kbd", "keyboard instance receiving --type")
	f.Float64Var(&o.keyRate, "key-rate", 20, "typing speed in keys per second")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
	f.StringVar(&o.traceFile, "trace", "", "write the waveforms of the run to this file (.png, .svg, .pdf or .json)")
	f.StringSliceVar(&o.traceNets, "trace-nets", nil, "nets to trace (default all)")
	f.StringVar(&o.traceSize, "trace-size", "16x10", "waveform image size in centimeters")
	f.StringToStringVar(&o.mif, "mif", nil, "write the memory of instance ID to FILE as a MIF listing (ID=FILE,...)")
	f.IntVar(&o.mifDepth, "mif-depth", 0, "MIF depth (default: memory size)")
	f.StringVar(&o.checkpoint, "checkpoint", "", "save the final state as a checkpoint with this name")
	f.StringVar(&o.restore, "restore", "", "restore the checkpoint with this ID before running")
}

// override applies the flags explicitly set on the command line to n.
func (o *runOptions) override(f *pflag.FlagSet, n *netlist.Netlist) {
	if f.Changed("until") {
		n.Until = ls.Time(o.until)
	}
	if f.Changed("max-iterations") {
		n.Config.MaxIterations = o.maxIterations
	}
	if f.Changed("step-budget") {
		n.Config.StepBudget = o.stepBudget
	}
}

func (o *runOptions) run(ctx context.Context, log logrus.FieldLogger, n *netlist.Netlist, out io.Writer) error {
	start := time.Now()
	c, err := n.Build(ls.WithLogger(log))
	if err != nil {
		return err
	}
	script, err := n.Script()
	if err != nil {
		return err
	}

	var st store.Store
	if o.restore != "" || o.checkpoint != "" {
		if st, err = openStore(ctx, o.globalOptions); err != nil {
			return err
		}
		defer store.CloseIfSupported(st)
	}
	if o.restore != "" {
		r, ok, err := st.Load(ctx, o.restore)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("checkpoint " + o.restore + " not found")
		}
		if err = c.Import(r.Snapshot); err != nil {
			return errors.Wrap(err, "restore "+o.restore)
		}
	}

	var rec *trace.Recorder
	if o.traceFile != "" {
		rec = trace.NewRecorder(o.traceNets...)
		rec.Attach(c)
	}

	if err = o.simulate(ctx, log, c, script, n.Until); err != nil {
		return err
	}

	for id, name := range o.mif {
		if err = writeMIF(c, ls.InstanceID(id), name, o.mifDepth); err != nil {
			return err
		}
		log.WithField("instance", id).Info("wrote " + name)
	}
	if rec != nil {
		if err = o.writeTrace(rec, c.Now()); err != nil {
			return err
		}
		log.Info("wrote " + o.traceFile)
	}
	var id string
	if o.checkpoint != "" {
		s, err := c.Export()
		if err != nil {
			return err
		}
		r := store.NewRecord(o.checkpoint, s)
		if err = st.Save(ctx, r); err != nil {
			return err
		}
		id = r.ID
	}

	io.WriteString(out, "simulated "+humanize.Comma(int64(c.Now()))+" ticks in "+
		time.Since(start).Round(time.Millisecond).String()+"\n")
	if id != "" {
		io.WriteString(out, "checkpoint "+id+"\n")
	}
	return nil
}

// simulate runs the stimulus script, the key feeder and the metrics server
// until the script completes.
func (o *runOptions) simulate(ctx context.Context, log logrus.FieldLogger, c *ls.Circuit, script []netlist.Stimulus, until ls.Time) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		return netlist.Play(gctx, c, script, until)
	})
	if o.text != "" {
		g.Go(func() error {
			return feed(gctx, c, ls.InstanceID(o.keyboard), o.text, rate.NewLimiter(rate.Limit(o.keyRate), 1))
		})
	}
	if o.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return err
		}
		srv := &http.Server{Addr: o.metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		g.Go(func() error {
			log.WithField("addr", o.metricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "metrics server")
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-done:
			case <-gctx.Done():
			}
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// evaluate instances invalidated by late keys without advancing time
	if err := c.RunUntil(ctx, c.Now()); err != nil && !ls.IsFault(err) {
		return err
	}
	return nil
}

// feed types text on a keyboard instance, one key at the pace set by lim.
func feed(ctx context.Context, c *ls.Circuit, kbd ls.InstanceID, text string, lim *rate.Limiter) error {
	for _, r := range text {
		if err := lim.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		ok, err := c.ApplyStimulus(kbd, hl.KeyEvent{Action: hl.KeyTyped, Char: r})
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("%s: character %q not accepted", kbd, r)
		}
	}
	return nil
}

func writeMIF(c *ls.Circuit, id ls.InstanceID, name string, depth int) error {
	st, err := c.Snapshot(id)
	if err != nil {
		return err
	}
	m, ok := st.(export.Memory)
	if !ok {
		return errors.Errorf("%s: %T has no memory contents", id, st)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = export.WriteMIF(f, m, depth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (o *runOptions) writeTrace(rec *trace.Recorder, until ls.Time) error {
	f, err := os.Create(o.traceFile)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(filepath.Ext(o.traceFile), ".")
	if format == "json" {
		err = rec.Render(f)
	} else {
		var w, h float64
		if w, h, err = parseSize(o.traceSize); err == nil {
			err = rec.WriteImage(f, format, w, h, until, o.traceNets...)
		}
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseSize parses a WxH size.
func parseSize(s string) (w, h float64, err error) {
	i := strings.IndexByte(s, 'x')
	if i < 0 {
		return 0, 0, errors.Errorf("invalid size %q", s)
	}
	if w, err = strconv.ParseFloat(s[:i], 64); err == nil {
		h, err = strconv.ParseFloat(s[i+1:], 64)
	}
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, errors.Errorf("invalid size %q", s)
	}
	return w, h, nil
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trace

import (
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	ls "github.com/db47h/logicsim"
)

const laneHeight = 1.5

// Level maps a value to a plot level in [0, 1]. Single bit values are 0 or 1,
// wider values are scaled to their maximum. Values that are not fully driven
// plot at 0.5.
//
func Level(v ls.Value) float64 {
	u, err := v.Uint64()
	if err != nil {
		return 0.5
	}
	max := ^uint64(0) >> uint(64-v.Width())
	return float64(u) / float64(max)
}

// Plot returns a waveform plot of the recorded nets up to time until, one lane
// per net, in the order given. With no nets, all recorded nets are plotted.
//
func (r *Recorder) Plot(until ls.Time, nets ...string) (*plot.Plot, error) {
	if len(nets) == 0 {
		nets = r.Nets()
	}
	p := plot.New()
	p.Title.Text = "Waveforms"
	p.X.Label.Text = "t"
	p.X.Min = 0
	p.X.Max = float64(until)

	var ticks plot.ConstantTicks
	for lane, n := range nets {
		s := r.Samples(n)
		if len(s) == 0 {
			return nil, errors.New("no sample for net " + n)
		}
		base := float64(len(nets)-1-lane) * laneHeight
		var xys plotter.XYs
		for _, smp := range s {
			if smp.T > until {
				break
			}
			xys = append(xys, plotter.XY{X: float64(smp.T), Y: base + Level(smp.V)})
		}
		if len(xys) == 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(until), Y: xys[len(xys)-1].Y})
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrap(err, n)
		}
		l.StepStyle = plotter.PostStep
		l.Color = plotutil.Color(lane)
		p.Add(l)
		ticks = append(ticks, plot.Tick{Value: base + 0.5, Label: n})
	}
	p.Y.Tick.Marker = ticks
	p.Y.Min = -0.25
	p.Y.Max = float64(len(nets))*laneHeight - 0.25
	return p, nil
}

// WriteImage renders the waveforms of Plot(until, nets...) to w in the given
// format ("png", "svg", "pdf"...). Width and height are in centimeters.
//
func (r *Recorder) WriteImage(w io.Writer, format string, width, height float64, until ls.Time, nets ...string) error {
	p, err := r.Plot(until, nets...)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter, format)
	if err != nil {
		return errors.Wrap(err, "render waveforms")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "write waveforms")
}

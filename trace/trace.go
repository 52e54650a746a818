// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package trace records the values committed on circuit nets and renders them
// as waveforms.
//
package trace

import (
	"encoding/json"
	"io"
	"sort"
	"sync"

	ls "github.com/db47h/logicsim"
)

// A Sample is a value committed on a net at a given time.
//
type Sample struct {
	T ls.Time
	V ls.Value
}

// MarshalJSON implements json.Marshaler.
//
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T ls.Time `json:"t"`
		V string  `json:"v"`
	}{s.T, s.V.String()})
}

// A Recorder records the committed values of a set of nets. It is safe for
// concurrent use: the simulation goroutine records while others read.
//
type Recorder struct {
	mu      sync.Mutex
	filter  map[string]bool
	samples map[string][]Sample
}

// NewRecorder returns a recorder for the given nets. With no nets, every net
// is recorded.
//
func NewRecorder(nets ...string) *Recorder {
	r := &Recorder{samples: make(map[string][]Sample)}
	if len(nets) > 0 {
		r.filter = make(map[string]bool, len(nets))
		for _, n := range nets {
			r.filter[n] = true
		}
	}
	return r
}

// Attach registers r with c. The current value of each recorded net is
// sampled immediately.
//
func (r *Recorder) Attach(c *ls.Circuit) {
	for _, n := range c.Nets() {
		if v, ok := c.Value(n); ok {
			r.Record(c.Now(), n, v)
		}
	}
	c.OnCommit(r.Record)
}

// Record records value v on net at time t. It is an ls.CommitFn.
//
func (r *Recorder) Record(t ls.Time, net string, v ls.Value) {
	if r.filter != nil && !r.filter[net] {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.samples[net]
	if l := len(s); l > 0 && s[l-1].T == t {
		s[l-1].V = v
		return
	}
	r.samples[net] = append(s, Sample{t, v})
}

// Nets returns the sorted names of the nets that have samples.
//
func (r *Recorder) Nets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.samples))
	for n := range r.samples {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Samples returns a copy of the samples of a net.
//
func (r *Recorder) Samples(net string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples[net]...)
}

// At returns the value of net at time t and false if nothing was recorded
// for that net before t.
//
func (r *Recorder) At(net string, t ls.Time) (ls.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.samples[net]
	i := sort.Search(len(s), func(i int) bool { return s[i].T > t })
	if i == 0 {
		return ls.Value{}, false
	}
	return s[i-1].V, true
}

// Reset discards all samples.
//
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.samples = make(map[string][]Sample)
	r.mu.Unlock()
}

// Render writes the samples as a JSON object mapping net names to their
// samples.
//
func (r *Recorder) Render(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.NewEncoder(w).Encode(r.samples)
}

package irrigation_simulator

import "math"

// Stats summarises the levels observed in the rolling window.
type Stats struct {
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Samples   int     `json:"samples"`
	PumpOnPct float64 `json:"pump_on_pct"`
}

// window is a fixed-size ring of recent tick samples.
type window struct {
	levels []float64
	pump   []bool
	next   int
	full   bool
}

func newWindow(size int) *window {
	if size <= 0 {
		size = 1
	}
	return &window{levels: make([]float64, size), pump: make([]bool, size)}
}

func (w *window) add(level float64, pumpOn bool) {
	w.levels[w.next] = level
	w.pump[w.next] = pumpOn
	w.next = (w.next + 1) % len(w.levels)
	if w.next == 0 {
		w.full = true
	}
}

func (w *window) stats() Stats {
	n := w.next
	if w.full {
		n = len(w.levels)
	}
	if n == 0 {
		return Stats{}
	}
	st := Stats{Min: math.Inf(1), Max: math.Inf(-1), Samples: n}
	sum, on := 0.0, 0
	for i := 0; i < n; i++ {
		v := w.levels[i]
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
		if w.pump[i] {
			on++
		}
	}
	st.Mean = round1(sum / float64(n))
	st.PumpOnPct = round1(float64(on) * 100 / float64(n))
	return st
}

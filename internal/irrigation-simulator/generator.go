package irrigation_simulator

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

// ====== Tunables ======
const (
	// driftSpan: la variazione naturale per tick è U[-driftSpan/2, +driftSpan/2].
	driftSpan = 8.0
	// pumpBoostMax: con pompa accesa si aggiunge U[0, pumpBoostMax].
	pumpBoostMax = 5.0
)

// MoistureSource fornisce le variazioni casuali applicate a ogni tick.
type MoistureSource interface {
	// Delta returns the natural drift, in [-4, +4].
	Delta() float64
	// Boost returns the extra gain while the pump runs, in [0, 5].
	Boost() float64
}

// RandomSource draws from a math/rand/v2 generator.
type RandomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource: seed fisso per run riproducibili, nil per un generatore casuale.
func NewRandomSource(seed *uint64) *RandomSource {
	var src rand.Source
	if seed != nil {
		src = rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomSource{rnd: rand.New(src)}
}

func (r *RandomSource) Delta() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (r.rnd.Float64() - 0.5) * driftSpan
}

func (r *RandomSource) Boost() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64() * pumpBoostMax
}

// IntN is used by the mock history and chart generators.
func (r *RandomSource) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

func clampLevel(v float64) float64 {
	return math.Max(entities.MinLevel, math.Min(entities.MaxLevel, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

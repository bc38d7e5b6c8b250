package disease

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

var ErrEmptyCatalog = errors.New("disease catalog is empty")

// DiseaseClassifier turns an uploaded image into a prediction.
type DiseaseClassifier interface {
	Classify(ctx context.Context, image []byte) (model.Disease, error)
}

// RandomClassifier ignores the image and picks a catalog entry uniformly.
type RandomClassifier struct {
	catalog []model.Disease

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomClassifier(catalog []model.Disease) *RandomClassifier {
	return &RandomClassifier{
		catalog: catalog,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (c *RandomClassifier) Classify(ctx context.Context, _ []byte) (model.Disease, error) {
	if err := ctx.Err(); err != nil {
		return model.Disease{}, err
	}
	if len(c.catalog) == 0 {
		return model.Disease{}, ErrEmptyCatalog
	}
	c.mu.Lock()
	d := c.catalog[c.rnd.IntN(len(c.catalog))]
	c.mu.Unlock()
	return d, nil
}

// RandomStep is the default progress increment, U[0, 15).
func RandomStep() float64 {
	return rand.Float64() * 15
}

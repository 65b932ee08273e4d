package domain

import (
	"fmt"
	"math/rand"
)

// Scored pairs a variant with its evaluated fitness.
type Scored struct {
	Variant *Variant
	Fitness float64
}

// Sample performs stochastic universal sampling: k equally spaced pointers
// are placed on the cumulative-fitness axis at a single uniform offset, and
// each pointer selects the individual whose window contains it. Exactly k
// individuals are returned; duplicates are permitted. Total fitness must be
// positive.
func Sample(population []Scored, k int, rng *rand.Rand) ([]Scored, error) {
	if k <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", k)
	}

	var total float64
	for _, s := range population {
		if s.Fitness < 0 {
			return nil, fmt.Errorf("negative fitness %f in population", s.Fitness)
		}

		total += s.Fitness
	}

	if total <= 0 {
		return nil, fmt.Errorf("total fitness is zero, nothing to sample")
	}

	step := total / float64(k)
	offset := rng.Float64() * step

	out := make([]Scored, 0, k)
	cumulative := 0.0
	idx := 0

	for i := 0; i < k; i++ {
		pointer := offset + float64(i)*step

		for idx < len(population)-1 && cumulative+population[idx].Fitness <= pointer {
			cumulative += population[idx].Fitness
			idx++
		}

		out = append(out, population[idx])
	}

	return out, nil
}

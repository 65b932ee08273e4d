package domain

import (
	"fmt"
	"math/rand"

	m "mendc.dev/pkg/mendc/internal/model"
)

// Genetic produces offspring variants by appending edits to inherited
// histories under path-weighted probabilities.
type Genetic struct {
	rng        *rand.Rand
	swapChance float64
	delChance  float64
	insChance  float64
}

// NewGenetic builds the operator set. The three chances weigh the choice of
// mutation kind relative to each other.
func NewGenetic(rng *rand.Rand, swapChance, delChance, insChance float64) *Genetic {
	return &Genetic{
		rng:        rng,
		swapChance: swapChance,
		delChance:  delChance,
		insChance:  insChance,
	}
}

// Mutate returns a child of v with zero or more fresh edits. Each step of
// the weighted path mutates independently with probability stepWeight·p.
// Replacement statements are drawn uniformly from the whole statement index,
// not just the path. A sid touched by an earlier mutation in this call is
// reserved and skipped by later steps.
func (g *Genetic) Mutate(v *Variant, p float64) *Variant {
	child := v.Clone()
	count := v.Index().Count()
	reserved := make(map[m.Sid]struct{})

	for _, step := range v.Path() {
		if g.rng.Float64() >= step.Weight*p {
			continue
		}

		replaceWith := m.Sid(g.rng.Intn(count) + 1)

		if _, ok := reserved[step.Sid]; ok {
			continue
		}

		if _, ok := reserved[replaceWith]; ok {
			continue
		}

		reserved[step.Sid] = struct{}{}
		reserved[replaceWith] = struct{}{}

		switch g.pickKind() {
		case m.EditSwap:
			child.Swap(step.Sid, replaceWith)
		case m.EditDelete:
			child.Delete(step.Sid)
		case m.EditAppend:
			child.Append(step.Sid, replaceWith)
		}
	}

	return child
}

// pickKind draws one of swap/delete/append with the configured weights.
func (g *Genetic) pickKind() m.EditOp {
	total := g.swapChance + g.delChance + g.insChance
	if total <= 0 {
		return m.EditSwap
	}

	r := g.rng.Float64() * total

	switch {
	case r < g.swapChance:
		return m.EditSwap
	case r < g.swapChance+g.delChance:
		return m.EditDelete
	default:
		return m.EditAppend
	}
}

// Crossover exchanges the tails of two parents. A cut point is drawn in
// [1,len-1]; for every path position at or after the cut, with probability
// max(pa,pb) the children exchange the statement visible at that sid: the
// first child inherits the second parent's statement and vice versa. Both
// parents must walk paths of equal length.
func (g *Genetic) Crossover(a, b *Variant) (*Variant, *Variant, error) {
	pathA, pathB := a.Path(), b.Path()
	if len(pathA) != len(pathB) {
		return nil, nil, fmt.Errorf("crossover requires equal path lengths, got %d and %d", len(pathA), len(pathB))
	}

	childA, childB := a.Clone(), b.Clone()

	if len(pathA) < 2 {
		return childA, childB, nil
	}

	cut := 1 + g.rng.Intn(len(pathA)-1)

	for i := cut; i < len(pathA); i++ {
		chance := pathA[i].Weight
		if pathB[i].Weight > chance {
			chance = pathB[i].Weight
		}

		if g.rng.Float64() >= chance {
			continue
		}

		sid := pathA[i].Sid

		fromA, err := a.Get(sid)
		if err != nil {
			return nil, nil, err
		}

		fromB, err := b.Get(pathB[i].Sid)
		if err != nil {
			return nil, nil, err
		}

		childA.Put(sid, fromB)
		childB.Put(pathB[i].Sid, fromA)
	}

	return childA, childB, nil
}

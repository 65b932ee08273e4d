package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"mendc.dev/pkg/mendc/internal/controller"
	m "mendc.dev/pkg/mendc/internal/model"
)

// SearchConfig holds the genetic-search parameters.
type SearchConfig struct {
	Generations    int
	Population     int
	MutationChance float64
	Jobs           int
}

// Driver runs the generational loop: evaluate, select, breed, mutate.
type Driver struct {
	cfg     SearchConfig
	eval    *Evaluator
	genetic *Genetic
	rng     *rand.Rand
	ui      controller.UI
}

// NewDriver wires a search driver. rng is the single source of randomness
// for selection, breeding and mutation, so runs are reproducible per seed.
func NewDriver(cfg SearchConfig, eval *Evaluator, genetic *Genetic, rng *rand.Rand, ui controller.UI) *Driver {
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}

	return &Driver{cfg: cfg, eval: eval, genetic: genetic, rng: rng, ui: ui}
}

// Search runs the configured number of generations starting from the root
// variant. The initial population is the root mutated at twice the mutation
// chance. Returns the best repair found, if any.
func (d *Driver) Search(ctx context.Context, root *Variant) (m.BestResult, bool, error) {
	population := make([]*Variant, 0, d.cfg.Population)
	for i := 0; i < d.cfg.Population; i++ {
		population = append(population, d.genetic.Mutate(root, 2*d.cfg.MutationChance))
	}

	var lastBest m.BestResult

	for gen := 1; gen <= d.cfg.Generations; gen++ {
		d.ui.GenerationStarted(ctx, gen, d.cfg.Generations)

		cacheBefore := d.eval.CacheHits()

		scored, err := d.evaluate(ctx, population)
		if err != nil {
			return m.BestResult{}, false, err
		}

		survivors := make([]Scored, 0, len(scored))

		var bestFitness, totalFitness float64

		for _, s := range scored {
			totalFitness += s.Fitness
			if s.Fitness > bestFitness {
				bestFitness = s.Fitness
			}

			if s.Fitness > 0 {
				survivors = append(survivors, s)
			}
		}

		if len(survivors) == 0 {
			return m.BestResult{}, false, fmt.Errorf("generation %d has no positive-fitness survivors", gen)
		}

		doublings := 0
		for len(survivors) < d.cfg.Population {
			survivors = append(survivors, survivors...)
			doublings++

			slog.Info("doubling survivor list", "generation", gen, "survivors", len(survivors))
		}

		d.ui.GenerationCompleted(ctx, m.GenerationStats{
			Generation:  gen,
			Evaluated:   len(scored),
			Survivors:   len(survivors),
			Doublings:   doublings,
			BestFitness: bestFitness,
			MeanFitness: totalFitness / float64(len(scored)),
			CacheHits:   d.eval.CacheHits() - cacheBefore,
		})

		if best, ok := d.eval.Best(); ok && best != lastBest {
			lastBest = best
			d.ui.BestImproved(ctx, best)
		}

		if gen == d.cfg.Generations {
			break
		}

		population, err = d.breed(survivors)
		if err != nil {
			return m.BestResult{}, false, err
		}
	}

	best, found := d.eval.Best()

	return best, found, nil
}

// evaluate scores every member, in parallel when Jobs > 1. Results land in
// a pre-sized slice indexed by member so evaluation order never perturbs
// later random draws.
func (d *Driver) evaluate(ctx context.Context, population []*Variant) ([]Scored, error) {
	scored := make([]Scored, len(population))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(d.cfg.Jobs)

	for i, v := range population {
		group.Go(func() error {
			fitness, err := d.eval.Evaluate(gctx, v)
			if err != nil {
				return err
			}

			scored[i] = Scored{Variant: v, Fitness: fitness}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return scored, nil
}

// breed produces the next generation: sample half the population as
// breeders, pair them for crossover, then append a mutant of every
// resulting entry.
func (d *Driver) breed(survivors []Scored) ([]*Variant, error) {
	breeders, err := Sample(survivors, d.cfg.Population/2, d.rng)
	if err != nil {
		return nil, err
	}

	d.rng.Shuffle(len(breeders), func(i, j int) {
		breeders[i], breeders[j] = breeders[j], breeders[i]
	})

	next := make([]*Variant, 0, 2*len(breeders))

	for i := 0; i+1 < len(breeders); i += 2 {
		mom, dad := breeders[i].Variant, breeders[i+1].Variant

		childA, childB, err := d.genetic.Crossover(mom, dad)
		if err != nil {
			return nil, err
		}

		next = append(next, mom, dad, childA, childB)
	}

	if len(breeders)%2 == 1 {
		next = append(next, breeders[len(breeders)-1].Variant)
	}

	out := make([]*Variant, 0, 2*len(next))
	for _, v := range next {
		out = append(out, v, d.genetic.Mutate(v, d.cfg.MutationChance))
	}

	return out, nil
}

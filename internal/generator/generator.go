// Package generator produces the random parts of spawned items.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/starcatch/internal/model"
)

// Labels are the keys an item can be caught with, home row first.
const Labels = "asdfjklghqweruioptyzxcvnmb"

// Weighted pairs a kind with its relative spawn weight.
type Weighted struct {
	Kind   model.Kind
	Weight float64
}

// Generator produces randomized item attributes.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Kind selects a kind proportionally to its weight.
func (g *Generator) Kind(kinds []Weighted) model.Kind {
	if len(kinds) == 0 {
		return model.KindStar
	}
	total := 0.0
	for _, k := range kinds {
		if k.Weight > 0 {
			total += k.Weight
		}
	}
	if total <= 0 {
		return kinds[0].Kind
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for _, k := range kinds {
		if k.Weight <= 0 {
			continue
		}
		acc += k.Weight
		if r < acc {
			return k.Kind
		}
	}
	return kinds[len(kinds)-1].Kind
}

// Position returns a horizontal position in percent inside [margin, 100-margin].
func (g *Generator) Position(marginPct float64) float64 {
	if marginPct < 0 {
		marginPct = 0
	}
	if marginPct >= 50 {
		return 50
	}
	span := 100 - 2*marginPct
	return marginPct + g.rnd.Float64()*span
}

// Lifetime returns a duration uniformly chosen from [lo, hi].
func (g *Generator) Lifetime(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(g.rnd.Int63n(int64(hi-lo)+1))
}

// Label picks a random label not present in used. ok is false when every
// label is taken.
func (g *Generator) Label(used map[rune]struct{}) (rune, bool) {
	free := make([]rune, 0, len(Labels))
	for _, r := range Labels {
		if _, taken := used[r]; !taken {
			free = append(free, r)
		}
	}
	if len(free) == 0 {
		return 0, false
	}
	return free[g.rnd.Intn(len(free))], true
}

// Package game implements the timed catch round.
//
// The engine does not own any timers. Callers schedule the countdown, the
// spawner, item movement and combo decay themselves and hand the generation
// returned by Start back with every timer event. Events carrying an older
// generation are ignored, so anything still queued after Close or after the
// round ended cannot touch the new state.
package game

import (
	"time"

	"github.com/verte-zerg/starcatch/internal/generator"
	"github.com/verte-zerg/starcatch/internal/model"
)

// Engine owns the state of one round at a time.
type Engine struct {
	cfg   model.GameConfig
	gen   *generator.Generator
	kinds []generator.Weighted
	now   func() time.Time

	generation uint64
	round      uint64
	phase      model.Phase

	score    int
	timeLeft int
	lives    int
	combo    int
	comboSeq uint64
	items    []model.Item
	nextID   int

	startedAt  time.Time
	endedAt    time.Time
	endReason  model.EndReason
	hits       int
	misses     int
	hazardHits int
	bestCombo  int
}

// New returns an idle engine. A nil generator is replaced by one seeded from
// cfg.Seed, or from the clock when the seed is zero.
func New(cfg model.GameConfig, gen *generator.Generator) *Engine {
	cfg = normalizeConfig(cfg)
	if gen == nil {
		if cfg.Seed != 0 {
			gen = generator.NewSeeded(cfg.Seed)
		} else {
			gen = generator.New()
		}
	}
	return &Engine{
		cfg:   cfg,
		gen:   gen,
		kinds: DefaultKinds,
		now:   time.Now,
	}
}

// Config returns the normalized settings.
func (e *Engine) Config() model.GameConfig {
	return e.cfg
}

// Generation returns the current timer generation.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// RoundID identifies the round started last. Zero means no round yet.
func (e *Engine) RoundID() uint64 {
	return e.round
}

// Phase returns the current phase.
func (e *Engine) Phase() model.Phase {
	return e.phase
}

// ComboSeq identifies the latest combo-increasing hit.
func (e *Engine) ComboSeq() uint64 {
	return e.comboSeq
}

// LivesEnabled reports whether hazards can end the round.
func (e *Engine) LivesEnabled() bool {
	return e.cfg.Mode == model.ModeCatch && e.cfg.Lives > 0
}

// Start resets all round state and begins a new round. The returned
// generation must accompany every timer event for this round.
func (e *Engine) Start() uint64 {
	e.reset()
	e.round++
	e.phase = model.PhasePlaying
	e.timeLeft = e.cfg.Duration
	if e.LivesEnabled() {
		e.lives = e.cfg.Lives
	}
	e.startedAt = e.now()
	if e.cfg.Mode == model.ModeClassic {
		e.placeTarget()
	}
	return e.generation
}

// Close abandons the current round and returns to idle. Pending timer events
// become stale.
func (e *Engine) Close() {
	e.reset()
}

func (e *Engine) reset() {
	e.generation++
	e.phase = model.PhaseIdle
	e.score = 0
	e.timeLeft = 0
	e.lives = 0
	e.combo = 0
	e.items = nil
	e.startedAt = time.Time{}
	e.endedAt = time.Time{}
	e.endReason = ""
	e.hits = 0
	e.misses = 0
	e.hazardHits = 0
	e.bestCombo = 0
}

func (e *Engine) live(gen uint64) bool {
	return gen == e.generation && e.phase == model.PhasePlaying
}

// Tick counts down one second. It reports whether the round ended.
func (e *Engine) Tick(gen uint64) bool {
	if !e.live(gen) {
		return false
	}
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.timeLeft = 0
		e.end(model.EndTimeout)
		return true
	}
	return false
}

// Spawn adds one random item. It does nothing in classic mode or when every
// label is in use.
func (e *Engine) Spawn(gen uint64) (model.Item, bool) {
	if !e.live(gen) || e.cfg.Mode != model.ModeCatch {
		return model.Item{}, false
	}
	label, ok := e.gen.Label(e.usedLabels())
	if !ok {
		return model.Item{}, false
	}
	kind := e.gen.Kind(e.kinds)
	x := e.gen.Position(e.cfg.MarginPct)
	lifetime := e.gen.Lifetime(e.cfg.MinLifetime, e.cfg.MaxLifetime)
	return e.place(kind, label, x, lifetime), true
}

func (e *Engine) place(kind model.Kind, label rune, x float64, lifetime time.Duration) model.Item {
	e.nextID++
	item := model.Item{
		ID:       e.nextID,
		Kind:     kind,
		Label:    label,
		X:        x,
		Lifetime: lifetime,
	}
	e.items = append(e.items, item)
	return item
}

func (e *Engine) placeTarget() {
	label, _ := e.gen.Label(nil)
	e.items = e.items[:0]
	e.place(model.KindStar, label, e.gen.Position(e.cfg.MarginPct), 0)
}

func (e *Engine) usedLabels() map[rune]struct{} {
	used := make(map[rune]struct{}, len(e.items))
	for _, it := range e.items {
		used[it.Label] = struct{}{}
	}
	return used
}

// Advance moves items forward by dt and drops the ones that left the play
// area. Missed items have no score effect. It returns the number dropped.
func (e *Engine) Advance(gen uint64, dt time.Duration) int {
	if !e.live(gen) || dt <= 0 {
		return 0
	}
	kept := e.items[:0]
	expired := 0
	for _, it := range e.items {
		if it.Lifetime > 0 {
			it.Age += dt
			if it.Age >= it.Lifetime {
				expired++
				if !IsHazard(it.Kind) {
					e.misses++
				}
				continue
			}
		}
		kept = append(kept, it)
	}
	e.items = kept
	return expired
}

// Hit catches the item with the given id. Unknown ids, items already caught
// or expired, and hits outside a running round are ignored.
func (e *Engine) Hit(id int) bool {
	if e.phase != model.PhasePlaying {
		return false
	}
	for i, it := range e.items {
		if it.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			e.apply(it)
			return true
		}
	}
	return false
}

// HitLabel catches the item currently shown with label r.
func (e *Engine) HitLabel(r rune) bool {
	if e.phase != model.PhasePlaying {
		return false
	}
	for _, it := range e.items {
		if it.Label == r {
			return e.Hit(it.ID)
		}
	}
	return false
}

func (e *Engine) apply(it model.Item) {
	if e.cfg.Mode == model.ModeClassic {
		e.score += ClassicPoints
		e.hits++
		e.placeTarget()
		return
	}
	if IsHazard(it.Kind) {
		e.hazardHits++
		e.combo = 0
		if e.LivesEnabled() {
			e.lives--
			if e.lives <= 0 {
				e.lives = 0
				e.end(model.EndNoLives)
			}
		}
		return
	}
	e.combo++
	if e.combo > e.cfg.MaxCombo {
		e.combo = e.cfg.MaxCombo
	}
	if e.combo > e.bestCombo {
		e.bestCombo = e.combo
	}
	e.comboSeq++
	e.hits++
	e.score += BasePoints(it.Kind) * max(e.combo, 1)
}

// DecayCombo drops the combo by one if no positive hit happened since the hit
// identified by seq. It reports whether the combo changed.
func (e *Engine) DecayCombo(gen, seq uint64) bool {
	if !e.live(gen) || seq != e.comboSeq || e.combo == 0 {
		return false
	}
	e.combo--
	return true
}

func (e *Engine) end(reason model.EndReason) {
	e.phase = model.PhaseOver
	e.endReason = reason
	e.endedAt = e.now()
	e.items = nil
	e.generation++
}

// Snapshot returns a copy of the state for rendering.
func (e *Engine) Snapshot() model.Snapshot {
	items := make([]model.Item, len(e.items))
	copy(items, e.items)
	return model.Snapshot{
		Mode:          e.cfg.Mode,
		Phase:         e.phase,
		Score:         e.score,
		TimeRemaining: e.timeLeft,
		Lives:         e.lives,
		LivesEnabled:  e.LivesEnabled(),
		Combo:         e.combo,
		Items:         items,
	}
}

// Round summarizes the finished round. ok is false unless the phase is over.
func (e *Engine) Round() (model.Round, bool) {
	if e.phase != model.PhaseOver {
		return model.Round{}, false
	}
	return model.Round{
		StartedAt:  e.startedAt,
		EndedAt:    e.endedAt,
		Mode:       e.cfg.Mode,
		Score:      e.score,
		Hits:       e.hits,
		Misses:     e.misses,
		HazardHits: e.hazardHits,
		BestCombo:  e.bestCombo,
		EndReason:  e.endReason,
	}, true
}

package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

// ErrSearchExhausted is returned by FindMinimalBoost when the caller-supplied power bound is
// passed without finding a run in which no Elf dies.
var ErrSearchExhausted = errors.New("minimal boost search exhausted")

// RunBattle builds a fresh Battlefield and plays it to completion.
//
// Precondition: terrain must be non-nil.
// Postcondition: Returns the battle Result, or an error for invalid input, stalemate or a
// round limit set through opts.
func RunBattle(terrain *grid.Grid, placements []Placement, rules Rules, opts ...Option) (Result, error) {
	b, err := NewBattlefield(terrain, placements, rules)
	if err != nil {
		return Result{}, err
	}
	return NewScheduler(b, opts...).Run()
}

// Boost is the outcome of the minimal Elf power search.
type Boost struct {
	// Power is the smallest Elf attack power with no Elf casualty.
	Power int
	// Attempts is the number of simulations run.
	Attempts int
	// Result is the winning run.
	Result Result
}

// Score returns the score of the winning run.
func (b Boost) Score() int { return b.Result.Score() }

// FindMinimalBoost searches Elf attack powers upward from rules.ElfPower+1. Each attempt
// rebuilds the battle from placements and aborts on the first Elf death; the first attempt
// with no Elf casualty is returned.
//
// maxPower bounds the search; 0 means unbounded.
//
// Precondition: terrain must be non-nil; maxPower >= 0.
// Postcondition: On nil error, Boost.Result.Casualties contains no Elf and every power in
// [rules.ElfPower+1, Boost.Power) produced an Elf casualty.
func FindMinimalBoost(terrain *grid.Grid, placements []Placement, rules Rules, maxPower int, opts ...Option) (Boost, error) {
	attempts := 0
	for power := rules.ElfPower + 1; maxPower == 0 || power <= maxPower; power++ {
		attempts++
		b, err := NewBattlefield(terrain, placements, rules.WithElfPower(power))
		if err != nil {
			return Boost{}, err
		}
		attemptOpts := append(append([]Option{}, opts...), WithEarlyAbort(Elf))
		res, err := NewScheduler(b, attemptOpts...).Run()
		if err != nil {
			return Boost{}, fmt.Errorf("elf power %d: %w", power, err)
		}
		if !b.HasCasualty(Elf) {
			return Boost{Power: power, Attempts: attempts, Result: res}, nil
		}
	}
	return Boost{Attempts: attempts}, fmt.Errorf("%w: no elf power up to %d avoids elf casualties", ErrSearchExhausted, maxPower)
}

// Evaluator bundles rules, logging and observers so callers share one configured entry point.
type Evaluator struct {
	rules     Rules
	maxPower  int
	maxRounds int
	logger    *zap.Logger
	hooks     []func(RoundEvent)
	rounds    []func(int, *Battlefield)
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithSearchBound sets the largest Elf power FindMinimalBoost will try; 0 is unbounded.
func WithSearchBound(maxPower int) EvaluatorOption {
	return func(e *Evaluator) { e.maxPower = maxPower }
}

// WithRoundBound limits every run to n completed rounds; 0 is unbounded.
func WithRoundBound(n int) EvaluatorOption {
	return func(e *Evaluator) { e.maxRounds = n }
}

// WithObserver registers an event observer applied to every run.
func WithObserver(fn func(RoundEvent)) EvaluatorOption {
	return func(e *Evaluator) {
		if fn != nil {
			e.hooks = append(e.hooks, fn)
		}
	}
}

// WithRoundObserver registers a completed-round observer applied to every run.
func WithRoundObserver(fn func(int, *Battlefield)) EvaluatorOption {
	return func(e *Evaluator) {
		if fn != nil {
			e.rounds = append(e.rounds, fn)
		}
	}
}

// NewEvaluator creates an Evaluator.
//
// Precondition: rules must be valid; a non-zero search bound must exceed rules.ElfPower.
// Postcondition: Returns a non-nil Evaluator or a validation error.
func NewEvaluator(rules Rules, logger *zap.Logger, opts ...EvaluatorOption) (*Evaluator, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("validating rules: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{rules: rules, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxPower < 0 {
		return nil, fmt.Errorf("search bound must be >= 0, got %d", e.maxPower)
	}
	if e.maxPower != 0 && e.maxPower <= rules.ElfPower {
		return nil, fmt.Errorf("search bound %d must exceed elf power %d", e.maxPower, rules.ElfPower)
	}
	return e, nil
}

// Rules returns the evaluator's rules.
func (e *Evaluator) Rules() Rules { return e.rules }

func (e *Evaluator) options() []Option {
	opts := []Option{WithLogger(e.logger), WithMaxRounds(e.maxRounds)}
	for _, h := range e.hooks {
		opts = append(opts, WithEventHook(h))
	}
	for _, h := range e.rounds {
		opts = append(opts, WithRoundHook(h))
	}
	return opts
}

// Battle builds a fresh Battlefield and a Scheduler carrying the evaluator's observers and
// bounds, for callers that need the battlefield after the run.
func (e *Evaluator) Battle(terrain *grid.Grid, placements []Placement) (*Scheduler, error) {
	b, err := NewBattlefield(terrain, placements, e.rules)
	if err != nil {
		return nil, err
	}
	return NewScheduler(b, e.options()...), nil
}

// RunBattle plays one battle under the evaluator's rules.
func (e *Evaluator) RunBattle(terrain *grid.Grid, placements []Placement) (Result, error) {
	s, err := e.Battle(terrain, placements)
	if err != nil {
		return Result{}, err
	}
	return s.Run()
}

// FindMinimalBoost runs the minimal Elf power search under the evaluator's rules and bound.
func (e *Evaluator) FindMinimalBoost(terrain *grid.Grid, placements []Placement) (Boost, error) {
	boost, err := FindMinimalBoost(terrain, placements, e.rules, e.maxPower, e.options()...)
	if err != nil {
		return boost, err
	}
	e.logger.Info("minimal elf power found",
		zap.Int("power", boost.Power),
		zap.Int("attempts", boost.Attempts),
		zap.Int("score", boost.Score()),
	)
	return boost, nil
}

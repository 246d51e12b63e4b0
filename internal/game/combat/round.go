package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

var (
	// ErrStalemate is returned when a full round passes with no movement and no attack
	// while both factions survive. Every later round would be identical.
	ErrStalemate = errors.New("stalemate: no unit can move or attack")
	// ErrRoundLimit is returned when the caller-supplied round bound is reached.
	ErrRoundLimit = errors.New("round limit reached")
)

// EventType identifies what a RoundEvent records.
type EventType int

const (
	EventMove EventType = iota
	EventAttack
	EventKill
)

// String returns the hook-friendly event name.
func (t EventType) String() string {
	switch t {
	case EventMove:
		return "move"
	case EventAttack:
		return "attack"
	case EventKill:
		return "kill"
	default:
		return "unknown"
	}
}

// RoundEvent records one thing that happened during a unit's turn.
type RoundEvent struct {
	Type EventType
	// Round is the 1-based round in which the event happened.
	Round int
	// Actor is a snapshot of the acting unit after the event.
	Actor Unit
	// Target is a snapshot of the defender after damage; zero for EventMove.
	Target Unit
	// From and To are set for EventMove.
	From grid.Point
	To   grid.Point
	// Narrative is a one-line description suitable for logs.
	Narrative string
}

// Result is the outcome of running a battle.
type Result struct {
	// Rounds counts completed rounds only.
	Rounds int
	// RemainingHP is the summed HP of surviving units.
	RemainingHP int
	// Casualties is the faction of every dead unit in order of death.
	Casualties []Faction
	// Winner is the surviving faction; meaningful only when Decided is true.
	Winner  Faction
	Decided bool
	// Aborted is true when early-abort ended the battle.
	Aborted bool
}

// Score returns Rounds * RemainingHP.
//
// Postcondition: Returns >= 0.
func (r Result) Score() int {
	return r.Rounds * r.RemainingHP
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for per-event debug logging and the outcome line.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEarlyAbort ends the battle the instant any unit of faction f dies.
func WithEarlyAbort(f Faction) Option {
	return func(s *Scheduler) {
		s.abortOn = &f
	}
}

// WithEventHook registers fn to observe every RoundEvent. Multiple hooks run in registration order.
func WithEventHook(fn func(RoundEvent)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.eventHooks = append(s.eventHooks, fn)
		}
	}
}

// WithRoundHook registers fn to run after every completed round.
func WithRoundHook(fn func(round int, b *Battlefield)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.roundHooks = append(s.roundHooks, fn)
		}
	}
}

// WithMaxRounds bounds the number of completed rounds; 0 means unbounded.
func WithMaxRounds(n int) Option {
	return func(s *Scheduler) {
		s.maxRounds = n
	}
}

// Scheduler drives a Battlefield round by round. It exclusively owns the Battlefield while running.
type Scheduler struct {
	field      *Battlefield
	paths      *Pathfinder
	logger     *zap.Logger
	abortOn    *Faction
	eventHooks []func(RoundEvent)
	roundHooks []func(int, *Battlefield)
	maxRounds  int

	rounds  int
	active  bool
	aborted bool
}

// NewScheduler creates a Scheduler for b.
//
// Precondition: b must be non-nil and not driven by another Scheduler.
// Postcondition: Returns a Scheduler with zero completed rounds.
func NewScheduler(b *Battlefield, opts ...Option) *Scheduler {
	s := &Scheduler{
		field:  b,
		paths:  NewPathfinder(b),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rounds returns the number of completed rounds so far.
func (s *Scheduler) Rounds() int { return s.rounds }

// Battlefield returns the battlefield being driven.
func (s *Scheduler) Battlefield() *Battlefield { return s.field }

// Run plays rounds until a faction is eliminated, early abort fires, or an error bound is hit.
//
// Postcondition: On nil error, Result.Decided or Result.Aborted is true, except for a
// battlefield with no units, which ends at once with neither set. On ErrStalemate or
// ErrRoundLimit the returned Result describes the state at that point.
func (s *Scheduler) Run() (Result, error) {
	for {
		complete := s.PlayRound()
		if !complete {
			res := s.result()
			s.logger.Info("battle over",
				zap.String("battle_id", s.field.ID),
				zap.Int("rounds", res.Rounds),
				zap.Int("remaining_hp", res.RemainingHP),
				zap.Int("score", res.Score()),
				zap.Stringer("winner", res.Winner),
				zap.Bool("aborted", res.Aborted),
			)
			return res, nil
		}
		if !s.active {
			s.logger.Warn("battle stalemated",
				zap.String("battle_id", s.field.ID),
				zap.Int("rounds", s.rounds),
			)
			return s.result(), fmt.Errorf("after round %d: %w", s.rounds, ErrStalemate)
		}
		if s.maxRounds > 0 && s.rounds >= s.maxRounds {
			return s.result(), fmt.Errorf("after round %d: %w", s.rounds, ErrRoundLimit)
		}
	}
}

// PlayRound plays one round: every unit alive at the start acts once in reading order.
//
// Postcondition: Returns true iff the round completed and was counted. Returns false when
// combat ended mid-round (no enemies left for an acting unit) or early abort fired.
func (s *Scheduler) PlayRound() bool {
	s.active = false
	if s.field.TotalLiving() == 0 {
		return false
	}
	round := s.rounds + 1
	for _, u := range s.field.Living() {
		// A unit killed earlier this round is gone from the store; its snapshot entry is stale.
		if live, ok := s.field.UnitAt(u.Pos); !ok || live != u {
			continue
		}
		if s.field.LivingCount(u.Faction.Enemy()) == 0 {
			return false
		}
		if s.takeTurn(u, round) {
			s.aborted = true
			return false
		}
	}
	s.rounds = round
	for _, hook := range s.roundHooks {
		hook(round, s.field)
	}
	return true
}

// takeTurn runs one unit's move and attack phases. It returns true when early abort fired.
func (s *Scheduler) takeTurn(u *Unit, round int) bool {
	if len(s.field.AdjacentEnemies(u)) == 0 {
		targets := s.field.TargetCells(u.Faction)
		if len(targets) == 0 {
			return false
		}
		mv, ok := s.paths.BestMove(u.Pos, targets)
		if !ok {
			return false
		}
		from := u.Pos
		s.field.MoveUnit(from, mv.Step)
		s.active = true
		s.emit(RoundEvent{
			Type:      EventMove,
			Round:     round,
			Actor:     *u,
			From:      from,
			To:        mv.Step,
			Narrative: fmt.Sprintf("%s moves %s -> %s toward %s.", u, from, mv.Step, mv.Destination),
		})
	}

	enemies := s.field.AdjacentEnemies(u)
	if len(enemies) == 0 {
		return false
	}
	return s.attack(u, selectTarget(enemies), round)
}

// selectTarget returns the weakest enemy; ties go to the first in reading order.
//
// Precondition: enemies is non-empty and in reading order.
func selectTarget(enemies []*Unit) *Unit {
	if len(enemies) == 0 {
		panic("combat: selectTarget called with no adjacent enemy")
	}
	target := enemies[0]
	for _, e := range enemies[1:] {
		if e.HP < target.HP {
			target = e
		}
	}
	return target
}

func (s *Scheduler) attack(attacker, defender *Unit, round int) bool {
	defender.ApplyDamage(attacker.Power)
	s.active = true
	s.emit(RoundEvent{
		Type:      EventAttack,
		Round:     round,
		Actor:     *attacker,
		Target:    *defender,
		Narrative: fmt.Sprintf("%s hits %s for %d.", attacker, defender, attacker.Power),
	})
	if !defender.IsDead() {
		return false
	}

	s.field.remove(defender)
	s.emit(RoundEvent{
		Type:      EventKill,
		Round:     round,
		Actor:     *attacker,
		Target:    *defender,
		Narrative: fmt.Sprintf("%s kills %s.", attacker, defender),
	})
	return s.abortOn != nil && defender.Faction == *s.abortOn
}

func (s *Scheduler) emit(ev RoundEvent) {
	s.logger.Debug(ev.Narrative,
		zap.String("battle_id", s.field.ID),
		zap.Stringer("event", ev.Type),
		zap.Int("round", ev.Round),
	)
	for _, hook := range s.eventHooks {
		hook(ev)
	}
}

func (s *Scheduler) result() Result {
	res := Result{
		Rounds:      s.rounds,
		RemainingHP: s.field.RemainingHP(),
		Casualties:  s.field.Casualties(),
		Aborted:     s.aborted,
	}
	for _, f := range Factions {
		if s.field.LivingCount(f.Enemy()) == 0 && s.field.LivingCount(f) > 0 {
			res.Winner = f
			res.Decided = true
		}
	}
	return res
}

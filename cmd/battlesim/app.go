package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cavecombat/internal/config"
	"github.com/cory-johannsen/cavecombat/internal/game/cave"
	"github.com/cory-johannsen/cavecombat/internal/game/combat"
	"github.com/cory-johannsen/cavecombat/internal/observability"
	"github.com/cory-johannsen/cavecombat/internal/render"
	"github.com/cory-johannsen/cavecombat/internal/scripting"
)

// Copier places text on the system clipboard.
type Copier func(text string) error

// Job describes one invocation: which cave to fight over and what to report.
type Job struct {
	// MapPath is a plain cave map file. Exactly one of MapPath and ScenarioPath is set.
	MapPath string
	// ScenarioPath is a scenario YAML file carrying a map, optional rules and expectations.
	ScenarioPath string
	Boost        bool
	Render       bool
	Clipboard    bool
}

// App runs battles for the CLI.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	scripts *scripting.Manager
	out     io.Writer
	copier  Copier

	// current is the battlefield engine.render() draws.
	current *combat.Battlefield
}

// NewApp wires the app and points the Lua engine.render() function at the battle in progress.
//
// Precondition: every argument must be non-nil.
func NewApp(cfg config.Config, logger *zap.Logger, scripts *scripting.Manager, out io.Writer, copier Copier) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		scripts: scripts,
		out:     out,
		copier:  copier,
	}
	scripts.Render = a.renderCurrent
	return a
}

func (a *App) renderCurrent() string {
	if a.current == nil {
		return ""
	}
	return render.Battlefield(a.current, render.Options{})
}

// battle is a loaded cave plus the identity used for logging.
type battle struct {
	id     string
	name   string
	cave   *cave.Map
	rules  combat.Rules
	expect *cave.Expectation
}

func (a *App) baseRules() combat.Rules {
	return combat.Rules{
		HitPoints:   a.cfg.Battle.HitPoints,
		ElfPower:    a.cfg.Battle.ElfPower,
		GoblinPower: a.cfg.Battle.GoblinPower,
	}
}

func (a *App) load(job Job) (battle, error) {
	switch {
	case job.ScenarioPath != "" && job.MapPath != "":
		return battle{}, errors.New("only one of a map and a scenario may be given")
	case job.ScenarioPath != "":
		sc, err := cave.LoadScenarioFromFile(job.ScenarioPath)
		if err != nil {
			return battle{}, err
		}
		return battle{
			id:     sc.ID,
			name:   sc.Name,
			cave:   sc.Map,
			rules:  sc.RulesOr(a.baseRules()),
			expect: sc.Expect,
		}, nil
	case job.MapPath != "":
		m, err := cave.LoadFile(job.MapPath)
		if err != nil {
			return battle{}, err
		}
		id := strings.TrimSuffix(filepath.Base(job.MapPath), filepath.Ext(job.MapPath))
		return battle{id: id, name: id, cave: m, rules: a.baseRules()}, nil
	default:
		return battle{}, errors.New("a map or a scenario is required")
	}
}

// evaluator builds an Evaluator for rules. With search set, the configured power bound is
// applied and checked against rules; otherwise battle events and completed rounds are
// forwarded to the Lua hooks.
func (a *App) evaluator(rules combat.Rules, logger *zap.Logger, search bool) (*combat.Evaluator, error) {
	opts := []combat.EvaluatorOption{combat.WithRoundBound(a.cfg.Battle.MaxRounds)}
	if search {
		opts = append(opts, combat.WithSearchBound(a.cfg.Search.MaxPower))
	} else if a.scripts.Loaded() {
		opts = append(opts,
			combat.WithObserver(func(ev combat.RoundEvent) {
				a.scripts.DispatchEvent(eventInfo(ev))
			}),
			combat.WithRoundObserver(func(round int, b *combat.Battlefield) {
				a.scripts.DispatchRound(round, b.TotalLiving())
			}),
		)
	}
	return combat.NewEvaluator(rules, logger, opts...)
}

// Run fights job's battle, writes the report to the app's output and optionally copies it.
//
// Postcondition: Returns nil iff the battle was decided and every requested step succeeded.
// A stalemate or round limit is reported before its error is returned.
func (a *App) Run(job Job) error {
	bt, err := a.load(job)
	if err != nil {
		return err
	}
	logger := observability.ForScenario(a.logger, bt.id, bt.name)
	logger.Info("battle starting",
		zap.Int("elves", bt.cave.Count(combat.Elf)),
		zap.Int("goblins", bt.cave.Count(combat.Goblin)),
		zap.Int("hit_points", bt.rules.HitPoints),
		zap.Int("elf_power", bt.rules.ElfPower),
		zap.Int("goblin_power", bt.rules.GoblinPower),
	)

	ev, err := a.evaluator(bt.rules, logger, false)
	if err != nil {
		return err
	}
	s, err := ev.Battle(bt.cave.Terrain, bt.cave.Placements)
	if err != nil {
		return fmt.Errorf("placing units: %w", err)
	}
	a.current = s.Battlefield()
	res, runErr := s.Run()
	if runErr != nil && !errors.Is(runErr, combat.ErrStalemate) && !errors.Is(runErr, combat.ErrRoundLimit) {
		return runErr
	}
	a.scripts.DispatchEnd(resultInfo(res))

	var report strings.Builder
	if job.Render {
		report.WriteString(render.Battlefield(s.Battlefield(), render.Options{Color: a.cfg.Render.Color}))
		report.WriteString("\n")
	}
	report.WriteString(render.Summary(res))
	report.WriteString("\n")

	if runErr == nil && bt.expect != nil {
		verify(logger, "rounds", bt.expect.Rounds, res.Rounds)
		verify(logger, "remaining_hp", bt.expect.RemainingHP, res.RemainingHP)
		verify(logger, "outcome", bt.expect.Outcome, res.Score())
	}

	if job.Boost && runErr == nil {
		boostEv, err := a.evaluator(bt.rules, logger, true)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", bt.id, err)
		}
		boost, err := boostEv.FindMinimalBoost(bt.cave.Terrain, bt.cave.Placements)
		if err != nil {
			return fmt.Errorf("searching minimal elf power: %w", err)
		}
		fmt.Fprintf(&report, "\nElves need attack power %d (%d attempts)\n%s\n",
			boost.Power, boost.Attempts, render.Summary(boost.Result))
		if bt.expect != nil {
			verify(logger, "boost_power", bt.expect.BoostPower, boost.Power)
			verify(logger, "boost_outcome", bt.expect.BoostOutcome, boost.Score())
		}
	}

	if _, err := io.WriteString(a.out, report.String()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if job.Clipboard {
		if err := a.copier(render.StripANSI(report.String())); err != nil {
			return fmt.Errorf("copying report to clipboard: %w", err)
		}
		logger.Info("report copied to clipboard")
	}
	if runErr != nil {
		return fmt.Errorf("battle %s: %w", bt.id, runErr)
	}
	return nil
}

// verify logs whether a known result was reproduced. A zero want is not checked.
func verify(logger *zap.Logger, check string, want, got int) {
	if want == 0 {
		return
	}
	if want != got {
		logger.Warn("expectation mismatch",
			zap.String("check", check),
			zap.Int("want", want),
			zap.Int("got", got),
		)
		return
	}
	logger.Debug("expectation met", zap.String("check", check), zap.Int("value", got))
}

func eventInfo(ev combat.RoundEvent) scripting.EventInfo {
	info := scripting.EventInfo{
		Kind:         ev.Type.String(),
		Round:        ev.Round,
		ActorID:      ev.Actor.ID,
		ActorFaction: ev.Actor.Faction.String(),
		ActorHP:      ev.Actor.HP,
		FromX:        ev.From.X,
		FromY:        ev.From.Y,
		ToX:          ev.To.X,
		ToY:          ev.To.Y,
	}
	if ev.Type != combat.EventMove {
		info.TargetID = ev.Target.ID
		info.TargetFaction = ev.Target.Faction.String()
		info.TargetHP = ev.Target.HP
	}
	return info
}

func resultInfo(res combat.Result) scripting.ResultInfo {
	info := scripting.ResultInfo{
		Rounds:      res.Rounds,
		RemainingHP: res.RemainingHP,
		Score:       res.Score(),
		Aborted:     res.Aborted,
	}
	if res.Decided {
		info.Winner = res.Winner.String()
	}
	for _, f := range res.Casualties {
		info.Casualties = append(info.Casualties, f.String())
	}
	return info
}

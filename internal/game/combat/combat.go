// Package combat implements the deterministic grid battle between Elves and Goblins.
package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cavecombat/internal/game/grid"
)

// Faction distinguishes the two sides of a battle.
type Faction int

const (
	Elf Faction = iota
	Goblin
)

// Factions lists every faction in a stable order.
var Factions = [2]Faction{Elf, Goblin}

// String returns a human-readable faction label.
func (f Faction) String() string {
	switch f {
	case Elf:
		return "elf"
	case Goblin:
		return "goblin"
	default:
		return "unknown"
	}
}

// Rune returns the map rune used for units of this faction.
func (f Faction) Rune() rune {
	if f == Elf {
		return 'E'
	}
	return 'G'
}

// Enemy returns the opposing faction.
//
// Postcondition: f.Enemy().Enemy() == f.
func (f Faction) Enemy() Faction {
	if f == Elf {
		return Goblin
	}
	return Elf
}

// FactionFromRune maps 'E' and 'G' to their faction.
//
// Postcondition: ok is false for any other rune.
func FactionFromRune(r rune) (f Faction, ok bool) {
	switch r {
	case 'E':
		return Elf, true
	case 'G':
		return Goblin, true
	default:
		return 0, false
	}
}

// Rules carries the per-battle constants that would otherwise be globals.
type Rules struct {
	// HitPoints is the starting HP of every unit.
	HitPoints int
	// ElfPower is the damage an Elf deals per attack.
	ElfPower int
	// GoblinPower is the damage a Goblin deals per attack.
	GoblinPower int
}

// DefaultRules returns the standard 200 HP / 3 power rules.
func DefaultRules() Rules {
	return Rules{HitPoints: 200, ElfPower: 3, GoblinPower: 3}
}

// Power returns the attack power for units of faction f.
func (r Rules) Power(f Faction) int {
	if f == Elf {
		return r.ElfPower
	}
	return r.GoblinPower
}

// WithElfPower returns a copy of r with ElfPower replaced.
func (r Rules) WithElfPower(power int) Rules {
	r.ElfPower = power
	return r
}

// Validate checks that every rule value is positive.
//
// Postcondition: Returns nil iff HitPoints, ElfPower and GoblinPower are all >= 1.
func (r Rules) Validate() error {
	var errs []error
	if r.HitPoints < 1 {
		errs = append(errs, fmt.Errorf("hit points must be >= 1, got %d", r.HitPoints))
	}
	if r.ElfPower < 1 {
		errs = append(errs, fmt.Errorf("elf power must be >= 1, got %d", r.ElfPower))
	}
	if r.GoblinPower < 1 {
		errs = append(errs, fmt.Errorf("goblin power must be >= 1, got %d", r.GoblinPower))
	}
	return errors.Join(errs...)
}

// Placement is the initial position of one unit as produced by the map parser.
type Placement struct {
	Faction Faction
	Pos     grid.Point
}

// Unit is one combatant on the battlefield.
type Unit struct {
	// ID is stable for the lifetime of a battle and follows initial reading order.
	ID      int
	Faction Faction
	HP      int
	Power   int
	Pos     grid.Point
}

// String returns e.g. "elf#3(200)@(4,2)".
func (u *Unit) String() string {
	return fmt.Sprintf("%s#%d(%d)@%s", u.Faction, u.ID, u.HP, u.Pos)
}

// IsDead reports whether the unit has been killed. A unit at exactly 0 HP is dead.
//
// Postcondition: Returns true iff HP <= 0.
func (u *Unit) IsDead() bool {
	return u.HP <= 0
}

// ApplyDamage reduces HP by amount. HP may go negative; callers use IsDead.
//
// Precondition: amount >= 0.
// Postcondition: HP is reduced by exactly amount.
func (u *Unit) ApplyDamage(amount int) {
	if amount < 0 {
		panic(fmt.Sprintf("combat: negative damage %d applied to %s", amount, u))
	}
	u.HP -= amount
}

package command

import (
	"fmt"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/common/validation"
)

// initComposite resets the folded traits to their identities: a composition
// with no children runs while disabled and defends its (empty) requirements.
func (b *Base) initComposite() {
	b.runsWhenDisabled = true
	b.interruption = CancelIncoming
}

// absorb folds a child's requirements and traits into the composition.
func (b *Base) absorb(c Command) {
	b.AddRequirements(c.Requirements()...)
	b.runsWhenDisabled = b.runsWhenDisabled && c.RunsWhenDisabled()
	if c.InterruptionBehavior() == CancelSelf {
		b.interruption = CancelSelf
	}
}

// adopt checks that every child may be taken by owner and then marks all of
// them grouped. Nothing is marked if any child is rejected.
func adopt(owner Command, existing []Command, children ...Command) error {
	if err := checkChildren(owner, existing, children...); err != nil {
		return err
	}
	markGrouped(children...)
	return nil
}

func checkChildren(owner Command, existing []Command, children ...Command) error {
	module := owner.Name()
	if owner.Grouped() {
		return fmt.Errorf("%s: cannot add to a composition that is itself grouped: %w", module, rcerrors.ErrGrouped)
	}

	seen := make(map[Command]bool, len(existing)+len(children))
	for _, c := range existing {
		seen[c] = true
	}
	for i, c := range children {
		if err := validation.ValidateNotNil(module, fmt.Sprintf("commands[%d]", i), c); err != nil {
			return err
		}
		if c.base() == owner.base() {
			return fmt.Errorf("%s: cannot contain itself: %w", module, rcerrors.ErrOwnership)
		}
		if c.Grouped() {
			return fmt.Errorf("%s: child %s: %w", module, c.Name(), rcerrors.ErrGrouped)
		}
		if c.Scheduled() {
			return fmt.Errorf("%s: child %s: %w", module, c.Name(), rcerrors.ErrAlreadyScheduled)
		}
		if seen[c] {
			return fmt.Errorf("%s: child %s: %w", module, c.Name(), rcerrors.ErrDuplicateChild)
		}
		seen[c] = true
	}
	return nil
}

func markGrouped(children ...Command) {
	for _, c := range children {
		c.base().grouped = true
	}
}

// disjoint returns an error if any child shares a requirement with another
// child or with the existing members. Children must already be checked.
func disjoint(module string, existing []Command, children ...Command) error {
	claimed := make(map[*Subsystem]string)
	for _, c := range existing {
		for _, s := range c.Requirements() {
			claimed[s] = c.Name()
		}
	}
	for _, c := range children {
		for _, s := range c.Requirements() {
			if other, ok := claimed[s]; ok {
				return fmt.Errorf("%s: %s and %s both require %s: %w",
					module, other, c.Name(), s.Name(), rcerrors.ErrRequirementConflict)
			}
			claimed[s] = c.Name()
		}
	}
	return nil
}

func mustBeRunning(c Command, running bool) {
	if !running {
		panic(fmt.Errorf("%s: %w", c.Name(), rcerrors.ErrDoubleEnd))
	}
}

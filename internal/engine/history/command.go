package history

import (
	"fmt"
	"strings"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/format"
	"github.com/dshills/scribe/internal/engine/selection"
	"github.com/dshills/scribe/internal/engine/text"
)

// State is the mutable document state commands operate on.
type State interface {
	Text() *text.Storage
	Formats() *format.Table
	Blocks() *block.Table
	SetSelection(sel selection.Selection)
}

// Command represents a reversible edit.
type Command interface {
	// Execute re-applies the command and returns an error if it fails.
	Execute(st State) error

	// Undo reverses the command and returns an error if it fails.
	Undo(st State) error

	// Description returns a human-readable description of the command.
	Description() string
}

// EditCommand is a recorded document mutation.
type EditCommand struct {
	Name            string
	Steps           Steps
	SelectionBefore selection.Selection
	SelectionAfter  selection.Selection
}

// NewEditCommand creates a command from already applied steps. Empty steps
// are dropped.
func NewEditCommand(name string, steps Steps, before, after selection.Selection) *EditCommand {
	kept := make(Steps, 0, len(steps))
	for _, s := range steps {
		if !s.IsEmpty() {
			kept = append(kept, s)
		}
	}
	return &EditCommand{
		Name:            name,
		Steps:           kept,
		SelectionBefore: before,
		SelectionAfter:  after,
	}
}

// IsEmpty reports whether the command changes nothing.
func (c *EditCommand) IsEmpty() bool {
	return len(c.Steps) == 0
}

// Execute re-applies the steps and restores the post-edit selection.
func (c *EditCommand) Execute(st State) error {
	if err := c.Steps.Apply(st); err != nil {
		return fmt.Errorf("redo %s: %w", c.Name, err)
	}
	st.SetSelection(c.SelectionAfter)
	return nil
}

// Undo applies the inverse steps and restores the pre-edit selection.
func (c *EditCommand) Undo(st State) error {
	if err := c.Steps.Invert().Apply(st); err != nil {
		return fmt.Errorf("undo %s: %w", c.Name, err)
	}
	st.SetSelection(c.SelectionBefore)
	return nil
}

// Description returns the command name.
func (c *EditCommand) Description() string {
	return c.Name
}

// CharsDelta returns the change in document length.
func (c *EditCommand) CharsDelta() int {
	return c.Steps.CharsDelta()
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order. On failure the commands already run
// are undone.
func (c *CompoundCommand) Execute(st State) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(st); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(st)
			}
			return err
		}
	}
	return nil
}

// Undo undoes all commands in reverse order. On failure the commands
// already undone are re-executed.
func (c *CompoundCommand) Undo(st State) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(st); err != nil {
			for j := i + 1; j < len(c.Commands); j++ {
				_ = c.Commands[j].Execute(st)
			}
			return err
		}
	}
	return nil
}

// Description returns the group name, or the member descriptions joined.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	parts := make([]string, len(c.Commands))
	for i, cmd := range c.Commands {
		parts[i] = cmd.Description()
	}
	return strings.Join(parts, ", ")
}

// CharsDelta returns the total change in document length.
func (c *CompoundCommand) CharsDelta() int {
	total := 0
	for _, cmd := range c.Commands {
		total += charsDelta(cmd)
	}
	return total
}

func charsDelta(cmd Command) int {
	if d, ok := cmd.(interface{ CharsDelta() int }); ok {
		return d.CharsDelta()
	}
	return 0
}

package domain

import "fmt"

// Step is one of the three linear wizard stages.
type Step int

// Wizard steps in order. The numeric values matter: a transition to a higher
// value is a "forward" move and triggers an auto-save of the current story.
const (
	StepPrompting  Step = 1
	StepEditing    Step = 2
	StepPreviewing Step = 3
)

// Valid reports whether s is a known wizard step.
func (s Step) Valid() bool {
	return s >= StepPrompting && s <= StepPreviewing
}

// ForwardOf reports whether s is ahead of other in the wizard flow.
func (s Step) ForwardOf(other Step) bool {
	return s > other
}

func (s Step) String() string {
	switch s {
	case StepPrompting:
		return "prompting"
	case StepEditing:
		return "editing"
	case StepPreviewing:
		return "previewing"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

package session

import (
	"log/slog"
	"sync"

	"github.com/storybookapp/storybook-server/internal/domain"
)

// Controller owns the session state for the process lifetime. All reads go
// through Snapshot and all writes through Dispatch, so the state is always
// internally consistent even under concurrent HTTP handlers.
type Controller struct {
	mu     sync.RWMutex
	state  State
	logger *slog.Logger
}

// NewController creates a controller at the prompting step with the default
// theme.
func NewController(logger *slog.Logger) *Controller {
	return &Controller{
		state: State{
			Step:  domain.StepPrompting,
			Theme: domain.ThemeDark,
		},
		logger: logger,
	}
}

// Dispatch applies one action and returns the resulting snapshot.
func (c *Controller) Dispatch(action Action) State {
	c.mu.Lock()
	c.state = reduce(c.state, action)
	next := c.state
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("session action applied",
			"action", actionName(action),
			"step", next.Step.String(),
		)
	}
	return snapshotCopy(next)
}

// Snapshot returns a copy of the current state. The contained story is a
// clone; callers may mutate it freely.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshotCopy(c.state)
}

// Step returns the current wizard step.
func (c *Controller) Step() domain.Step {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Step
}

// CurrentStory returns a clone of the story being edited, or nil.
func (c *Controller) CurrentStory() *domain.Story {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.Story == nil {
		return nil
	}
	return c.state.Story.Clone()
}

func snapshotCopy(s State) State {
	if s.Story != nil {
		s.Story = s.Story.Clone()
	}
	return s
}

func actionName(action Action) string {
	switch action.(type) {
	case SetLoading:
		return "set_loading"
	case SetError:
		return "set_error"
	case SetStory:
		return "set_story"
	case SetStep:
		return "set_step"
	case SetStorageID:
		return "set_storage_id"
	case UpdateChapterContent:
		return "update_chapter_content"
	case SetChapterGenerating:
		return "set_chapter_generating"
	case SetChapterImage:
		return "set_chapter_image"
	case SetTheme:
		return "set_theme"
	case SetLastPromptID:
		return "set_last_prompt_id"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

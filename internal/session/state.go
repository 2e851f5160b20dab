// Package session holds the single in-memory story being authored and the
// wizard position, mutated only through typed actions, plus the coordinator
// that serializes step changes against auto-save.
package session

import "github.com/storybookapp/storybook-server/internal/domain"

// State is one immutable snapshot of the authoring session. The story
// pointer always refers to a session-owned copy; callers receive clones.
type State struct {
	Story        *domain.Story
	Step         domain.Step
	Loading      bool
	Err          string
	Theme        domain.Theme
	LastPromptID string
}

// Action is a named state transition. All session mutation flows through
// Controller.Dispatch with one of the action types below.
type Action interface {
	isAction()
}

// SetLoading toggles the global loading flag and clears any stale error
// when loading starts.
type SetLoading struct{ Loading bool }

// SetError records a user-visible error message and stops loading.
type SetError struct{ Message string }

// SetStory replaces the current story. Used after generation and after
// loading a saved story; clears loading and error state.
type SetStory struct{ Story *domain.Story }

// SetStep moves the wizard to a step. Step changes normally go through the
// Transitioner, which dispatches this action after the auto-save checkpoint.
type SetStep struct{ Step domain.Step }

// SetStorageID merges a repository-assigned ID back into the current story.
type SetStorageID struct{ ID string }

// UpdateChapterContent replaces one chapter's rich-markup content.
type UpdateChapterContent struct {
	ChapterID string
	Content   string
}

// SetChapterGenerating toggles a chapter's illustration-in-flight flag.
// Flags are keyed by chapter ID so concurrent generations for different
// chapters never clobber each other.
type SetChapterGenerating struct {
	ChapterID  string
	Generating bool
}

// SetChapterImage records a generated illustration on a chapter and clears
// its generating flag.
type SetChapterImage struct {
	ChapterID   string
	ImageURL    string
	ImagePrompt string
}

// SetTheme switches the UI theme preference.
type SetTheme struct{ Theme domain.Theme }

// SetLastPromptID remembers the most recent prompt suggestion so the next
// request can exclude it.
type SetLastPromptID struct{ ID string }

// Reset discards the story and returns the wizard to the prompting step.
// Theme survives a reset.
type Reset struct{}

func (SetLoading) isAction()           {}
func (SetError) isAction()             {}
func (SetStory) isAction()             {}
func (SetStep) isAction()              {}
func (SetStorageID) isAction()         {}
func (UpdateChapterContent) isAction() {}
func (SetChapterGenerating) isAction() {}
func (SetChapterImage) isAction()      {}
func (SetTheme) isAction()             {}
func (SetLastPromptID) isAction()      {}
func (Reset) isAction()                {}

// reduce applies one action to a state and returns the next state. Pure:
// the input state is never mutated, and the story is cloned before any
// chapter-level change.
func reduce(s State, action Action) State {
	switch a := action.(type) {
	case SetLoading:
		s.Loading = a.Loading
		if a.Loading {
			s.Err = ""
		}
	case SetError:
		s.Err = a.Message
		s.Loading = false
	case SetStory:
		s.Story = a.Story.Clone()
		s.Loading = false
		s.Err = ""
	case SetStep:
		if a.Step.Valid() {
			s.Step = a.Step
		}
	case SetStorageID:
		if s.Story != nil {
			story := s.Story.Clone()
			story.StorageID = a.ID
			s.Story = story
		}
	case UpdateChapterContent:
		s.Story = withChapter(s.Story, a.ChapterID, func(ch *domain.Chapter) {
			ch.Content = a.Content
		})
	case SetChapterGenerating:
		s.Story = withChapter(s.Story, a.ChapterID, func(ch *domain.Chapter) {
			ch.IsGeneratingImage = a.Generating
		})
	case SetChapterImage:
		s.Story = withChapter(s.Story, a.ChapterID, func(ch *domain.Chapter) {
			ch.ImageURL = a.ImageURL
			if a.ImagePrompt != "" {
				ch.ImagePrompt = a.ImagePrompt
			}
			ch.IsGeneratingImage = false
		})
	case SetTheme:
		if a.Theme.Valid() {
			s.Theme = a.Theme
		}
	case SetLastPromptID:
		s.LastPromptID = a.ID
	case Reset:
		s.Story = nil
		s.Step = domain.StepPrompting
		s.Loading = false
		s.Err = ""
		s.LastPromptID = ""
	}
	return s
}

// withChapter clones the story and applies fn to the addressed chapter.
// Unknown chapter IDs and nil stories leave the state unchanged.
func withChapter(story *domain.Story, chapterID string, fn func(*domain.Chapter)) *domain.Story {
	if story == nil {
		return nil
	}
	clone := story.Clone()
	ch := clone.FindChapter(chapterID)
	if ch == nil {
		return story
	}
	fn(ch)
	return clone
}

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storybookapp/storybook-server/internal/domain"
)

func draftStory() *domain.Story {
	return &domain.Story{
		Title:    "Luna and the Crystal Dragon",
		Genre:    domain.GenreFantasy,
		Audience: domain.AudienceChildren,
		Chapters: []domain.Chapter{
			{ID: "ch-one", Title: "The Magical Discovery", Content: "<p>Luna found a crystal.</p>"},
			{ID: "ch-two", Title: "Meeting Sparkle", Content: "<p>A dragon appeared.</p>"},
		},
	}
}

func TestController_InitialState(t *testing.T) {
	c := NewController(nil)
	s := c.Snapshot()

	assert.Nil(t, s.Story)
	assert.Equal(t, domain.StepPrompting, s.Step)
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.False(t, s.Loading)
}

func TestDispatch_SetStory(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetLoading{Loading: true})

	s := c.Dispatch(SetStory{Story: draftStory()})

	require.NotNil(t, s.Story)
	assert.Equal(t, "Luna and the Crystal Dragon", s.Story.Title)
	assert.False(t, s.Loading, "story arrival clears loading")
	assert.Empty(t, s.Err)
}

func TestDispatch_SnapshotsAreIsolated(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetStory{Story: draftStory()})

	first := c.Snapshot()
	first.Story.Chapters[0].Content = "mutated by caller"

	second := c.Snapshot()
	assert.Equal(t, "<p>Luna found a crystal.</p>", second.Story.Chapters[0].Content)
}

func TestDispatch_UpdateChapterContent(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetStory{Story: draftStory()})

	s := c.Dispatch(UpdateChapterContent{ChapterID: "ch-two", Content: "<p>Edited.</p>"})

	assert.Equal(t, "<p>Edited.</p>", s.Story.Chapters[1].Content)
	assert.Equal(t, "<p>Luna found a crystal.</p>", s.Story.Chapters[0].Content)
}

func TestDispatch_UnknownChapterIsNoop(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetStory{Story: draftStory()})

	s := c.Dispatch(UpdateChapterContent{ChapterID: "ch-missing", Content: "x"})
	assert.Equal(t, "<p>Luna found a crystal.</p>", s.Story.Chapters[0].Content)
}

func TestDispatch_ChapterGeneratingFlagsAreIndependent(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetStory{Story: draftStory()})

	c.Dispatch(SetChapterGenerating{ChapterID: "ch-one", Generating: true})
	s := c.Dispatch(SetChapterGenerating{ChapterID: "ch-two", Generating: true})
	assert.True(t, s.Story.Chapters[0].IsGeneratingImage)
	assert.True(t, s.Story.Chapters[1].IsGeneratingImage)

	// Completing one chapter's image leaves the other still in flight.
	s = c.Dispatch(SetChapterImage{ChapterID: "ch-one", ImageURL: "data:image/png;base64,xx", ImagePrompt: "a crystal"})
	assert.False(t, s.Story.Chapters[0].IsGeneratingImage)
	assert.Equal(t, "data:image/png;base64,xx", s.Story.Chapters[0].ImageURL)
	assert.Equal(t, "a crystal", s.Story.Chapters[0].ImagePrompt)
	assert.True(t, s.Story.Chapters[1].IsGeneratingImage)
}

func TestDispatch_SetStorageID(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetStory{Story: draftStory()})

	s := c.Dispatch(SetStorageID{ID: "sty-abc"})
	assert.Equal(t, "sty-abc", s.Story.StorageID)
}

func TestDispatch_SetStepRejectsInvalid(t *testing.T) {
	c := NewController(nil)

	s := c.Dispatch(SetStep{Step: domain.Step(7)})
	assert.Equal(t, domain.StepPrompting, s.Step)

	s = c.Dispatch(SetStep{Step: domain.StepEditing})
	assert.Equal(t, domain.StepEditing, s.Step)
}

func TestDispatch_Reset(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetStory{Story: draftStory()})
	c.Dispatch(SetStep{Step: domain.StepPreviewing})
	c.Dispatch(SetTheme{Theme: domain.ThemeLight})
	c.Dispatch(SetError{Message: "boom"})

	s := c.Dispatch(Reset{})

	assert.Nil(t, s.Story)
	assert.Equal(t, domain.StepPrompting, s.Step)
	assert.Empty(t, s.Err)
	assert.Equal(t, domain.ThemeLight, s.Theme, "theme survives a reset")
}

func TestDispatch_SetError(t *testing.T) {
	c := NewController(nil)
	c.Dispatch(SetLoading{Loading: true})

	s := c.Dispatch(SetError{Message: "generation failed"})
	assert.Equal(t, "generation failed", s.Err)
	assert.False(t, s.Loading)
}

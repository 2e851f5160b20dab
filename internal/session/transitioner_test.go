package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storybookapp/storybook-server/internal/domain"
)

// recordingSaver counts saves and can block or fail on demand.
type recordingSaver struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
}

func (s *recordingSaver) SaveStory(ctx context.Context, story *domain.Story) (string, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		<-release
	}
	if s.err != nil {
		return "", s.err
	}
	return "sty-saved", nil
}

func (s *recordingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestTransitionTo_SameStepIsNoop(t *testing.T) {
	ctrl := NewController(nil)
	ctrl.Dispatch(SetStep{Step: domain.StepEditing})
	saver := &recordingSaver{}
	tr := NewTransitionerInstant(ctrl, saver, nil)

	applied := tr.TransitionTo(context.Background(), domain.StepEditing)

	assert.False(t, applied)
	assert.Zero(t, saver.count(), "no save on a same-step request")
	assert.False(t, tr.Busy())
}

func TestTransitionTo_ForwardSavesBeforeStepChange(t *testing.T) {
	ctrl := NewController(nil)
	ctrl.Dispatch(SetStory{Story: draftStory()})
	ctrl.Dispatch(SetStep{Step: domain.StepEditing})
	saver := &recordingSaver{}
	tr := NewTransitionerInstant(ctrl, saver, nil)

	applied := tr.TransitionTo(context.Background(), domain.StepPreviewing)

	require.True(t, applied)
	assert.Equal(t, 1, saver.count())
	assert.Equal(t, domain.StepPreviewing, ctrl.Step())
	assert.Equal(t, "sty-saved", ctrl.CurrentStory().StorageID, "assigned storage ID merges back")
}

func TestTransitionTo_BackwardDoesNotSave(t *testing.T) {
	ctrl := NewController(nil)
	ctrl.Dispatch(SetStory{Story: draftStory()})
	ctrl.Dispatch(SetStep{Step: domain.StepPreviewing})
	saver := &recordingSaver{}
	tr := NewTransitionerInstant(ctrl, saver, nil)

	applied := tr.TransitionTo(context.Background(), domain.StepEditing)

	require.True(t, applied)
	assert.Zero(t, saver.count())
	assert.Equal(t, domain.StepEditing, ctrl.Step())
}

func TestTransitionTo_NoStoryNoSave(t *testing.T) {
	ctrl := NewController(nil)
	saver := &recordingSaver{}
	tr := NewTransitionerInstant(ctrl, saver, nil)

	require.True(t, tr.TransitionTo(context.Background(), domain.StepEditing))
	assert.Zero(t, saver.count())
}

func TestTransitionTo_SaveFailureStillTransitions(t *testing.T) {
	ctrl := NewController(nil)
	ctrl.Dispatch(SetStory{Story: draftStory()})
	ctrl.Dispatch(SetStep{Step: domain.StepEditing})
	saver := &recordingSaver{err: errors.New("disk full")}
	tr := NewTransitionerInstant(ctrl, saver, nil)

	applied := tr.TransitionTo(context.Background(), domain.StepPreviewing)

	require.True(t, applied)
	assert.Equal(t, domain.StepPreviewing, ctrl.Step())
	assert.Empty(t, ctrl.CurrentStory().StorageID, "failed save assigns nothing")
}

func TestTransitionTo_DropsConcurrentRequests(t *testing.T) {
	ctrl := NewController(nil)
	ctrl.Dispatch(SetStory{Story: draftStory()})
	ctrl.Dispatch(SetStep{Step: domain.StepEditing})

	saver := &recordingSaver{release: make(chan struct{})}
	tr := NewTransitionerInstant(ctrl, saver, nil)

	done := make(chan bool)
	go func() {
		done <- tr.TransitionTo(context.Background(), domain.StepPreviewing)
	}()

	// Wait for the first transition to enter the save.
	require.Eventually(t, func() bool { return saver.count() == 1 }, time.Second, time.Millisecond)
	require.True(t, tr.Busy())

	// Second request while busy is dropped, not queued.
	assert.False(t, tr.TransitionTo(context.Background(), domain.StepPreviewing))

	close(saver.release)
	assert.True(t, <-done)
	assert.Equal(t, 1, saver.count(), "exactly one save despite two requests")
	assert.Equal(t, domain.StepPreviewing, ctrl.Step())
	assert.False(t, tr.Busy())
}

func TestTransitionTo_InvalidStep(t *testing.T) {
	ctrl := NewController(nil)
	tr := NewTransitionerInstant(ctrl, &recordingSaver{}, nil)

	assert.False(t, tr.TransitionTo(context.Background(), domain.Step(0)))
	assert.False(t, tr.TransitionTo(context.Background(), domain.Step(4)))
}

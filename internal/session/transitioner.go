package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/storybookapp/storybook-server/internal/domain"
)

// Saver is the slice of the story repository the transitioner needs for the
// auto-save checkpoint.
type Saver interface {
	SaveStory(ctx context.Context, story *domain.Story) (string, error)
}

// Transitioner serializes wizard-step changes. At most one transition is in
// flight at a time; a second request while busy is dropped, not queued.
// Forward transitions with a loaded story attempt an auto-save first, and a
// save failure is logged and swallowed so navigation never hangs on storage.
type Transitioner struct {
	busy   atomic.Bool
	ctrl   *Controller
	saver  Saver
	logger *slog.Logger

	// Settle delays mirror the UI's transition animation timing: a short
	// pause before the step applies and another before busy clears.
	preDelay  time.Duration
	postDelay time.Duration
}

// NewTransitioner creates a transitioner with the standard settle timing.
func NewTransitioner(ctrl *Controller, saver Saver, logger *slog.Logger) *Transitioner {
	return &Transitioner{
		ctrl:      ctrl,
		saver:     saver,
		logger:    logger,
		preDelay:  200 * time.Millisecond,
		postDelay: 300 * time.Millisecond,
	}
}

// NewTransitionerInstant creates a transitioner without settle delays.
func NewTransitionerInstant(ctrl *Controller, saver Saver, logger *slog.Logger) *Transitioner {
	return &Transitioner{ctrl: ctrl, saver: saver, logger: logger}
}

// Busy reports whether a transition is currently in flight.
func (t *Transitioner) Busy() bool {
	return t.busy.Load()
}

// TransitionTo moves the wizard to target. Returns true if the step change
// was applied, false if the request was dropped (invalid target, already at
// target, or another transition in flight). Same-step requests never touch
// the busy flag and never trigger a save.
func (t *Transitioner) TransitionTo(ctx context.Context, target domain.Step) bool {
	if !target.Valid() {
		return false
	}
	if t.ctrl.Step() == target {
		return false
	}
	if !t.busy.CompareAndSwap(false, true) {
		return false
	}
	defer t.busy.Store(false)

	// Re-read under the busy guard; another transition may have landed
	// between the early check and the CAS.
	current := t.ctrl.Step()
	if current == target {
		return false
	}

	if target.ForwardOf(current) {
		if story := t.ctrl.CurrentStory(); story != nil {
			storageID, err := t.saver.SaveStory(ctx, story)
			if err != nil {
				// Best effort: the transition continues regardless.
				if t.logger != nil {
					t.logger.Warn("auto-save before step change failed",
						"from", current.String(),
						"to", target.String(),
						"error", err,
					)
				}
			} else {
				t.ctrl.Dispatch(SetStorageID{ID: storageID})
			}
		}
	}

	t.sleep(ctx, t.preDelay)
	t.ctrl.Dispatch(SetStep{Step: target})
	t.sleep(ctx, t.postDelay)

	if t.logger != nil {
		t.logger.Info("wizard step changed",
			"from", current.String(),
			"to", target.String(),
		)
	}
	return true
}

func (t *Transitioner) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

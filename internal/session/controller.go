package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
)

// Default interaction timing constants, matching the reference behavior.
const (
	defaultConfirmDelay = 2 * time.Second
	defaultTapThreshold = 7
	defaultTapWindow    = 900 * time.Millisecond
)

// Ledger bundles the service operations the controller drives.
type Ledger interface {
	AppendEvent(ctx context.Context, name string, delta model.Delta, story string) (model.EventResult, error)
	ListScores(ctx context.Context) ([]model.PersonScore, error)
	History(ctx context.Context, name string) (model.Person, []model.Event, error)
	ResetPerson(ctx context.Context, name string) error
	ResetAll(ctx context.Context) error
	Roster() []string
}

// Liveness is the boolean reachability signal consumed before submitting.
type Liveness interface {
	Online() bool
	Check(ctx context.Context) bool
}

// Presenter receives everything the presentation layer needs to render.
// Implementations must not call back into the Controller from these hooks.
type Presenter interface {
	ScreenChanged(s Screen)
	ShowScores(scores []model.PersonScore)
	ShowHistory(p model.Person, events []model.Event)
	ShowConfirmation(delta model.Delta)
	ShowError(msg string)
	RevealAdmin(roster []string)
	ShowAck(msg string)
}

// Controller owns one session's state and serializes all actions against it.
// Actions may arrive from UI callbacks and from the confirm timer, so a
// mutex guards the single-owner state.
type Controller struct {
	mu    sync.Mutex
	state State

	ledger    Ledger
	live      Liveness
	presenter Presenter

	confirmDelay time.Duration
	confirmTimer *time.Timer

	tapCount     int
	tapDeadline  time.Time
	tapThreshold int
	tapWindow    time.Duration

	pendingReset *resetRequest

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithConfirmDelay sets how long the confirmation splash is shown.
func WithConfirmDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.confirmDelay = d
		}
	}
}

// WithTapThreshold sets how many rapid activations unlock the admin panel.
func WithTapThreshold(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.tapThreshold = n
		}
	}
}

// WithTapWindow sets the debounce window for the unlock gesture.
func WithTapWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tapWindow = d
		}
	}
}

// WithNowFunc overrides the clock used for the tap debounce. For tests.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a Controller starting on the idle screen.
func NewController(ledger Ledger, live Liveness, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		state:        State{Screen: ScreenIdle},
		ledger:       ledger,
		live:         live,
		presenter:    presenter,
		confirmDelay: defaultConfirmDelay,
		tapThreshold: defaultTapThreshold,
		tapWindow:    defaultTapWindow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("session")
	}
	return c
}

// Current returns a copy of the session state.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// apply runs a pure navigation action under the lock and notifies the
// presenter on a screen change.
func (c *Controller) apply(a Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(a)
}

func (c *Controller) applyLocked(a Action) error {
	next, err := transition(c.state, a)
	if err != nil {
		return err
	}
	changed := next.Screen != c.state.Screen
	c.state = next
	if changed {
		c.presenter.ScreenChanged(next.Screen)
	}
	return nil
}

// PickSign starts a submission with the given delta sign.
func (c *Controller) PickSign(delta model.Delta) error {
	return c.apply(Action{Kind: ActionPickSign, Delta: delta})
}

// PickEntity targets the pending submission at a person.
func (c *Controller) PickEntity(name string) error {
	return c.apply(Action{Kind: ActionPickEntity, Name: name})
}

// EditStory replaces the draft justification text.
func (c *Controller) EditStory(text string) error {
	return c.apply(Action{Kind: ActionEditStory, Text: text})
}

// Back navigates one step backwards.
func (c *Controller) Back() error {
	return c.apply(Action{Kind: ActionBack})
}

// Home returns to idle from anywhere, discarding any draft.
func (c *Controller) Home() error {
	return c.apply(Action{Kind: ActionHome})
}

// RequestScores loads the score listing and moves to the scores screen.
// On a read failure the session stays idle and the error is surfaced.
func (c *Controller) RequestScores(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Screen != ScreenIdle {
		c.mu.Unlock()
		return ErrIllegalAction
	}
	c.mu.Unlock()

	scores, err := c.ledger.ListScores(ctx)
	if err != nil {
		c.presenter.ShowError("could not load scores: " + err.Error())
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.applyLocked(Action{Kind: ActionRequestScores}); err != nil {
		return err
	}
	c.presenter.ShowScores(scores)
	return nil
}

// SelectPerson loads one person's history from the scores screen.
func (c *Controller) SelectPerson(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.state.Screen != ScreenViewingScores {
		c.mu.Unlock()
		return ErrIllegalAction
	}
	c.mu.Unlock()

	p, events, err := c.ledger.History(ctx, name)
	if err != nil {
		c.presenter.ShowError("could not load history: " + err.Error())
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.applyLocked(Action{Kind: ActionSelectPerson, Name: name}); err != nil {
		return err
	}
	c.presenter.ShowHistory(p, events)
	return nil
}

// Submit attempts to record the pending event. An empty draft is a no-op so
// the user can keep typing. A failure of any kind returns the session to
// composing with the draft intact, so no typed work is lost. A submit while
// one is already in flight is ignored.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Screen == ScreenSubmitting {
		// Re-entrant submit; the first one is still in flight.
		c.mu.Unlock()
		return nil
	}
	if c.state.Screen != ScreenComposing {
		c.mu.Unlock()
		return ErrIllegalAction
	}
	if !c.state.PendingDelta.Valid() || c.state.PendingName == "" {
		c.mu.Unlock()
		return ErrIllegalAction
	}

	story := c.state.Draft
	if strings.TrimSpace(story) == "" {
		// Stay composing; the presenter refocuses the input.
		c.mu.Unlock()
		return nil
	}

	name := c.state.PendingName
	delta := c.state.PendingDelta
	c.state.Screen = ScreenSubmitting
	c.presenter.ScreenChanged(ScreenSubmitting)
	c.mu.Unlock()

	if !c.live.Check(ctx) {
		c.failSubmit("submit failed: store is offline")
		return nil
	}

	if _, err := c.ledger.AppendEvent(ctx, name, delta, story); err != nil {
		c.failSubmit("submit failed: " + err.Error())
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.clearPending()
	c.state.Screen = ScreenConfirming
	c.presenter.ShowConfirmation(delta)
	c.presenter.ScreenChanged(ScreenConfirming)

	// Automatic, unconditional return to idle.
	c.confirmTimer = time.AfterFunc(c.confirmDelay, c.finishConfirm)
	return nil
}

func (c *Controller) finishConfirm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Screen != ScreenConfirming {
		return
	}
	c.state.Screen = ScreenIdle
	c.presenter.ScreenChanged(ScreenIdle)
}

// failSubmit returns to composing, draft preserved, and surfaces the error.
func (c *Controller) failSubmit(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Screen = ScreenComposing
	c.presenter.ShowError(msg)
	c.presenter.ScreenChanged(ScreenComposing)
}

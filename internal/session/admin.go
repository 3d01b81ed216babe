package session

import (
	"context"

	"github.com/okian/tally/pkg/logger"
)

// ResetScope names what a staged reset will clear.
type ResetScope int

const (
	ResetScopePerson ResetScope = iota
	ResetScopeAll
)

type resetRequest struct {
	scope ResetScope
	name  string // ResetScopePerson only
}

// TapAdminControl registers one activation of the admin unlock control.
// Reaching the threshold within the debounce window reveals the admin panel
// exactly once and resets the counter; a pause past the window resets the
// counter silently. This is a usability gesture, not an authorization check.
func (c *Controller) TapAdminControl() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.After(c.tapDeadline) {
		c.tapCount = 0
	}
	c.tapCount++
	c.tapDeadline = now.Add(c.tapWindow)

	if c.tapCount >= c.tapThreshold {
		c.tapCount = 0
		c.presenter.RevealAdmin(c.ledger.Roster())
	}
}

// RequestResetPerson stages a destructive single-person reset. Nothing is
// deleted until ConfirmReset.
func (c *Controller) RequestResetPerson(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		return ErrIllegalAction
	}
	c.pendingReset = &resetRequest{scope: ResetScopePerson, name: name}
	return nil
}

// RequestResetAll stages a reset of the entire roster.
func (c *Controller) RequestResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingReset = &resetRequest{scope: ResetScopeAll}
}

// CancelReset drops the staged reset without contacting the store.
func (c *Controller) CancelReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingReset == nil {
		return ErrNoPendingReset
	}
	c.pendingReset = nil
	return nil
}

// ConfirmReset executes the staged reset. The store error, if any, is
// surfaced verbatim; there is no retry and no undo.
func (c *Controller) ConfirmReset(ctx context.Context) error {
	c.mu.Lock()
	req := c.pendingReset
	c.pendingReset = nil
	c.mu.Unlock()

	if req == nil {
		return ErrNoPendingReset
	}

	var err error
	switch req.scope {
	case ResetScopePerson:
		err = c.ledger.ResetPerson(ctx, req.name)
	case ResetScopeAll:
		err = c.ledger.ResetAll(ctx)
	}
	if err != nil {
		c.presenter.ShowError("reset failed: " + err.Error())
		return nil
	}

	c.logger.Info(ctx, "reset complete",
		logger.String("name", req.name),
		logger.Bool("all", req.scope == ResetScopeAll),
	)
	c.presenter.ShowAck("reset complete")
	return nil
}

// PendingReset reports whether a reset is staged, for presenters that render
// the confirmation dialog.
func (c *Controller) PendingReset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingReset != nil
}

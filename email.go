package reolink

import (
	"context"

	"github.com/juju/errors"
)

// EmailEnabled reports whether email alerts are enabled, per the last state
// fetch.
func (c *Client) EmailEnabled() bool {
	return c.state.emailEnabled != nil && *c.state.emailEnabled
}

// SetEmail enables or disables email alerts.
func (c *Client) SetEmail(ctx context.Context, enable bool) error {
	return errors.Trace(c.setSnapshotField(ctx, cmdSetEmail, c.state.email, boolInt(enable), "Email", "schedule", "enable"))
}

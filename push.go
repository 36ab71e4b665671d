package reolink

import (
	"context"

	"github.com/juju/errors"
)

// PushEnabled reports whether push notifications are enabled, per the last
// state fetch.
func (c *Client) PushEnabled() bool {
	return c.state.pushEnabled != nil && *c.state.pushEnabled
}

// SetPush enables or disables push notifications, picking the wire variant
// the firmware supports.
func (c *Client) SetPush(ctx context.Context, enable bool) error {
	value := boolInt(enable)
	if c.apiVersion[settingPush] >= 1 {
		return errors.Trace(c.setSnapshotField(ctx, cmdSetPushV20, c.state.push, value, "Push", "enable"))
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetPush, c.state.push, value, "Push", "schedule", "enable"))
}

package reolink

import (
	"context"

	"github.com/juju/errors"
)

// MotionDetectionEnabled reports whether motion detection is enabled, per
// the last state fetch.
func (c *Client) MotionDetectionEnabled() bool {
	return c.state.motionDetection != nil && *c.state.motionDetection
}

// SetMotionDetection enables or disables motion detection.
func (c *Client) SetMotionDetection(ctx context.Context, enable bool) error {
	return errors.Trace(c.setSnapshotField(ctx, cmdSetAlarm, c.state.alarm, boolInt(enable), "Alarm", "enable"))
}

// SensitivityPresets returns the raw per-preset sensitivity values from the
// last state fetch, keyed by preset id.
func (c *Client) SensitivityPresets() map[int]int {
	return c.state.sensitivityPresets
}

// SetSensitivity sets the motion detection sensitivity. The camera's own UI
// shows an inverted scale, so the raw field is stored as 51 minus the
// requested value. When preset ids are given only those presets are changed;
// otherwise the value is applied to every preset entry.
func (c *Client) SetSensitivity(ctx context.Context, value int, presets ...int) error {
	snap := c.state.alarm
	if snap == nil {
		return errors.NotFoundf("cached settings for %s (fetch states first)", cmdSetAlarm)
	}

	raw, ok := dig(snap, "Alarm", "sens")
	if !ok {
		return errors.NotFoundf("sensitivity presets in cached alarm settings")
	}
	entries, ok := cloneValue(raw).([]interface{})
	if !ok {
		return errors.NotValidf("cached sensitivity presets")
	}

	wanted := make(map[int]bool, len(presets))
	for _, id := range presets {
		wanted[id] = true
	}

	for _, entry := range entries {
		preset, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := asInt(preset["id"])
		if len(wanted) == 0 || wanted[id] {
			preset["sensitivity"] = 51 - value
		}
	}

	command := Command{
		Cmd:    cmdSetAlarm,
		Action: 1,
		Param: map[string]interface{}{
			"Alarm": map[string]interface{}{
				"channel": c.channel,
				"type":    "md",
				"sens":    entries,
			},
		},
	}
	return errors.Trace(c.sendSetting(ctx, command))
}

package reolink

import (
	"context"

	"github.com/juju/errors"
)

// AudioEnabled reports whether audio recording is enabled in the encoder
// settings, per the last state fetch.
func (c *Client) AudioEnabled() bool {
	return c.state.audioEnabled != nil && *c.state.audioEnabled
}

// SetAudio enables or disables audio recording in the encoder settings.
func (c *Client) SetAudio(ctx context.Context, enable bool) error {
	return errors.Trace(c.setSnapshotField(ctx, cmdSetEnc, c.state.enc, boolInt(enable), "Enc", "audio"))
}

// AudioAlarmEnabled reports whether the audible (siren) alarm is enabled,
// per the last state fetch.
func (c *Client) AudioAlarmEnabled() bool {
	return c.state.audioAlarmEnabled != nil && *c.state.audioAlarmEnabled
}

// SetAudioAlarm enables or disables the audible alarm, picking the wire
// variant the firmware supports.
func (c *Client) SetAudioAlarm(ctx context.Context, enable bool) error {
	value := boolInt(enable)
	if c.apiVersion[settingAudioAlarm] >= 1 {
		return errors.Trace(c.setSnapshotField(ctx, cmdSetAudioV20, c.state.audioAlarm, value, "Audio", "enable"))
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetAudioAlarm, c.state.audioAlarm, value, "Audio", "schedule", "enable"))
}

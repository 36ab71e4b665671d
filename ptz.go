package reolink

import (
	"context"

	"github.com/juju/errors"
)

// PtzCommand is a PTZ motion verb.
type PtzCommand string

// The fixed verb vocabulary the firmware accepts. Movement verbs take an
// optional speed; ToPos additionally needs a preset id; Auto and Stop take
// nothing.
const (
	PtzLeft      PtzCommand = "Left"
	PtzLeftUp    PtzCommand = "LeftUp"
	PtzLeftDown  PtzCommand = "LeftDown"
	PtzRight     PtzCommand = "Right"
	PtzRightUp   PtzCommand = "RightUp"
	PtzRightDown PtzCommand = "RightDown"
	PtzUp        PtzCommand = "Up"
	PtzDown      PtzCommand = "Down"
	PtzZoomInc   PtzCommand = "ZoomInc"
	PtzZoomDec   PtzCommand = "ZoomDec"
	PtzFocusInc  PtzCommand = "FocusInc"
	PtzFocusDec  PtzCommand = "FocusDec"
	PtzToPos     PtzCommand = "ToPos"
	PtzAuto      PtzCommand = "Auto"
	PtzStop      PtzCommand = "Stop"
)

var ptzSpeedCommands = map[PtzCommand]bool{
	PtzLeft: true, PtzLeftUp: true, PtzLeftDown: true,
	PtzRight: true, PtzRightUp: true, PtzRightDown: true,
	PtzUp: true, PtzDown: true,
	PtzZoomInc: true, PtzZoomDec: true,
	PtzFocusInc: true, PtzFocusDec: true,
	PtzToPos: true,
}

type ptzParams struct {
	speed  int
	preset int
}

// PtzOption sets an optional PTZ command parameter.
type PtzOption func(p *ptzParams)

// PtzSpeed sets the movement speed.
func PtzSpeed(speed int) PtzOption {
	return func(p *ptzParams) { p.speed = speed }
}

// PtzPresetID selects the target preset for ToPos.
func PtzPresetID(id int) PtzOption {
	return func(p *ptzParams) { p.preset = id }
}

// PTZControl sends one PTZ motion command. The verb vocabulary and its
// per-verb parameter rules are validated before any network call.
func (c *Client) PTZControl(ctx context.Context, command PtzCommand, opts ...PtzOption) error {
	var p ptzParams
	for _, opt := range opts {
		opt(&p)
	}

	switch command {
	case PtzAuto, PtzStop:
		if p.speed != 0 || p.preset != 0 {
			return errors.NotValidf("%s with speed or preset", command)
		}
	case PtzToPos:
		if p.preset == 0 {
			return errors.NotValidf("%s without a preset id", command)
		}
	default:
		if !ptzSpeedCommands[command] {
			return errors.NotValidf("PTZ command %q", command)
		}
		if p.preset != 0 {
			return errors.NotValidf("%s with a preset id", command)
		}
	}

	param := map[string]interface{}{
		"channel": c.channel,
		"op":      string(command),
	}
	if p.speed != 0 {
		param["speed"] = p.speed
	}
	if p.preset != 0 {
		param["id"] = p.preset
	}

	return errors.Trace(c.applySetting(ctx, Command{Cmd: cmdPtzCtrl, Action: 0, Param: param}))
}

// PTZPresets returns the enabled PTZ presets from the last state fetch,
// keyed by preset name.
func (c *Client) PTZPresets() map[string]int {
	return c.state.ptzPresets
}

// MoveToPreset drives the camera to a stored preset position.
func (c *Client) MoveToPreset(ctx context.Context, id int, opts ...PtzOption) error {
	opts = append(opts, PtzPresetID(id))
	return errors.Trace(c.PTZControl(ctx, PtzToPos, opts...))
}

// SetPTZPreset stores the current position under the given preset id.
func (c *Client) SetPTZPreset(ctx context.Context, id int, name string) error {
	command := Command{
		Cmd:    cmdSetPtzPreset,
		Action: 0,
		Param: map[string]interface{}{
			"PtzPreset": map[string]interface{}{
				"channel": c.channel,
				"enable":  1,
				"id":      id,
				"name":    name,
			},
		},
	}
	return errors.Trace(c.sendSetting(ctx, command))
}

// AutoFocusDisabled reports whether autofocus is disabled, per the last
// state fetch.
func (c *Client) AutoFocusDisabled() bool {
	return c.state.autoFocusDisabled != nil && *c.state.autoFocusDisabled
}

// SetAutoFocus enables or disables autofocus. The wire field is inverted:
// it stores "disable".
func (c *Client) SetAutoFocus(ctx context.Context, enable bool) error {
	return errors.Trace(c.setSnapshotField(ctx, cmdSetAutoFocus, c.state.autoFocus, boolInt(!enable), "AutoFocus", "disable"))
}

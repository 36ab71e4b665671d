package reolink

import (
	"context"

	"github.com/juju/errors"
)

// Spotlight night-mode values accepted by the firmware.
const (
	SpotlightModeOff      = 0
	SpotlightModeAuto     = 1
	SpotlightModeSchedule = 3
)

// IRLightsEnabled reports whether the IR lights are set to Auto, per the
// last state fetch.
func (c *Client) IRLightsEnabled() bool {
	return c.state.irEnabled != nil && *c.state.irEnabled
}

// SetIRLights switches the IR lights between Auto and Off.
func (c *Client) SetIRLights(ctx context.Context, enable bool) error {
	state := "Off"
	if enable {
		state = "Auto"
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetIrLights, c.state.irLights, state, "IrLights", "state"))
}

// SpotlightEnabled reports whether the white-led spotlight is on, per the
// last state fetch.
func (c *Client) SpotlightEnabled() bool {
	return c.state.whiteLedEnabled != nil && *c.state.whiteLedEnabled
}

// SetWhiteLed configures the white-led spotlight. Brightness must be within
// [0,100] and mode one of the SpotlightMode values; invalid input is
// rejected before any network call.
func (c *Client) SetWhiteLed(ctx context.Context, enable bool, brightness, mode int) error {
	if brightness < 0 || brightness > 100 {
		return errors.NotValidf("spotlight brightness %d", brightness)
	}
	switch mode {
	case SpotlightModeOff, SpotlightModeAuto, SpotlightModeSchedule:
	default:
		return errors.NotValidf("spotlight mode %d", mode)
	}

	snap := c.state.whiteLed
	if snap == nil {
		return errors.NotFoundf("cached settings for %s (fetch states first)", cmdSetWhiteLed)
	}

	param := cloneSnapshot(snap)
	for field, value := range map[string]interface{}{
		"state":  boolInt(enable),
		"bright": brightness,
		"mode":   mode,
	} {
		if !setNested(param, value, "WhiteLed", field) {
			return errors.NotFoundf("field WhiteLed.%s in cached settings", field)
		}
	}

	return errors.Trace(c.sendSetting(ctx, Command{Cmd: cmdSetWhiteLed, Action: 0, Param: param}))
}

// SetSpotlight turns the spotlight fully on or off at maximum brightness.
func (c *Client) SetSpotlight(ctx context.Context, enable bool) error {
	return errors.Trace(c.SetWhiteLed(ctx, enable, 100, SpotlightModeAuto))
}

// SetSpotlightLightingSchedule sets the time window in which the spotlight
// operates. Note the argument order: the end time comes first, matching the
// firmware's object layout. The schedule may wrap past midnight only when
// the end hour is before noon and the start hour is after 16:00.
//
// TODO: confirm with product whether schedules like start 23:00 / end 01:00,
// which this rule rejects, are legitimate on some firmwares.
func (c *Client) SetSpotlightLightingSchedule(ctx context.Context, endHour, endMin, startHour, startMin int) error {
	if !validLightingSchedule(endHour, endMin, startHour, startMin) {
		return errors.NotValidf("lighting schedule end %02d:%02d start %02d:%02d", endHour, endMin, startHour, startMin)
	}

	snap := c.state.whiteLed
	if snap == nil {
		return errors.NotFoundf("cached settings for %s (fetch states first)", cmdSetWhiteLed)
	}

	param := cloneSnapshot(snap)
	for field, value := range map[string]interface{}{
		"EndHour":   endHour,
		"EndMin":    endMin,
		"StartHour": startHour,
		"StartMin":  startMin,
	} {
		if !setNested(param, value, "WhiteLed", "LightingSchedule", field) {
			return errors.NotFoundf("field WhiteLed.LightingSchedule.%s in cached settings", field)
		}
	}

	return errors.Trace(c.sendSetting(ctx, Command{Cmd: cmdSetWhiteLed, Action: 0, Param: param}))
}

func validLightingSchedule(endHour, endMin, startHour, startMin int) bool {
	if endHour < 0 || endHour > 23 || startHour < 0 || startHour > 23 {
		return false
	}
	if endMin < 0 || endMin > 59 || startMin < 0 || startMin > 59 {
		return false
	}
	// Day-wraparound allowance observed in the firmware's own client.
	if endHour < 12 && startHour > 16 {
		return true
	}
	if endHour != startHour {
		return endHour > startHour
	}
	return endMin > startMin
}

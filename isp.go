package reolink

import (
	"context"

	"github.com/juju/errors"
)

// DayNightMode selects the camera's day/night imaging behavior.
type DayNightMode string

const (
	DayNightAuto       DayNightMode = "Auto"
	DayNightColor      DayNightMode = "Color"
	DayNightBlackWhite DayNightMode = "Black&White"
)

// BacklightMode selects the ISP backlight compensation behavior.
type BacklightMode string

const (
	BacklightControl      BacklightMode = "BackLightControl"
	BacklightDynamicRange BacklightMode = "DynamicRangeControl"
	BacklightOff          BacklightMode = "Off"
)

// DayNightState returns the day/night mode from the last state fetch, or the
// empty string when unknown.
func (c *Client) DayNightState() DayNightMode {
	if c.state.dayNightMode == nil {
		return ""
	}
	return DayNightMode(*c.state.dayNightMode)
}

// SetDayNight sets the day/night mode. Out-of-domain values are rejected
// before any network call.
func (c *Client) SetDayNight(ctx context.Context, mode DayNightMode) error {
	switch mode {
	case DayNightAuto, DayNightColor, DayNightBlackWhite:
	default:
		return errors.NotValidf("day/night mode %q", mode)
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetIsp, c.state.isp, string(mode), "Isp", "dayNight"))
}

// SetBacklight sets the backlight compensation mode. Out-of-domain values
// are rejected before any network call.
func (c *Client) SetBacklight(ctx context.Context, mode BacklightMode) error {
	switch mode {
	case BacklightControl, BacklightDynamicRange, BacklightOff:
	default:
		return errors.NotValidf("backlight mode %q", mode)
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetIsp, c.state.isp, string(mode), "Isp", "backLight"))
}

package reolink

import (
	"context"
	"time"

	"github.com/juju/errors"
)

// NTPEnabled reports whether NTP synchronization is enabled, per the last
// state fetch.
func (c *Client) NTPEnabled() bool {
	return c.state.ntpEnabled != nil && *c.state.ntpEnabled
}

// SetNTP enables or disables NTP time synchronization.
func (c *Client) SetNTP(ctx context.Context, enable bool) error {
	return errors.Trace(c.setSnapshotField(ctx, cmdSetNtp, c.state.ntp, boolInt(enable), "Ntp", "enable"))
}

// DeviceTime returns the camera's clock from the last state fetch. The
// second return is false when the time object has not been fetched.
func (c *Client) DeviceTime() (time.Time, bool) {
	snap := c.state.timeInfo
	if snap == nil {
		return time.Time{}, false
	}

	year, okYear := digInt(snap, "Time", "year")
	mon, okMon := digInt(snap, "Time", "mon")
	day, okDay := digInt(snap, "Time", "day")
	hour, _ := digInt(snap, "Time", "hour")
	min, _ := digInt(snap, "Time", "min")
	sec, _ := digInt(snap, "Time", "sec")
	if !okYear || !okMon || !okDay {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(mon), day, hour, min, sec, 0, time.Local), true
}

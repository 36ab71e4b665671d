package reolink

import (
	"context"

	"github.com/juju/errors"
)

// OSD positions accepted by the firmware.
var osdPositions = []string{
	"Upper Left",
	"Top Center",
	"Upper Right",
	"Lower Left",
	"Bottom Center",
	"Lower Right",
}

// OSDPosition returns the camera-name overlay position from the last state
// fetch, or the empty string when unknown.
func (c *Client) OSDPosition() string {
	pos, _ := digString(c.state.osd, "Osd", "osdChannel", "pos")
	return pos
}

// SetOSDPosition moves the camera-name overlay to one of the six named
// positions. Unknown positions are rejected before any network call.
func (c *Client) SetOSDPosition(ctx context.Context, position string) error {
	if !validOSDPosition(position) {
		return errors.NotValidf("OSD position %q", position)
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetOsd, c.state.osd, position, "Osd", "osdChannel", "pos"))
}

func validOSDPosition(position string) bool {
	for _, known := range osdPositions {
		if position == known {
			return true
		}
	}
	return false
}

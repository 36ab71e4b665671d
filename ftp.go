package reolink

import (
	"context"

	"github.com/juju/errors"
)

// FTPEnabled reports whether FTP upload is enabled, per the last state fetch.
func (c *Client) FTPEnabled() bool {
	return c.state.ftpEnabled != nil && *c.state.ftpEnabled
}

// SetFTP enables or disables FTP upload. Legacy firmwares nest the enable
// flag under the schedule object; V20 firmwares put it at the top level.
func (c *Client) SetFTP(ctx context.Context, enable bool) error {
	value := boolInt(enable)
	if c.apiVersion[settingFtp] >= 1 {
		return errors.Trace(c.setSnapshotField(ctx, cmdSetFtpV20, c.state.ftp, value, "Ftp", "enable"))
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetFtp, c.state.ftp, value, "Ftp", "schedule", "enable"))
}

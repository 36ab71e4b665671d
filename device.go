package reolink

// Device profile accessors. Everything here reads the snapshot taken by the
// last GetSettings call; zero values mean the settings have not been fetched.

// Serial returns the device serial number.
func (c *Client) Serial() string {
	serial, _ := digString(c.state.deviceInfo, "DevInfo", "serial")
	return serial
}

// Name returns the camera name.
func (c *Client) Name() string {
	name, _ := digString(c.state.deviceInfo, "DevInfo", "name")
	return name
}

// Model returns the camera model.
func (c *Client) Model() string {
	model, _ := digString(c.state.deviceInfo, "DevInfo", "model")
	return model
}

// FirmwareVersion returns the parsed firmware version. Cameras whose version
// string does not match the expected pattern report the unknown sentinel.
func (c *Client) FirmwareVersion() SoftwareVersion {
	raw, ok := digString(c.state.deviceInfo, "DevInfo", "firmVer")
	if !ok {
		return SoftwareVersion{Unknown: true}
	}
	version, err := ParseSoftwareVersion(raw)
	if err != nil {
		c.logger.Debug().Str("firmVer", raw).Msg("unparseable firmware version")
	}
	return version
}

// MACAddress returns the camera MAC address.
func (c *Client) MACAddress() string {
	mac, _ := digString(c.state.localLink, "LocalLink", "mac")
	return mac
}

// ChannelCount returns the number of channels the device reports. An NVR has
// more than one; a standalone camera reports one.
func (c *Client) ChannelCount() int {
	count, _ := digInt(c.state.deviceInfo, "DevInfo", "channelNum")
	return count
}

// IsNVR reports whether the device is an NVR rather than a single camera.
func (c *Client) IsNVR() bool {
	if exactType, ok := digString(c.state.deviceInfo, "DevInfo", "exactType"); ok && exactType == "NVR" {
		return true
	}
	return c.ChannelCount() > 1
}

// RTSPPort returns the camera's RTSP port.
func (c *Client) RTSPPort() int { return c.state.rtspPort }

// RTMPPort returns the camera's RTMP port.
func (c *Client) RTMPPort() int { return c.state.rtmpPort }

// ONVIFPort returns the port serving the ONVIF event service, used by the
// subscription package.
func (c *Client) ONVIFPort() int { return c.state.onvifPort }

// HddInfo returns the raw HDD/SD-card info object from the last fetch.
func (c *Client) HddInfo() map[string]interface{} {
	return c.state.hddInfo
}

// Users returns the camera's user list.
func (c *Client) Users() []UserInfo {
	return c.state.users
}

// IsAdmin reports whether the configured user has the admin level. Only
// admin users may change camera settings; for anyone else the setters will
// be rejected by the firmware.
func (c *Client) IsAdmin() bool {
	for _, user := range c.state.users {
		if user.UserName == c.username {
			if user.Level == "admin" {
				return true
			}
			c.logger.Warn().
				Str("user", c.username).
				Str("level", user.Level).
				Msg("user cannot change camera settings")
			return false
		}
	}
	return false
}

// PTZSupported reports whether the ability table grants PTZ control.
func (c *Client) PTZSupported() bool { return c.ptzSupport }

// MotionDetected returns the motion state from the last GetMotionState poll.
func (c *Client) MotionDetected() bool { return c.state.motionState }

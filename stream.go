package reolink

import (
	"context"
	"fmt"
	"net/url"

	"github.com/juju/errors"
)

// streamAuthQuery builds the credential part of an RTMP URL query, using
// either the session token or the plain credentials depending on the
// configured stream authentication method.
func (c *Client) streamAuthQuery() string {
	if c.streamAuth == StreamAuthCredentials {
		return fmt.Sprintf("user=%s&password=%s",
			url.QueryEscape(c.username), url.QueryEscape(c.password))
	}
	return "token=" + url.QueryEscape(c.token)
}

// StreamSource constructs the live stream URL for the configured protocol,
// stream and channel. Ports come from the last settings fetch; a login is
// performed when the token auth method needs a fresh token.
func (c *Client) StreamSource(ctx context.Context) (string, error) {
	if err := c.ensureLoggedIn(ctx); err != nil {
		return "", errors.Trace(err)
	}

	switch c.protocol {
	case "rtsp":
		if c.state.rtspPort == 0 {
			return "", errors.NotFoundf("RTSP port (fetch settings first)")
		}
		// Credentials go percent-encoded into the URL authority; the channel
		// path segment is one-based and zero-padded.
		return fmt.Sprintf("rtsp://%s:%s@%s:%d/h264Preview_%02d_%s",
			url.QueryEscape(c.username), url.QueryEscape(c.password),
			c.host, c.state.rtspPort, c.channel+1, c.stream), nil

	case "rtmp":
		if c.state.rtmpPort == 0 {
			return "", errors.NotFoundf("RTMP port (fetch settings first)")
		}
		return fmt.Sprintf("rtmp://%s:%d/bcs/channel%d_%s.bcs?channel=%d&stream=0&%s",
			c.host, c.state.rtmpPort, c.channel, c.stream, c.channel, c.streamAuthQuery()), nil
	}

	return "", errors.NotValidf("streaming protocol %q", c.protocol)
}

// VODSource constructs the playback URL for a recorded file found through
// Search. Playback is RTMP only; the filename is path-escaped.
func (c *Client) VODSource(ctx context.Context, filename string) (string, error) {
	if err := c.ensureLoggedIn(ctx); err != nil {
		return "", errors.Trace(err)
	}
	if c.state.rtmpPort == 0 {
		return "", errors.NotFoundf("RTMP port (fetch settings first)")
	}

	return fmt.Sprintf("rtmp://%s:%d/vod/%s?channel=%d&stream=0&%s",
		c.host, c.state.rtmpPort, url.PathEscape(filename), c.channel, c.streamAuthQuery()), nil
}

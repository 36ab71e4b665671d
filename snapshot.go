package reolink

import (
	"context"
	"net/url"
	"strconv"

	"github.com/juju/errors"
)

// Snapshot fetches a still image from the configured channel. The response
// must declare image/jpeg. A small HTML error body instead means either bad
// credentials (unauthorized error) or a request-shape problem
// (InvalidContentTypeError); it is never silently returned as image data.
func (c *Client) Snapshot(ctx context.Context) ([]byte, error) {
	params := url.Values{
		"cmd":     []string{cmdSnap},
		"channel": []string{strconv.Itoa(c.channel)},
	}

	data, err := c.send(ctx, nil, params, "image/jpeg")
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(data) == 0 {
		return nil, errors.NotFoundf("snapshot from host %s", c.host)
	}
	return data, nil
}

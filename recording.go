package reolink

import (
	"context"
	"time"

	"github.com/juju/errors"
)

// RecordingEnabled reports whether recording is enabled, per the last state
// fetch.
func (c *Client) RecordingEnabled() bool {
	return c.state.recordingEnabled != nil && *c.state.recordingEnabled
}

// SetRecording enables or disables recording, picking the wire variant the
// firmware supports.
func (c *Client) SetRecording(ctx context.Context, enable bool) error {
	value := boolInt(enable)
	if c.apiVersion[settingRec] >= 1 {
		return errors.Trace(c.setSnapshotField(ctx, cmdSetRecV20, c.state.rec, value, "Rec", "enable"))
	}
	return errors.Trace(c.setSnapshotField(ctx, cmdSetRec, c.state.rec, value, "Rec", "schedule", "enable"))
}

// SearchTime is the wire form of a timestamp in Search requests/responses.
type SearchTime struct {
	Year int `json:"year"`
	Mon  int `json:"mon"`
	Day  int `json:"day"`
	Hour int `json:"hour"`
	Min  int `json:"min"`
	Sec  int `json:"sec"`
}

func newSearchTime(t time.Time) SearchTime {
	return SearchTime{
		Year: t.Year(),
		Mon:  int(t.Month()),
		Day:  t.Day(),
		Hour: t.Hour(),
		Min:  t.Minute(),
		Sec:  t.Second(),
	}
}

// Time converts the wire form back to a time.Time in the given location.
func (s SearchTime) Time(loc *time.Location) time.Time {
	return time.Date(s.Year, time.Month(s.Mon), s.Day, s.Hour, s.Min, s.Sec, 0, loc)
}

// SearchStatus is one month of the recording calendar: table is a string of
// day flags for the month.
type SearchStatus struct {
	Mon   int    `json:"mon"`
	Table string `json:"table"`
	Year  int    `json:"year"`
}

// SearchFile is one recorded VOD file.
type SearchFile struct {
	StartTime SearchTime `json:"StartTime"`
	EndTime   SearchTime `json:"EndTime"`
	FrameRate int        `json:"frameRate"`
	Height    int        `json:"height"`
	Width     int        `json:"width"`
	Name      string     `json:"name"`
	Size      int        `json:"size"`
	Type      string     `json:"type"`
}

// Search queries the recordings between start and end on the configured
// stream. With onlyStatus, just the recording calendar is returned and the
// file list stays empty.
func (c *Client) Search(ctx context.Context, start, end time.Time, onlyStatus bool) ([]SearchStatus, []SearchFile, error) {
	command := Command{
		Cmd:    cmdSearch,
		Action: 0,
		Param: map[string]interface{}{
			"Search": map[string]interface{}{
				"channel":    c.channel,
				"onlyStatus": boolInt(onlyStatus),
				"streamType": c.stream,
				"StartTime":  newSearchTime(start),
				"EndTime":    newSearchTime(end),
			},
		},
	}

	responses, err := c.command(ctx, []Command{command}, cmdParams(cmdSearch))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if len(responses) == 0 {
		return nil, nil, errors.Trace(&DecodeError{Host: c.host, Err: errors.New("empty response array")})
	}

	resp := &responses[0]
	if err := resp.Err(); err != nil {
		return nil, nil, errors.Trace(err)
	}

	var value struct {
		SearchResult struct {
			Status []SearchStatus `json:"Status"`
			File   []SearchFile   `json:"File"`
		} `json:"SearchResult"`
	}
	if err := resp.DecodeValue(&value); err != nil {
		return nil, nil, errors.Trace(err)
	}
	return value.SearchResult.Status, value.SearchResult.File, nil
}

package reolink

import (
	"bytes"
	"encoding/json"

	"github.com/juju/errors"
)

// Command names understood by the api.cgi endpoint. Commands suffixed V20
// are newer-firmware variants of the same logical setting, selected through
// the ability table.
const (
	cmdLogin        = "Login"
	cmdLogout       = "Logout"
	cmdSnap         = "Snap"
	cmdGetDevInfo   = "GetDevInfo"
	cmdGetHddInfo   = "GetHddInfo"
	cmdGetLocalLink = "GetLocalLink"
	cmdGetNetPort   = "GetNetPort"
	cmdGetUser      = "GetUser"
	cmdGetAbility   = "GetAbility"
	cmdGetMdState   = "GetMdState"
	cmdGetAiState   = "GetAiState"
	cmdSearch       = "Search"

	cmdGetFtp        = "GetFtp"
	cmdGetFtpV20     = "GetFtpV20"
	cmdSetFtp        = "SetFtp"
	cmdSetFtpV20     = "SetFtpV20"
	cmdGetEnc        = "GetEnc"
	cmdSetEnc        = "SetEnc"
	cmdGetEmail      = "GetEmail"
	cmdSetEmail      = "SetEmail"
	cmdGetIsp        = "GetIsp"
	cmdSetIsp        = "SetIsp"
	cmdGetIrLights   = "GetIrLights"
	cmdSetIrLights   = "SetIrLights"
	cmdGetWhiteLed   = "GetWhiteLed"
	cmdSetWhiteLed   = "SetWhiteLed"
	cmdGetRec        = "GetRec"
	cmdGetRecV20     = "GetRecV20"
	cmdSetRec        = "SetRec"
	cmdSetRecV20     = "SetRecV20"
	cmdGetAlarm      = "GetAlarm"
	cmdSetAlarm      = "SetAlarm"
	cmdGetAudioAlarm = "GetAudioAlarm"
	cmdGetAudioV20   = "GetAudioAlarmV20"
	cmdSetAudioAlarm = "SetAudioAlarm"
	cmdSetAudioV20   = "SetAudioAlarmV20"
	cmdGetPush       = "GetPush"
	cmdGetPushV20    = "GetPushV20"
	cmdSetPush       = "SetPush"
	cmdSetPushV20    = "SetPushV20"
	cmdGetOsd        = "GetOsd"
	cmdSetOsd        = "SetOsd"
	cmdGetNtp        = "GetNtp"
	cmdSetNtp        = "SetNtp"
	cmdGetTime       = "GetTime"
	cmdGetAutoFocus  = "GetAutoFocus"
	cmdSetAutoFocus  = "SetAutoFocus"
	cmdGetPtzPreset  = "GetPtzPreset"
	cmdSetPtzPreset  = "SetPtzPreset"
	cmdPtzCtrl       = "PtzCtrl"
)

// Command is one entry of the batched request array sent to api.cgi.
type Command struct {
	Cmd    string      `json:"cmd"`
	Action int         `json:"action"`
	Param  interface{} `json:"param"`
}

// Response is one entry of the response array. Value holds the raw
// command-specific payload; Error is populated instead when Code != 0.
type Response struct {
	Cmd   string          `json:"cmd"`
	Code  int             `json:"code"`
	Value json.RawMessage `json:"value,omitempty"`
	Error *ResponseDetail `json:"error,omitempty"`
}

// ResponseDetail carries the rspCode/detail pair the firmware attaches to
// both setter acknowledgements and command errors.
type ResponseDetail struct {
	RspCode int    `json:"rspCode"`
	Detail  string `json:"detail,omitempty"`
}

// Err returns the entry's application error, or nil when the command
// succeeded.
func (r *Response) Err() error {
	if r.Code == 0 {
		return nil
	}
	apiErr := &ApiError{Cmd: r.Cmd, Code: r.Code}
	if r.Error != nil {
		apiErr.Detail = r.Error.Detail
	}
	return apiErr
}

// DecodeValue unmarshals the entry's value payload into dest.
func (r *Response) DecodeValue(dest interface{}) error {
	if len(r.Value) == 0 {
		return errors.NotFoundf("value for %s", r.Cmd)
	}
	if err := json.Unmarshal(r.Value, dest); err != nil {
		return errors.Annotatef(err, "decoding %s value", r.Cmd)
	}
	return nil
}

// rspCode digs the setter acknowledgement code out of the value payload.
func (r *Response) rspCode() int {
	var ack struct {
		RspCode int `json:"rspCode"`
	}
	if err := json.Unmarshal(r.Value, &ack); err != nil {
		return 0
	}
	return ack.RspCode
}

// snapshotValue decodes the value payload into the generic map form used for
// setting snapshots. Setters echo the whole object back with one field
// patched, so every field the firmware sent must survive the round trip.
func (r *Response) snapshotValue() (settingSnapshot, error) {
	snap := settingSnapshot{}
	if err := r.DecodeValue(&snap); err != nil {
		return nil, errors.Trace(err)
	}
	return snap, nil
}

// encodeCommands serializes a command batch, preserving order.
func encodeCommands(commands []Command) ([]byte, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}

// decodeResponses parses a response body. Anything that is not a JSON array
// of response entries is a decode failure; the caller is expected to treat it
// as session-invalidating.
func decodeResponses(host string, body []byte) ([]Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &DecodeError{Host: host, Err: errors.New("body is not a JSON array")}
	}

	var responses []Response
	if err := json.Unmarshal(trimmed, &responses); err != nil {
		return nil, &DecodeError{Host: host, Err: err}
	}
	return responses, nil
}

// findResponse looks an entry up by command name. Single-command calls may
// read responses[0] directly, but batched calls must match by name because
// the firmware does not preserve order for every command kind.
func findResponse(responses []Response, cmd string) (*Response, bool) {
	for i := range responses {
		if responses[i].Cmd == cmd {
			return &responses[i], true
		}
	}
	return nil, false
}

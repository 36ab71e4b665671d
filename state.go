package reolink

import (
	"encoding/json"

	"github.com/juju/errors"
)

// settingSnapshot is the raw value object of one Get response, kept verbatim
// so setters can echo the whole object back with a single field patched. The
// firmware does not accept partial writes.
type settingSnapshot map[string]interface{}

// UserInfo is one entry of the camera's user list.
type UserInfo struct {
	UserName string `json:"userName"`
	Level    string `json:"level"`
}

// CameraState aggregates everything learned from settings and state fetches.
// It is owned by a single Client and replaced subset-wise on every fetch.
type CameraState struct {
	deviceInfo settingSnapshot
	hddInfo    settingSnapshot
	localLink  settingSnapshot
	netPort    settingSnapshot
	users      []UserInfo

	ftp        settingSnapshot
	enc        settingSnapshot
	email      settingSnapshot
	isp        settingSnapshot
	irLights   settingSnapshot
	whiteLed   settingSnapshot
	rec        settingSnapshot
	alarm      settingSnapshot
	audioAlarm settingSnapshot
	push       settingSnapshot
	osd        settingSnapshot
	ntp        settingSnapshot
	timeInfo   settingSnapshot
	autoFocus  settingSnapshot
	ptzPreset  settingSnapshot

	motionState bool
	aiState     settingSnapshot

	ftpEnabled        *bool
	emailEnabled      *bool
	audioEnabled      *bool
	irEnabled         *bool
	recordingEnabled  *bool
	motionDetection   *bool
	whiteLedEnabled   *bool
	pushEnabled       *bool
	audioAlarmEnabled *bool
	autoFocusDisabled *bool
	ntpEnabled        *bool
	dayNightMode      *string

	rtspPort  int
	rtmpPort  int
	onvifPort int

	ptzPresets         map[string]int
	sensitivityPresets map[int]int
}

func newCameraState() *CameraState {
	return &CameraState{
		ptzPresets:         make(map[string]int),
		sensitivityPresets: make(map[int]int),
	}
}

// MappingWarning records a response entry that could not be mapped into the
// camera state. One bad entry never aborts mapping of the rest of a batch.
type MappingWarning struct {
	Cmd string
	Err error
}

// mapResponses merges a decoded response batch into the client's state.
// Entries with a non-zero code (typically "ability error" for unsupported
// commands) are skipped; mapping failures are collected as warnings.
func (c *Client) mapResponses(responses []Response) []MappingWarning {
	var warnings []MappingWarning
	for i := range responses {
		resp := &responses[i]
		if resp.Code != 0 {
			continue
		}
		if err := c.mergeResponse(resp); err != nil {
			warnings = append(warnings, MappingWarning{Cmd: resp.Cmd, Err: err})
		}
	}
	return warnings
}

func (c *Client) mergeResponse(resp *Response) error {
	s := c.state

	switch resp.Cmd {
	case cmdGetDevInfo:
		return assignSnapshot(resp, &s.deviceInfo)

	case cmdGetHddInfo:
		return assignSnapshot(resp, &s.hddInfo)

	case cmdGetLocalLink:
		return assignSnapshot(resp, &s.localLink)

	case cmdGetNetPort:
		snap, err := resp.snapshotValue()
		if err != nil {
			return errors.Trace(err)
		}
		s.netPort = snap
		s.rtspPort, _ = digInt(snap, "NetPort", "rtspPort")
		s.rtmpPort, _ = digInt(snap, "NetPort", "rtmpPort")
		s.onvifPort, _ = digInt(snap, "NetPort", "onvifPort")

	case cmdGetUser:
		var value struct {
			User []UserInfo `json:"User"`
		}
		if err := resp.DecodeValue(&value); err != nil {
			return errors.Trace(err)
		}
		s.users = value.User

	case cmdGetAbility:
		return errors.Trace(c.mergeAbilities(resp))

	case cmdGetFtp:
		return mergeSwitch(resp, &s.ftp, &s.ftpEnabled, "Ftp", "schedule", "enable")

	case cmdGetFtpV20:
		return mergeSwitch(resp, &s.ftp, &s.ftpEnabled, "Ftp", "enable")

	case cmdGetEnc:
		return mergeSwitch(resp, &s.enc, &s.audioEnabled, "Enc", "audio")

	case cmdGetEmail:
		return mergeSwitch(resp, &s.email, &s.emailEnabled, "Email", "schedule", "enable")

	case cmdGetIsp:
		snap, err := resp.snapshotValue()
		if err != nil {
			return errors.Trace(err)
		}
		s.isp = snap
		if mode, ok := digString(snap, "Isp", "dayNight"); ok {
			s.dayNightMode = &mode
		}

	case cmdGetIrLights:
		snap, err := resp.snapshotValue()
		if err != nil {
			return errors.Trace(err)
		}
		s.irLights = snap
		if state, ok := digString(snap, "IrLights", "state"); ok {
			enabled := state == "Auto"
			s.irEnabled = &enabled
		}

	case cmdGetWhiteLed:
		return mergeSwitch(resp, &s.whiteLed, &s.whiteLedEnabled, "WhiteLed", "state")

	case cmdGetRec:
		return mergeSwitch(resp, &s.rec, &s.recordingEnabled, "Rec", "schedule", "enable")

	case cmdGetRecV20:
		return mergeSwitch(resp, &s.rec, &s.recordingEnabled, "Rec", "enable")

	case cmdGetAlarm:
		snap, err := resp.snapshotValue()
		if err != nil {
			return errors.Trace(err)
		}
		s.alarm = snap
		if enable, ok := digInt(snap, "Alarm", "enable"); ok {
			enabled := enable == 1
			s.motionDetection = &enabled
		}
		s.sensitivityPresets = sensitivityPresets(snap)

	case cmdGetAudioAlarm:
		return mergeSwitch(resp, &s.audioAlarm, &s.audioAlarmEnabled, "Audio", "schedule", "enable")

	case cmdGetAudioV20:
		return mergeSwitch(resp, &s.audioAlarm, &s.audioAlarmEnabled, "Audio", "enable")

	case cmdGetPush:
		return mergeSwitch(resp, &s.push, &s.pushEnabled, "Push", "schedule", "enable")

	case cmdGetPushV20:
		return mergeSwitch(resp, &s.push, &s.pushEnabled, "Push", "enable")

	case cmdGetOsd:
		return assignSnapshot(resp, &s.osd)

	case cmdGetNtp:
		return mergeSwitch(resp, &s.ntp, &s.ntpEnabled, "Ntp", "enable")

	case cmdGetTime:
		return assignSnapshot(resp, &s.timeInfo)

	case cmdGetAutoFocus:
		return mergeSwitch(resp, &s.autoFocus, &s.autoFocusDisabled, "AutoFocus", "disable")

	case cmdGetPtzPreset:
		return errors.Trace(s.mergePtzPresets(resp))

	case cmdGetMdState:
		var value struct {
			State int `json:"state"`
		}
		if err := resp.DecodeValue(&value); err != nil {
			return errors.Trace(err)
		}
		s.motionState = value.State == 1

	case cmdGetAiState:
		return assignSnapshot(resp, &s.aiState)
	}

	return nil
}

func (s *CameraState) mergePtzPresets(resp *Response) error {
	snap, err := resp.snapshotValue()
	if err != nil {
		return errors.Trace(err)
	}
	s.ptzPreset = snap

	var value struct {
		PtzPreset []struct {
			Enable int    `json:"enable"`
			ID     int    `json:"id"`
			Name   string `json:"name"`
		} `json:"PtzPreset"`
	}
	if err := resp.DecodeValue(&value); err != nil {
		return errors.Trace(err)
	}

	presets := make(map[string]int)
	for _, preset := range value.PtzPreset {
		if preset.Enable == 1 {
			presets[preset.Name] = preset.ID
		}
	}
	s.ptzPresets = presets
	return nil
}

// mergeAbilities replaces the ability table from a GetAbility response. The
// table is never merged incrementally. PTZ support comes from the per-channel
// ptzCtrl permit flag.
func (c *Client) mergeAbilities(resp *Response) error {
	var value struct {
		Ability map[string]json.RawMessage `json:"Ability"`
	}
	if err := resp.DecodeValue(&value); err != nil {
		return errors.Trace(err)
	}

	type abilityEntry struct {
		Permit int `json:"permit"`
		Ver    int `json:"ver"`
	}

	abilities := make(map[string]int)
	c.ptzSupport = false

	for name, raw := range value.Ability {
		if name == "abilityChn" {
			var channels []map[string]abilityEntry
			if err := json.Unmarshal(raw, &channels); err != nil {
				return errors.Annotate(err, "decoding channel abilities")
			}
			for i, channel := range channels {
				for chnName, entry := range channel {
					if chnName == "ptzCtrl" && entry.Permit != 0 {
						c.ptzSupport = true
					}
					if i == c.channel {
						abilities[chnName] = entry.Ver
					}
				}
			}
			continue
		}

		var entry abilityEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		abilities[name] = entry.Ver
	}

	c.abilities = abilities
	c.computeAPIVersions()
	return nil
}

func assignSnapshot(resp *Response, dest *settingSnapshot) error {
	snap, err := resp.snapshotValue()
	if err != nil {
		return errors.Trace(err)
	}
	*dest = snap
	return nil
}

// mergeSwitch stores the raw snapshot and derives the boolean state from the
// numeric field at the given path.
func mergeSwitch(resp *Response, dest *settingSnapshot, state **bool, path ...string) error {
	snap, err := resp.snapshotValue()
	if err != nil {
		return errors.Trace(err)
	}
	*dest = snap

	enable, ok := digInt(snap, path...)
	if !ok {
		return errors.NotFoundf("field %v in %s value", path, resp.Cmd)
	}
	enabled := enable == 1
	*state = &enabled
	return nil
}

func sensitivityPresets(snap settingSnapshot) map[int]int {
	presets := make(map[int]int)
	raw, ok := dig(snap, "Alarm", "sens")
	if !ok {
		return presets
	}
	entries, ok := raw.([]interface{})
	if !ok {
		return presets
	}
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id, okID := asInt(m["id"])
		sens, okSens := asInt(m["sensitivity"])
		if okID && okSens {
			presets[id] = sens
		}
	}
	return presets
}

// dig walks nested JSON-decoded maps.
func dig(m map[string]interface{}, keys ...string) (interface{}, bool) {
	var current interface{} = m
	for _, key := range keys {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func digInt(m map[string]interface{}, keys ...string) (int, bool) {
	value, ok := dig(m, keys...)
	if !ok {
		return 0, false
	}
	return asInt(value)
}

func digString(m map[string]interface{}, keys ...string) (string, bool) {
	value, ok := dig(m, keys...)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// setNested patches one field inside a JSON-decoded map, creating nothing:
// the path must already exist in the snapshot being patched.
func setNested(m map[string]interface{}, value interface{}, keys ...string) bool {
	if len(keys) == 0 {
		return false
	}
	var current interface{} = m
	for _, key := range keys[:len(keys)-1] {
		node, ok := current.(map[string]interface{})
		if !ok {
			return false
		}
		current, ok = node[key]
		if !ok {
			return false
		}
	}
	node, ok := current.(map[string]interface{})
	if !ok {
		return false
	}
	node[keys[len(keys)-1]] = value
	return true
}

// cloneSnapshot deep-copies a snapshot so a patched setter payload never
// mutates the cached state.
func cloneSnapshot(snap settingSnapshot) settingSnapshot {
	if snap == nil {
		return nil
	}
	clone := make(settingSnapshot, len(snap))
	for key, value := range snap {
		clone[key] = cloneValue(value)
	}
	return clone
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		clone := make(map[string]interface{}, len(v))
		for key, inner := range v {
			clone[key] = cloneValue(inner)
		}
		return clone
	case []interface{}:
		clone := make([]interface{}, len(v))
		for i, inner := range v {
			clone[i] = cloneValue(inner)
		}
		return clone
	default:
		return v
	}
}

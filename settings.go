package reolink

import (
	"context"
	"strings"

	"github.com/juju/errors"
)

// Logical settings that exist in two firmware-era wire formats.
const (
	settingFtp        = "Ftp"
	settingRec        = "Rec"
	settingPush       = "Push"
	settingAudioAlarm = "AudioAlarm"
)

// abilityVer returns the version integer the ability table reports for name,
// or 0 when the ability is absent.
func (c *Client) abilityVer(name string) int {
	return c.abilities[name]
}

// computeAPIVersions derives the wire-variant choice for each versioned
// setting from the freshly fetched ability table. Ability flags are not fully
// trusted: the choice is corroborated by the round-trip probe in GetStates,
// which downgrades a setting whose V20 command turns out not to exist.
func (c *Client) computeAPIVersions() {
	schedV20 := c.abilityVer("scheduleVersion") >= 1

	c.apiVersion[settingFtp] = v20flag(schedV20 || c.abilityVer("supportFtpEnable") > 0)
	c.apiVersion[settingRec] = v20flag(schedV20 || c.abilityVer("supportRecordEnable") > 0)
	c.apiVersion[settingPush] = v20flag(schedV20 || c.abilityVer("push") > 1)
	c.apiVersion[settingAudioAlarm] = v20flag(schedV20 || c.abilityVer("supportAudioAlarm") > 0)
}

func v20flag(v20 bool) int {
	if v20 {
		return 1
	}
	return 0
}

// versionedGet returns the get command name for a versioned setting,
// defaulting to the legacy variant.
func (c *Client) versionedGet(setting string) string {
	if c.apiVersion[setting] >= 1 {
		return "Get" + setting + "V20"
	}
	return "Get" + setting
}

// versionedSet returns the set command name for a versioned setting.
func (c *Client) versionedSet(setting string) string {
	if c.apiVersion[setting] >= 1 {
		return "Set" + setting + "V20"
	}
	return "Set" + setting
}

// getCommand builds the request entry for a get command, with the parameter
// shape each command expects.
func (c *Client) getCommand(cmd string) (Command, bool) {
	channelParam := map[string]interface{}{"channel": c.channel}

	switch cmd {
	case cmdGetAlarm:
		return Command{Cmd: cmd, Action: 1, Param: map[string]interface{}{
			"Alarm": map[string]interface{}{"channel": c.channel, "type": "md"},
		}}, true

	case cmdGetHddInfo:
		return Command{Cmd: cmd, Action: 1, Param: map[string]interface{}{}}, true

	case cmdGetAbility:
		return Command{Cmd: cmd, Action: 1, Param: map[string]interface{}{
			"User": map[string]interface{}{"userName": c.username},
		}}, true

	case cmdGetMdState, cmdGetAiState:
		return Command{Cmd: cmd, Action: 0, Param: channelParam}, true

	case cmdGetDevInfo, cmdGetLocalLink, cmdGetNetPort, cmdGetUser,
		cmdGetFtp, cmdGetFtpV20, cmdGetEnc, cmdGetEmail, cmdGetIsp,
		cmdGetIrLights, cmdGetWhiteLed, cmdGetRec, cmdGetRecV20,
		cmdGetAudioAlarm, cmdGetAudioV20, cmdGetPush, cmdGetPushV20,
		cmdGetOsd, cmdGetNtp, cmdGetTime, cmdGetAutoFocus, cmdGetPtzPreset:
		return Command{Cmd: cmd, Action: 1, Param: channelParam}, true
	}

	return Command{}, false
}

// statesCommandNames is the full state-fetch batch, with the wire variant of
// each versioned setting chosen through the ability table.
func (c *Client) statesCommandNames() []string {
	return []string{
		c.versionedGet(settingFtp),
		cmdGetEnc,
		cmdGetEmail,
		cmdGetIsp,
		cmdGetIrLights,
		cmdGetWhiteLed,
		c.versionedGet(settingRec),
		cmdGetPtzPreset,
		cmdGetAlarm,
		c.versionedGet(settingAudioAlarm),
		c.versionedGet(settingPush),
		cmdGetOsd,
		cmdGetNtp,
		cmdGetTime,
		cmdGetAutoFocus,
	}
}

// GetStates fetches the per-setting state objects and merges them into the
// camera state. When only is given, the batch is restricted to those get
// commands (a V20 variant matches its legacy name). V20 commands the ability
// table promised but the firmware rejects are downgraded to the legacy
// variant and re-fetched within the same call; the downgrade is sticky for
// this client.
func (c *Client) GetStates(ctx context.Context, only ...string) error {
	names := c.statesCommandNames()
	if len(only) > 0 {
		names = filterCommandNames(names, only)
	}

	batch := make([]Command, 0, len(names))
	for _, name := range names {
		command, ok := c.getCommand(name)
		if !ok {
			return errors.NotFoundf("get command %s", name)
		}
		batch = append(batch, command)
	}

	responses, err := c.command(ctx, batch, nil)
	if err != nil {
		return errors.Trace(err)
	}

	c.logWarnings(c.mapResponses(responses))

	retry := c.downgradeFailedV20(responses)
	if len(retry) == 0 {
		return nil
	}

	responses, err = c.command(ctx, retry, nil)
	if err != nil {
		return errors.Trace(err)
	}
	c.logWarnings(c.mapResponses(responses))
	return nil
}

// downgradeFailedV20 inspects a batch for rejected V20 gets, flips the
// affected settings back to the legacy variant and returns the legacy
// commands to re-fetch.
func (c *Client) downgradeFailedV20(responses []Response) []Command {
	var retry []Command
	for i := range responses {
		resp := &responses[i]
		if resp.Code == 0 || !strings.HasSuffix(resp.Cmd, "V20") {
			continue
		}

		setting := strings.TrimSuffix(strings.TrimPrefix(resp.Cmd, "Get"), "V20")
		if c.apiVersion[setting] == 0 {
			continue
		}

		c.logger.Debug().Str("cmd", resp.Cmd).Msg("V20 command rejected, falling back to legacy variant")
		c.apiVersion[setting] = 0
		if command, ok := c.getCommand("Get" + setting); ok {
			retry = append(retry, command)
		}
	}
	return retry
}

// GetSettings fetches the device identity, network and capability objects.
// It replaces the ability table and recomputes the wire-variant choices, so
// call it before GetStates on a fresh connection (and again after a firmware
// update to re-run the variant probe).
func (c *Client) GetSettings(ctx context.Context) error {
	names := []string{
		cmdGetDevInfo,
		cmdGetLocalLink,
		cmdGetNetPort,
		cmdGetUser,
		cmdGetHddInfo,
		cmdGetAbility,
	}

	batch := make([]Command, 0, len(names))
	for _, name := range names {
		command, _ := c.getCommand(name)
		batch = append(batch, command)
	}

	responses, err := c.command(ctx, batch, nil)
	if err != nil {
		return errors.Trace(err)
	}

	c.logWarnings(c.mapResponses(responses))
	return nil
}

// GetMotionState polls the motion detection state.
func (c *Client) GetMotionState(ctx context.Context) (bool, error) {
	command, _ := c.getCommand(cmdGetMdState)

	responses, err := c.command(ctx, []Command{command}, cmdParams(cmdGetMdState))
	if err != nil {
		c.state.motionState = false
		return false, errors.Trace(err)
	}

	c.logWarnings(c.mapResponses(responses))
	return c.state.motionState, nil
}

// GetAIState fetches the AI detection state object (person/vehicle/pet on
// firmwares that support it) and returns the per-type alarm states.
func (c *Client) GetAIState(ctx context.Context) (map[string]bool, error) {
	command, _ := c.getCommand(cmdGetAiState)

	responses, err := c.command(ctx, []Command{command}, cmdParams(cmdGetAiState))
	if err != nil {
		return nil, errors.Trace(err)
	}

	c.logWarnings(c.mapResponses(responses))

	states := make(map[string]bool)
	for name, raw := range c.state.aiState {
		detection, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if support, ok := asInt(detection["support"]); ok && support == 0 {
			continue
		}
		if alarm, ok := asInt(detection["alarm_state"]); ok {
			states[name] = alarm == 1
		}
	}
	return states, nil
}

// Capabilities lists the switch capabilities the fetched state supports.
func (c *Client) Capabilities() []string {
	s := c.state
	var caps []string

	if s.ftpEnabled != nil {
		caps = append(caps, "ftp")
	}
	if s.irEnabled != nil {
		caps = append(caps, "irLights")
	}
	if s.recordingEnabled != nil {
		caps = append(caps, "recording")
	}
	if s.motionDetection != nil {
		caps = append(caps, "motionDetection")
	}
	if s.dayNightMode != nil {
		caps = append(caps, "dayNight")
	}
	if s.emailEnabled != nil {
		caps = append(caps, "email")
	}
	if s.audioEnabled != nil {
		caps = append(caps, "audio")
	}
	if s.pushEnabled != nil {
		caps = append(caps, "push")
	}
	if s.audioAlarmEnabled != nil {
		caps = append(caps, "audioAlarm")
	}
	if s.whiteLedEnabled != nil {
		caps = append(caps, "spotlight")
	}
	if s.autoFocusDisabled != nil {
		caps = append(caps, "autoFocus")
	}
	if c.ptzSupport {
		caps = append(caps, "ptzControl")
	}
	if len(s.ptzPresets) != 0 {
		caps = append(caps, "ptzPresets")
	}
	if len(s.sensitivityPresets) != 0 {
		caps = append(caps, "sensitivityPresets")
	}
	return caps
}

func (c *Client) logWarnings(warnings []MappingWarning) {
	for _, warning := range warnings {
		c.logger.Warn().Str("cmd", warning.Cmd).Err(warning.Err).Msg("response mapping failed")
	}
}

// filterCommandNames keeps the batch entries whose logical name matches one
// of the requested names, so asking for GetFtp also keeps GetFtpV20.
func filterCommandNames(names, only []string) []string {
	var filtered []string
	for _, name := range names {
		base := strings.TrimSuffix(name, "V20")
		for _, want := range only {
			if name == want || base == strings.TrimSuffix(want, "V20") {
				filtered = append(filtered, name)
				break
			}
		}
	}
	return filtered
}

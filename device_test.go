package reolink

import (
	"context"
	"testing"
	"time"
)

func TestDeviceProfileAccessors(t *testing.T) {
	cam := newFakeCamera(t)
	cam.stub(cmdGetDevInfo, `{"DevInfo":{"name":"Front Door","model":"RLC-511W","serial":"00000000065536","firmVer":"v3.0.0.136_20121102","channelNum":1,"exactType":"IPC"}}`)
	cam.stub(cmdGetLocalLink, `{"LocalLink":{"mac":"aa:bb:cc:dd:ee:ff"}}`)
	cam.stub(cmdGetNetPort, `{"NetPort":{"rtspPort":554,"rtmpPort":1935,"onvifPort":8000}}`)
	cam.stub(cmdGetUser, `{"User":[{"userName":"admin","level":"admin"},{"userName":"viewer","level":"guest"}]}`)
	cam.stub(cmdGetHddInfo, `{"HddInfo":[{"capacity":15181,"format":1,"id":0,"mount":1,"size":15181}]}`)
	cam.stub(cmdGetAbility, `{"Ability":{"scheduleVersion":{"ver":1,"permit":6}}}`)
	c := cam.client()

	if err := c.GetSettings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Name() != "Front Door" || c.Model() != "RLC-511W" {
		t.Errorf("identity not mapped: name=%q model=%q", c.Name(), c.Model())
	}
	if c.Serial() != "00000000065536" {
		t.Errorf("serial = %q", c.Serial())
	}
	if c.MACAddress() != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("mac = %q", c.MACAddress())
	}
	if c.IsNVR() {
		t.Error("single-channel IPC reported as NVR")
	}
	if c.RTSPPort() != 554 || c.RTMPPort() != 1935 || c.ONVIFPort() != 8000 {
		t.Errorf("ports not mapped: %d/%d/%d", c.RTSPPort(), c.RTMPPort(), c.ONVIFPort())
	}
	if !c.IsAdmin() {
		t.Error("admin user not recognized")
	}
	if len(c.Users()) != 2 {
		t.Errorf("got %d users, want 2", len(c.Users()))
	}

	version := c.FirmwareVersion()
	if version.Unknown || version.Major != 3 {
		t.Errorf("firmware version not parsed: %v", version)
	}
}

func TestIsNVRByChannelCount(t *testing.T) {
	c := newStateClient()
	c.state.deviceInfo = settingSnapshot{
		"DevInfo": map[string]interface{}{"channelNum": float64(8)},
	}
	if !c.IsNVR() {
		t.Error("multi-channel device not reported as NVR")
	}
}

func TestDeviceTime(t *testing.T) {
	c := newStateClient()

	if _, ok := c.DeviceTime(); ok {
		t.Fatal("device time reported before any fetch")
	}

	c.state.timeInfo = settingSnapshot{
		"Time": map[string]interface{}{
			"year": float64(2026), "mon": float64(8), "day": float64(28),
			"hour": float64(14), "min": float64(30), "sec": float64(5),
		},
	}

	got, ok := c.DeviceTime()
	if !ok {
		t.Fatal("device time not reported after fetch")
	}
	want := time.Date(2026, time.August, 28, 14, 30, 5, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSearch(t *testing.T) {
	cam := newFakeCamera(t)
	cam.stub(cmdSearch, `{"SearchResult":{
		"Status":[{"mon":12,"table":"0000000000000000000011100","year":2020}],
		"File":[{
			"StartTime":{"year":2020,"mon":12,"day":22,"hour":7,"min":59,"sec":39},
			"EndTime":{"year":2020,"mon":12,"day":22,"hour":8,"min":1,"sec":40},
			"frameRate":0,"height":480,"width":640,
			"name":"Mp4Record/2020-12-22/RecS02_20201222_075939_080140_6D28808_1A468F9.mp4",
			"size":27186866,"type":"sub"
		}],
		"channel":0
	}}`)
	c := cam.client()

	start := time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, time.December, 31, 23, 59, 59, 0, time.UTC)

	status, files, err := c.Search(context.Background(), start, end, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(status) != 1 || status[0].Year != 2020 || status[0].Mon != 12 {
		t.Errorf("unexpected status: %+v", status)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	file := files[0]
	if file.Size != 27186866 || file.Type != "sub" {
		t.Errorf("unexpected file: %+v", file)
	}
	if got := file.StartTime.Time(time.UTC); got.Hour() != 7 || got.Minute() != 59 {
		t.Errorf("start time not mapped: %v", got)
	}

	command, _ := cam.lastCommand(cmdSearch)
	search := command.Param.(map[string]interface{})["Search"].(map[string]interface{})
	if only, _ := asInt(search["onlyStatus"]); only != 0 {
		t.Errorf("onlyStatus = %v, want 0", search["onlyStatus"])
	}
	if search["streamType"] != DefaultStream {
		t.Errorf("streamType = %v, want %q", search["streamType"], DefaultStream)
	}
}

func TestSetOSDPositionValidation(t *testing.T) {
	cam := newFakeCamera(t)
	c := cam.client()

	if err := c.SetOSDPosition(context.Background(), "Middle"); err == nil {
		t.Fatal("expected rejection of unknown OSD position")
	}
	if len(cam.requests) != 0 {
		t.Fatal("invalid position reached the network")
	}
}

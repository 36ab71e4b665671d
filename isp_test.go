package reolink

import (
	"context"
	"testing"

	"github.com/juju/errors"
)

func TestSetDayNightValidation(t *testing.T) {
	cam := newFakeCamera(t)
	c := cam.client()

	if err := c.SetDayNight(context.Background(), "Greyscale"); !errors.IsNotValid(err) {
		t.Errorf("got %v, want not-valid error", err)
	}
	if err := c.SetBacklight(context.Background(), "Maximum"); !errors.IsNotValid(err) {
		t.Errorf("got %v, want not-valid error", err)
	}
	if len(cam.requests) != 0 {
		t.Fatal("invalid mode reached the network")
	}
}

func TestSetDayNight(t *testing.T) {
	cam := newFakeCamera(t)
	cam.stub(cmdSetIsp, `{"rspCode":200}`)
	cam.stub(cmdGetIsp, `{"Isp":{"dayNight":"Black&White","backLight":"Off"}}`)
	c := cam.client()
	c.state.isp = settingSnapshot{
		"Isp": map[string]interface{}{"dayNight": "Auto", "backLight": "Off"},
	}

	if err := c.SetDayNight(context.Background(), DayNightBlackWhite); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	command, _ := cam.lastCommand(cmdSetIsp)
	isp := command.Param.(map[string]interface{})["Isp"].(map[string]interface{})
	if isp["dayNight"] != "Black&White" {
		t.Errorf("dayNight = %v, want Black&White", isp["dayNight"])
	}
	if c.DayNightState() != DayNightBlackWhite {
		t.Errorf("state not refreshed, got %q", c.DayNightState())
	}
}

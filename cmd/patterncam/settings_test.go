package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tauraamui/patterncam/pkg/configdef"
	"github.com/tauraamui/patterncam/pkg/video/videobackend"
)

func TestSettingsFromConfig(t *testing.T) {
	is := is.New(t)
	sett := settingsFromConfig(configdef.Values{
		Device:          "/dev/video1",
		Backend:         "mock",
		ModelsDir:       "/models",
		DefaultModel:    "haarcascade_eye",
		FrameIntervalMS: 40,
		StopTimeoutMS:   1500,
	})

	is.Equal(sett.Title, "webcam")
	is.Equal(sett.Device, "/dev/video1")
	is.Equal(fmt.Sprintf("%T", sett.Backend), fmt.Sprintf("%T", videobackend.Mock()))
	is.Equal(sett.Models.Catalog().Dir(), "/models")
	is.Equal(sett.DefaultModel, "haarcascade_eye")
	is.Equal(sett.FrameInterval, 40*time.Millisecond)
	is.Equal(sett.StopTimeout, 1500*time.Millisecond)
}

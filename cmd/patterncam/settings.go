package main

import (
	"time"

	"github.com/tauraamui/patterncam/pkg/configdef"
	"github.com/tauraamui/patterncam/pkg/model"
	"github.com/tauraamui/patterncam/pkg/preview"
	"github.com/tauraamui/patterncam/pkg/video/videobackend"
)

func settingsFromConfig(values configdef.Values) preview.Settings {
	return preview.Settings{
		Title:         preview.DefaultTitle,
		Device:        values.Device,
		Backend:       videobackend.Resolve(values.Backend),
		Models:        model.NewCache(model.NewCatalog(values.ModelsDir)),
		DefaultModel:  values.DefaultModel,
		FrameInterval: time.Duration(values.FrameIntervalMS) * time.Millisecond,
		StopTimeout:   time.Duration(values.StopTimeoutMS) * time.Millisecond,
	}
}

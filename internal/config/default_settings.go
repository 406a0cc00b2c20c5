package config

import "github.com/tauraamui/patterncam/pkg/configdef"

type defaultSettingKey uint

const (
	DEVICE        defaultSettingKey = 0x0
	BACKEND       defaultSettingKey = 0x1
	MODELSDIR     defaultSettingKey = 0x2
	DEFAULTMODEL  defaultSettingKey = 0x3
	STOPTIMEOUTMS defaultSettingKey = 0x4
	DISPLAYWIDTH  defaultSettingKey = 0x5
	DISPLAYHEIGHT defaultSettingKey = 0x6
)

var defaultSettings = map[defaultSettingKey]interface{}{
	DEVICE:        "0",
	BACKEND:       "opencv",
	MODELSDIR:     "/usr/share/opencv4/haarcascades",
	DEFAULTMODEL:  "haarcascade_frontalface_default",
	STOPTIMEOUTMS: 2000,
	DISPLAYWIDTH:  720,
	DISPLAYHEIGHT: 480,
}

func defaultValues() configdef.Values {
	values := configdef.Values{}
	loadDefaults(&values)
	values.ModelsDir = defaultSettings[MODELSDIR].(string)
	return values
}

// loadDefaults fills in every optional field left out of the file.
func loadDefaults(values *configdef.Values) {
	if len(values.Device) == 0 {
		values.Device = defaultSettings[DEVICE].(string)
	}
	if len(values.Backend) == 0 {
		values.Backend = defaultSettings[BACKEND].(string)
	}
	if len(values.DefaultModel) == 0 {
		values.DefaultModel = defaultSettings[DEFAULTMODEL].(string)
	}
	if values.StopTimeoutMS == 0 {
		values.StopTimeoutMS = defaultSettings[STOPTIMEOUTMS].(int)
	}
	if values.DisplayWidth == 0 {
		values.DisplayWidth = defaultSettings[DISPLAYWIDTH].(int)
	}
	if values.DisplayHeight == 0 {
		values.DisplayHeight = defaultSettings[DISPLAYHEIGHT].(int)
	}
}

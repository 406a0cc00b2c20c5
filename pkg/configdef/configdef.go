package configdef

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/dealancer/validate.v2"
)

type Values struct {
	Debug           bool   `json:"debug"`
	Device          string `json:"device"`
	Backend         string `json:"backend" validate:"one_of=opencv,mock"`
	ModelsDir       string `json:"models_dir" validate:"empty=false"`
	DefaultModel    string `json:"default_model"`
	FrameIntervalMS int    `json:"frame_interval_ms" validate:"gte=0 & lte=1000"`
	StopTimeoutMS   int    `json:"stop_timeout_ms" validate:"gte=1 & lte=10000"`
	DisplayWidth    int    `json:"display_width" validate:"gte=1"`
	DisplayHeight   int    `json:"display_height" validate:"gte=1"`
}

// RunValidate checks the field tags first, then the cross field rules.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if strings.ContainsAny(v.DefaultModel, `/\`) {
		return fmt.Errorf(validationErrorHeader, errors.New("default model must be a model name, not a path"))
	}
	if len(strings.TrimSpace(v.Device)) == 0 {
		return fmt.Errorf(validationErrorHeader, errors.New("device must not be blank"))
	}
	return nil
}

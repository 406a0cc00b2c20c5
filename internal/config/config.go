package config

import (
	"github.com/spf13/afero"
	"github.com/tauraamui/patterncam/pkg/configdef"
)

const (
	vendorName     = "tacusci"
	appName        = "patterncam"
	configFileName = "config.json"
	configEnvVar   = "PATTERNCAM_CONFIG"
)

var fs afero.Fs = afero.NewOsFs()

func DefaultResolver() configdef.Resolver {
	return defaultCreateResolver{}
}

func DefaultCreator() configdef.Creator {
	return defaultCreateResolver{}
}

func DefaultCreateResolver() configdef.CreateResolver {
	return defaultCreateResolver{}
}

type defaultCreateResolver struct{}

func (d defaultCreateResolver) Resolve() (configdef.Values, error) {
	return load()
}

func (d defaultCreateResolver) Create() error {
	return create()
}

package config

import (
	"github.com/tauraamui/patterncam/internal/config"
	"github.com/tauraamui/patterncam/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}

package config

import (
	"github.com/tauraamui/patterncam/internal/config"
	"github.com/tauraamui/patterncam/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultResolver()
}

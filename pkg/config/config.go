package config

import (
	"github.com/tauraamui/patterncam/internal/config"
	"github.com/tauraamui/patterncam/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}

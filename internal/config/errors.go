package config

import "errors"

var (
	// ErrInvalidConfig marks a config that loaded but failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a YAML file, env or decode failure.
	ErrLoadConfig = errors.New("load config failed")
)

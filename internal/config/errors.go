package config

import "errors"

var (
	// ErrInvalidConfig marks a loaded configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file or environment layer that could not be read.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidMapping marks a configured gesture binding that does not
	// convert to a valid mapping. It is always joined with ErrInvalidConfig.
	ErrInvalidMapping = errors.New("invalid mapping")
)

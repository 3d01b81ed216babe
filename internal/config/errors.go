package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalid   = errors.New("invalid config")
	ErrFileLoad  = errors.New("load config file failed")
	ErrEnvLoad   = errors.New("load config env failed")
	ErrUnmarshal = errors.New("unmarshal config failed")
)

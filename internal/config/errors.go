package config

import "errors"

var (
	ErrUnknownStorage    = errors.New("unknown storage")
	ErrInvalidSessionTTL = errors.New("session ttl must be positive")
)

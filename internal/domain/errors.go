package domain

import "errors"

var (
	ErrUnknownSetting = errors.New("unknown setting field")
	ErrEmptyCatalog   = errors.New("model catalog is empty")
	ErrModelNotFound  = errors.New("model not found")
	ErrMediaTimeout   = errors.New("media processing timed out")
	ErrMediaFailed    = errors.New("media processing failed")
)

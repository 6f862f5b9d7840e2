package core

import "errors"

// Sentinel errors for each malformed/unsupported condition a container
// load can hit. The root package re-exports these under the same names
// so callers can match on them with errors.Is without reaching into
// internal packages.
var (
	ErrBadMagic               = errors.New("core: unrecognised magic")
	ErrBadFormat              = errors.New("core: header or file-info format field is out of range")
	ErrSizeMismatch           = errors.New("core: total size does not match input length")
	ErrUnsupportedCompression = errors.New("core: unsupported compression kind")
	ErrOutOfBounds            = errors.New("core: an offset or length lies outside the input")
)

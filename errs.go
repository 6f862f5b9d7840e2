package gr2

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opengr2/gr2/internal/core"
	"github.com/opengr2/gr2/internal/oodle"
	"github.com/opengr2/gr2/internal/types"
)

// Stage names one phase of the load pipeline an Error was raised in,
// matching the pipeline order from the package doc: magic
// classification, header, file info, sector table/decompression,
// Oodle-1, pointer fix-up, marshalling, and the type/element walk.
type Stage string

// The stages a Load can fail in.
const (
	StageMagic    Stage = "magic"
	StageHeader   Stage = "header"
	StageFileInfo Stage = "fileinfo"
	StageSector   Stage = "sector"
	StageOodle1   Stage = "oodle1"
	StageFixup    Stage = "fixup"
	StageMarshal  Stage = "marshal"
	StageTypeInfo Stage = "typeinfo"
	StageElement  Stage = "element"
)

// Error wraps a load failure with the pipeline stage it occurred in.
// Every exported entry point (Load, LoadOptions.Load, Open) returns
// errors wrapped this way, so a caller can errors.Is/errors.As against
// either the Stage or one of the sentinel errors below.
type Error struct {
	Stage Stage
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gr2: %s: %v", e.Stage, e.Cause)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

func wrapStage(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: classifyStage(err), Cause: err}
}

// classifyStage maps a pipeline error to the stage that produced it.
// internal/oodle and internal/types prefix their own error strings
// ("oodle1: ...", "types: ..."), fix-up and marshal failures are
// matched by those words in their messages, and everything else is
// distinguished by sentinel.
func classifyStage(err error) Stage {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "oodle1:"), strings.Contains(msg, "oodle:"):
		return StageOodle1
	case strings.Contains(msg, "types:"):
		return StageTypeInfo
	case strings.Contains(msg, "fix-up"):
		return StageFixup
	case strings.Contains(msg, "marshal"):
		return StageMarshal
	case errors.Is(err, core.ErrBadMagic):
		return StageMagic
	case errors.Is(err, core.ErrUnsupportedCompression):
		return StageSector
	case errors.Is(err, core.ErrSizeMismatch), errors.Is(err, core.ErrBadFormat):
		return StageFileInfo
	case errors.Is(err, core.ErrOutOfBounds):
		return StageSector
	default:
		return StageElement
	}
}

// Sentinel errors re-exported from internal/core and internal/types so
// callers can match load failures with errors.Is without importing
// internal packages.
var (
	ErrBadMagic               = core.ErrBadMagic
	ErrBadFormat              = core.ErrBadFormat
	ErrSizeMismatch           = core.ErrSizeMismatch
	ErrUnsupportedCompression = core.ErrUnsupportedCompression
	ErrOutOfBounds            = core.ErrOutOfBounds
	ErrInvalidArraySize       = types.ErrInvalidArraySize
	ErrBadTypeID              = types.ErrBadTypeID
	ErrImpossibleRange        = oodle.ErrImpossibleRange
)

package archive

import (
	"errors"

	"github.com/kittclouds/cortex/internal/graphstore"
	"github.com/kittclouds/cortex/internal/vectorstore"
)

// Re-exported at the facade boundary so callers never need to import the
// inner store packages just to compare errors with errors.Is.
var (
	ErrDimensionMismatch   = vectorstore.ErrDimensionMismatch
	ErrInvalidEntityFormat = graphstore.ErrInvalidEntityFormat
)

// ErrSovereigntyViolation is returned by AddThought when a USER-scoped
// thought's scope id disagrees with the caller's own user id — a write
// attempting to plant a memory in someone else's personal scope.
var ErrSovereigntyViolation = errors.New("archive: sovereignty violation")

package pointindex

import "errors"

var (
	// ErrExhausted is returned when an arena has no handle left to issue.
	ErrExhausted = errors.New("pointindex: arena handle space exhausted")
	// ErrStaleHandle is returned when a handle does not name a live element.
	ErrStaleHandle = errors.New("pointindex: stale handle")
	// ErrBucketFull is returned by a bucket insert at capacity. The tree
	// splits before retrying, so callers only see it from bucket-level code.
	ErrBucketFull = errors.New("pointindex: bucket full")
	// ErrSplitDepthExceeded is returned when an overflow cannot be resolved
	// within the configured maximum depth and the overflow policy rejects.
	ErrSplitDepthExceeded = errors.New("pointindex: split depth exceeded")
	ErrNotFound           = errors.New("pointindex: object not found")
	ErrOutOfBounds        = errors.New("pointindex: point outside indexed domain")
	ErrDuplicateID        = errors.New("pointindex: object already indexed")
)

var (
	ErrInvalidConfig = errors.New("pointindex: invalid config")
	// ErrCorrupt reports a broken structural invariant. It indicates a logic
	// bug in the index, not bad input.
	ErrCorrupt = errors.New("pointindex: index corrupt")
)

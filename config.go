package pointindex

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxDepth bounds how deep the tree may subdivide. Float32 midpoints
// stop separating distinct values long before this on realistic domains, so
// reaching it means the input is degenerate.
const DefaultMaxDepth = 48

// OverflowPolicy decides what happens when a leaf at MaxDepth is full.
type OverflowPolicy uint8

const (
	// OverflowAccept lets a leaf at MaxDepth exceed its nominal capacity.
	OverflowAccept OverflowPolicy = iota
	// OverflowReject fails the insert with ErrSplitDepthExceeded and leaves
	// the tree unchanged.
	OverflowReject
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowAccept:
		return "accept"
	case OverflowReject:
		return "reject"
	}
	return fmt.Sprintf("OverflowPolicy(%d)", uint8(p))
}

// Config holds tree tuning. Build one with DefaultConfig and Options.
type Config struct {
	Logger         *zap.Logger
	Events         *EventBus
	BucketCapacity int
	MaxDepth       int
	// ArenaLimit caps both the node and the bucket arena.
	ArenaLimit int
	// InitialCapacity pre-sizes the node and bucket arenas.
	InitialCapacity int
	Overflow        OverflowPolicy
	// Shrink merges a node back into one bucket when a removal empties one of
	// two sibling buckets.
	Shrink bool
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		BucketCapacity:  DefaultBucketCapacity,
		MaxDepth:        DefaultMaxDepth,
		ArenaLimit:      MaxHandles,
		InitialCapacity: 64,
		Overflow:        OverflowAccept,
		Shrink:          true,
	}
}

// Validate checks that the configuration can build a working tree.
func (c Config) Validate() error {
	if c.BucketCapacity < 1 || c.BucketCapacity > MaxHandles {
		return fmt.Errorf("%w: bucket capacity %d", ErrInvalidConfig, c.BucketCapacity)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.ArenaLimit < 1 || c.ArenaLimit > MaxHandles {
		return fmt.Errorf("%w: arena limit %d not in [1, %d]", ErrInvalidConfig, c.ArenaLimit, MaxHandles)
	}
	if c.Overflow > OverflowReject {
		return fmt.Errorf("%w: overflow policy %s", ErrInvalidConfig, c.Overflow)
	}
	return nil
}

// Option mutates a Config.
type Option func(*Config)

func WithBucketCapacity(n int) Option {
	return func(c *Config) {
		c.BucketCapacity = n
	}
}

func WithMaxDepth(n int) Option {
	return func(c *Config) {
		c.MaxDepth = n
	}
}

func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(c *Config) {
		c.Overflow = p
	}
}

func WithShrink(enabled bool) Option {
	return func(c *Config) {
		c.Shrink = enabled
	}
}

// WithArenaLimit caps the number of nodes and the number of buckets. Mostly
// useful to exercise ErrExhausted without 65535 allocations.
func WithArenaLimit(n int) Option {
	return func(c *Config) {
		c.ArenaLimit = n
	}
}

func WithInitialCapacity(n int) Option {
	return func(c *Config) {
		c.InitialCapacity = n
	}
}

// WithLogger routes split, merge and overflow diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithEventBus publishes structural events to bus.
func WithEventBus(bus *EventBus) Option {
	return func(c *Config) {
		c.Events = bus
	}
}

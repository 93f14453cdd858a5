package vamana

import (
	"fmt"

	"github.com/xDarkicex/diskvec/internal/node"
	"github.com/xDarkicex/diskvec/internal/util"
)

// Config holds the immutable per-index parameters persisted in the metadata
// table. A zero BlockSize means auto-compute at create time.
type Config struct {
	Dimensions        int
	Metric            util.DistanceMetric
	MaxNeighbors      int
	SearchListSize    int
	InsertListSize    int
	BlockSize         int
	PruningAlphaX1000 int
}

// Default tuning. Alpha is stored fixed-point x1000; 1200 is the 1.2 sweet
// spot of the Vamana recall/size tradeoff.
const (
	DefaultMaxNeighbors      = 32
	DefaultSearchListSize    = 64
	DefaultInsertListSize    = 128
	DefaultPruningAlphaX1000 = 1200

	maxDimensions = 16384
)

// applyDefaults fills unset tuning parameters.
func (c *Config) applyDefaults() {
	if c.MaxNeighbors == 0 {
		c.MaxNeighbors = DefaultMaxNeighbors
	}
	if c.SearchListSize == 0 {
		c.SearchListSize = DefaultSearchListSize
	}
	if c.InsertListSize == 0 {
		c.InsertListSize = DefaultInsertListSize
	}
	if c.PruningAlphaX1000 == 0 {
		c.PruningAlphaX1000 = DefaultPruningAlphaX1000
	}
}

// validate checks ranges and the block-size invariant.
func (c *Config) validate() error {
	if c.Dimensions < 1 || c.Dimensions > maxDimensions {
		return fmt.Errorf("%w: dimensions must be in 1..%d, got %d", ErrInvalid, maxDimensions, c.Dimensions)
	}
	if _, err := util.GetDistanceFunc(c.Metric); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.MaxNeighbors <= 0 {
		return fmt.Errorf("%w: max neighbors must be positive", ErrInvalid)
	}
	if c.SearchListSize <= 0 {
		return fmt.Errorf("%w: search list size must be positive", ErrInvalid)
	}
	if c.InsertListSize <= 0 {
		return fmt.Errorf("%w: insert list size must be positive", ErrInvalid)
	}
	if c.PruningAlphaX1000 <= 0 {
		return fmt.Errorf("%w: pruning alpha must be positive", ErrInvalid)
	}
	if c.BlockSize != 0 && c.BlockSize < node.MinBlockSize(c.Dimensions, c.MaxNeighbors) {
		return fmt.Errorf("%w: block size %d below minimum %d for %d dims and %d neighbors",
			ErrInvalid, c.BlockSize, node.MinBlockSize(c.Dimensions, c.MaxNeighbors),
			c.Dimensions, c.MaxNeighbors)
	}
	return nil
}

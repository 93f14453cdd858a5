package diskvec

import (
	"fmt"

	"github.com/xDarkicex/diskvec/internal/util"
	"github.com/xDarkicex/diskvec/internal/vamana"
)

// Metric selects the distance function an index is built and searched with.
type Metric int

const (
	// L2 is squared Euclidean distance (square root omitted; monotonic
	// with true L2).
	L2 Metric = iota
	// Cosine is 1 minus cosine similarity.
	Cosine
	// Dot is negated inner product.
	Dot
)

// Config holds index creation parameters. Dimensions is required; other zero
// values mean "use the default"; a zero BlockSize is auto-computed from the dimensions and the
// adjacency cap, then rounded up to a 4 KiB boundary.
type Config struct {
	Dimensions     int
	Metric         Metric
	MaxNeighbors   int
	SearchListSize int
	InsertListSize int
	BlockSize      int
	// PruningAlpha is the Vamana diversity parameter in thousandths:
	// 1200 means 1.2. Lower prunes harder; above 1500 pruning is nearly
	// a no-op.
	PruningAlpha int
}

func (c *Config) toInternal() vamana.Config {
	return vamana.Config{
		Dimensions:        c.Dimensions,
		Metric:            util.DistanceMetric(c.Metric),
		MaxNeighbors:      c.MaxNeighbors,
		SearchListSize:    c.SearchListSize,
		InsertListSize:    c.InsertListSize,
		BlockSize:         c.BlockSize,
		PruningAlphaX1000: c.PruningAlpha,
	}
}

// Option represents an index configuration option
type Option func(*Config) error

// WithDimensions sets the vector dimension count (1..16384). Required.
func WithDimensions(dims int) Option {
	return func(c *Config) error {
		if dims <= 0 {
			return fmt.Errorf("dimensions must be positive")
		}
		c.Dimensions = dims
		return nil
	}
}

// WithMetric sets the distance metric
func WithMetric(metric Metric) Option {
	return func(c *Config) error {
		switch metric {
		case L2, Cosine, Dot:
			c.Metric = metric
			return nil
		default:
			return fmt.Errorf("unknown metric: %v", metric)
		}
	}
}

// WithMaxNeighbors sets the target adjacency cap per node
func WithMaxNeighbors(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("max neighbors must be positive")
		}
		c.MaxNeighbors = n
		return nil
	}
}

// WithSearchListSize sets the search beam width
func WithSearchListSize(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("search list size must be positive")
		}
		c.SearchListSize = n
		return nil
	}
}

// WithInsertListSize sets the insert-time beam width
func WithInsertListSize(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("insert list size must be positive")
		}
		c.InsertListSize = n
		return nil
	}
}

// WithBlockSize sets the bytes per node block. Must leave room for the node
// vector plus the adjacency margin; 0 auto-computes.
func WithBlockSize(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("block size cannot be negative")
		}
		c.BlockSize = n
		return nil
	}
}

// WithPruningAlpha sets the diversity parameter in thousandths (1200 = 1.2).
func WithPruningAlpha(x1000 int) Option {
	return func(c *Config) error {
		if x1000 <= 0 {
			return fmt.Errorf("pruning alpha must be positive")
		}
		c.PruningAlpha = x1000
		return nil
	}
}

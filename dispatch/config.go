package dispatch

const (
	// DefaultMaxExpansionDepth bounds recursive action expansion.
	DefaultMaxExpansionDepth = 100
	// DefaultMaxInterpolationDepth bounds chained placeholder resolution.
	DefaultMaxInterpolationDepth = 10
)

// Config bounds the two recursions of a dispatch call. The bounds are the
// engine's only resource-exhaustion guard: they guarantee termination on
// cyclic action and placeholder graphs.
type Config struct {
	MaxExpansionDepth     int // default: 100
	MaxInterpolationDepth int // default: 10
}

// NewConfig normalizes non-positive depths to the defaults.
func NewConfig(expansionDepth, interpolationDepth int) Config {
	if expansionDepth <= 0 {
		expansionDepth = DefaultMaxExpansionDepth
	}
	if interpolationDepth <= 0 {
		interpolationDepth = DefaultMaxInterpolationDepth
	}
	return Config{
		MaxExpansionDepth:     expansionDepth,
		MaxInterpolationDepth: interpolationDepth,
	}
}

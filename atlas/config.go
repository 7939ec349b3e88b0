package atlas

// Page dimension limits. Requested sizes are clamped into this range.
const (
	MinAtlasDim = 2048
	MaxAtlasDim = 8192

	// Border is the unused frame around every page, in pixels.
	Border = 1

	// Gutter is the spacing kept to the right of and below every packed
	// image so that linear filtering does not bleed between neighbours.
	Gutter = 1
)

// Config holds atlas manager configuration.
type Config struct {
	// Width and Height of every page. Clamped to [MinAtlasDim, MaxAtlasDim].
	// Default: 2048x2048
	Width, Height int

	// MaxPages limits the number of pages. Default: 16
	MaxPages int
}

// DefaultConfig returns the default atlas configuration.
func DefaultConfig() Config {
	return Config{
		Width:    MinAtlasDim,
		Height:   MinAtlasDim,
		MaxPages: 16,
	}
}

// Clamped returns c with page dimensions clamped into the supported range.
func (c Config) Clamped() Config {
	c.Width = clampDim(c.Width)
	c.Height = clampDim(c.Height)
	return c
}

func clampDim(v int) int {
	return min(max(v, MinAtlasDim), MaxAtlasDim)
}

// Validate checks if the configuration is valid. Page dimensions are never
// invalid since they are clamped.
func (c *Config) Validate() error {
	if c.MaxPages < 1 {
		return &ConfigError{Field: "MaxPages", Reason: "must be at least 1"}
	}
	if c.MaxPages > 256 {
		return &ConfigError{Field: "MaxPages", Reason: "must be at most 256"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}

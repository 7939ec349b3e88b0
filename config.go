package sprite

// MaxQuadsPerDraw is the largest sub-batch a 16-bit index buffer can address.
const MaxQuadsPerDraw = 65536 / VerticesPerSprite

// Config holds batch configuration.
type Config struct {
	// MaxBatchSize is the maximum number of sprites drawn by one indexed
	// draw call. Default: 2048
	MaxBatchSize int

	// InitialQueueCapacity is the number of queue slots allocated up front.
	// The queue doubles when full. Default: 64
	InitialQueueCapacity int

	// ParallelThreshold is the sub-batch size above which the vertex fill
	// is split into two halves written concurrently. Default: 512
	ParallelThreshold int

	// Workers is the size of the fill worker pool. Default: 2
	Workers int
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:         2048,
		InitialQueueCapacity: 64,
		ParallelThreshold:    512,
		Workers:              2,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxBatchSize < 1 {
		return &ConfigError{Field: "MaxBatchSize", Reason: "must be at least 1"}
	}
	if c.MaxBatchSize > MaxQuadsPerDraw {
		return &ConfigError{Field: "MaxBatchSize", Reason: "must fit 16-bit indices"}
	}
	if c.InitialQueueCapacity < 1 {
		return &ConfigError{Field: "InitialQueueCapacity", Reason: "must be at least 1"}
	}
	if c.ParallelThreshold < 2 {
		return &ConfigError{Field: "ParallelThreshold", Reason: "must be at least 2"}
	}
	if c.Workers < 1 {
		return &ConfigError{Field: "Workers", Reason: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "sprite: invalid config." + e.Field + ": " + e.Reason
}

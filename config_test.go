package sprite

import (
	"errors"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero batch", func(c *Config) { c.MaxBatchSize = 0 }, "MaxBatchSize"},
		{"batch over 16-bit", func(c *Config) { c.MaxBatchSize = MaxQuadsPerDraw + 1 }, "MaxBatchSize"},
		{"zero capacity", func(c *Config) { c.InitialQueueCapacity = 0 }, "InitialQueueCapacity"},
		{"threshold 1", func(c *Config) { c.ParallelThreshold = 1 }, "ParallelThreshold"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "Workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			err := c.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestMaxBatchSizeAtLimit(t *testing.T) {
	c := DefaultConfig()
	c.MaxBatchSize = MaxQuadsPerDraw
	if err := c.Validate(); err != nil {
		t.Errorf("MaxBatchSize = %d rejected: %v", MaxQuadsPerDraw, err)
	}
}

func TestOptionsApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3
	r := NewDirectResolver()
	res, _ := NewDeviceResources(nil)

	o := defaultOptions()
	for _, opt := range []Option{WithConfig(cfg), WithResolver(r), WithDeviceResources(res)} {
		opt(&o)
	}
	if o.config != cfg || o.resolver != r || o.resources != res {
		t.Errorf("options not applied: %+v", o)
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SortBackToFront.String(), "BackToFront"},
		{SortMode(9).String(), "Unknown"},
		{FlipBoth.String(), "FlipBoth"},
		{BlendAdditive.String(), "Additive"},
		{SamplerPointWrap.String(), "PointWrap"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

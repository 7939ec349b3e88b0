package sprite

// Option configures a Batch during creation.
//
// Example:
//
//	// Default configuration, textures resolved one by one
//	b, err := sprite.NewBatch(dev)
//
//	// Atlas pages drawn from a single texture array
//	b, err := sprite.NewBatch(dev, sprite.WithResolver(sprite.NewArrayResolver(mgr)))
type Option func(*batchOptions)

type batchOptions struct {
	config    Config
	resolver  TextureResolver
	resources *DeviceResources
}

func defaultOptions() batchOptions {
	return batchOptions{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the default batch configuration.
// The configuration is validated by NewBatch.
func WithConfig(c Config) Option {
	return func(o *batchOptions) {
		o.config = c
	}
}

// WithResolver sets how textures are turned into device bindings.
// The default is a [DirectResolver].
func WithResolver(r TextureResolver) Option {
	return func(o *batchOptions) {
		o.resolver = r
	}
}

// WithDeviceResources shares device-scoped resources between batches that
// draw to the same device. The batch does not close shared resources.
func WithDeviceResources(r *DeviceResources) Option {
	return func(o *batchOptions) {
		o.resources = r
	}
}

package di

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/goliatone/go-metadata-cache/internal/cacheinfra"
	"github.com/goliatone/go-metadata-cache/metadata"
	"go.uber.org/zap"
)

// AdapterLocal selects a store without any cache backend.
const AdapterLocal = "local"

// Config selects the cache backend and row encoding of a Container.
type Config struct {
	Adapter    string        `json:"adapter" mapstructure:"adapter"`
	Options    cache.Options `json:"options" mapstructure:"options"`
	Serializer string        `json:"serializer" mapstructure:"serializer"`
}

// DefaultConfig returns a configuration using the in-process sturdyc backend.
func DefaultConfig() Config {
	return Config{
		Adapter:    cacheinfra.AdapterMemory,
		Serializer: metadata.SerializerMsgpack,
	}
}

// Validate checks the configuration before any connection is attempted.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Adapter, validation.Required),
		validation.Field(&c.Serializer, validation.In(metadata.SerializerMsgpack, metadata.SerializerJSON)),
	)
	if err != nil {
		return cache.AsConfigError(err)
	}
	if err := c.Options.Validate(); err != nil {
		return err
	}
	return nil
}

// NewAdapterFactory returns a factory over every built-in backend.
func NewAdapterFactory() *cache.AdapterFactory {
	return cache.NewAdapterFactory(cacheinfra.Constructors())
}

// Container wires the adapter factory and the metadata store built from a Config.
type Container struct {
	factory *cache.AdapterFactory
	store   *metadata.MetadataStore
	options cache.Options
	config  Config
	logger  *zap.Logger
}

// NewContainer builds the store selected by config. A nil logger disables logging.
func NewContainer(ctx context.Context, config Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	serializer, err := metadata.SerializerByName(config.Serializer)
	if err != nil {
		return nil, err
	}
	storeOpts := []metadata.StoreOption{
		metadata.WithLogger(logger),
		metadata.WithSerializer(serializer),
	}

	factory := NewAdapterFactory()
	c := &Container{factory: factory, config: config, logger: logger}

	if config.Adapter == AdapterLocal {
		c.store = metadata.NewMemory(storeOpts...)
		c.options = config.Options
		return c, nil
	}

	store, err := metadata.NewAdapterStore(ctx, factory, config.Adapter, config.Options, defaultsFor(config.Adapter), storeOpts...)
	if err != nil {
		return nil, err
	}
	c.store = store.MetadataStore
	c.options = store.EffectiveOptions()

	logger.Debug("metadata store ready",
		zap.String("adapter", config.Adapter),
		zap.String("prefix", c.options.Prefix),
		zap.Strings("servers", c.options.Addresses()),
	)
	return c, nil
}

// NewContainerWithDefaults creates a container from DefaultConfig.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, DefaultConfig(), nil)
}

func defaultsFor(name string) cache.Options {
	switch name {
	case cacheinfra.AdapterLibmemcached:
		return metadata.LibmemcachedDefaults()
	case cacheinfra.AdapterRedis:
		return metadata.RedisDefaults()
	case cacheinfra.AdapterMemory:
		return cache.Options{Prefix: "ph-mm-mmry-", Lifetime: 172800}
	case cacheinfra.AdapterLRU:
		return cache.Options{Prefix: "ph-mm-lru-", Lifetime: 172800}
	default:
		return cache.Options{}
	}
}

// Store returns the metadata store.
func (c *Container) Store() *metadata.MetadataStore {
	return c.store
}

// Factory returns the adapter factory.
func (c *Container) Factory() *cache.AdapterFactory {
	return c.factory
}

// Config returns the configuration the container was built from.
func (c *Container) Config() Config {
	return c.config
}

// EffectiveOptions returns the adapter options after defaults were applied.
func (c *Container) EffectiveOptions() cache.Options {
	return c.options
}

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Close releases the cache backend.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("close metadata store: %w", err)
	}
	return nil
}

// NewReader returns a metadata reader over the container store.
func NewReader(container *Container, reflector metadata.Reflector) *metadata.Reader {
	return metadata.NewReader(container.store, reflector)
}

package di

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/goliatone/go-metadata-cache/metadata"
	"github.com/goliatone/go-metadata-cache/pkg/testsupport"
	"go.uber.org/zap/zaptest"
)

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background())
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if container.Store() == nil {
		t.Fatal("Container should have a non-nil store")
	}
	if container.Factory() == nil {
		t.Fatal("Container should have a non-nil factory")
	}

	config := container.Config()
	if config.Adapter != DefaultConfig().Adapter {
		t.Errorf("Expected default adapter %q, got %q", DefaultConfig().Adapter, config.Adapter)
	}

	opts := container.EffectiveOptions()
	if opts.Prefix != "ph-mm-mmry-" || opts.Lifetime != 172800 {
		t.Errorf("Expected memory defaults, got %+v", opts)
	}
}

func TestNewContainer_Adapters(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort() failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	testCases := []struct {
		name       string
		config     Config
		wantPrefix string
	}{
		{
			name:       "memory",
			config:     Config{Adapter: "memory"},
			wantPrefix: "ph-mm-mmry-",
		},
		{
			name:       "lru",
			config:     Config{Adapter: "lru", Options: cache.Options{Capacity: 16}},
			wantPrefix: "ph-mm-lru-",
		},
		{
			name: "redis",
			config: Config{
				Adapter:    "redis",
				Serializer: "json",
				Options:    cache.Options{Servers: []cache.Server{{Host: host, Port: port}}},
			},
			wantPrefix: "ph-mm-reds-",
		},
		{
			name:   "local",
			config: Config{Adapter: AdapterLocal},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			container, err := NewContainer(ctx, tc.config, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("NewContainer() failed: %v", err)
			}
			defer container.Close()

			if got := container.EffectiveOptions().Prefix; got != tc.wantPrefix {
				t.Errorf("Expected prefix %q, got %q", tc.wantPrefix, got)
			}

			store := container.Store()
			row := metadata.Row{metadata.KindPrimaryKeys: []string{"id"}}
			if err := store.Write(ctx, "shop.Order", row); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			if _, ok := store.ReadKind(ctx, "shop.Order", metadata.KindPrimaryKeys); !ok {
				t.Error("Expected a hit after Write()")
			}
			if err := store.Reset(ctx); err != nil {
				t.Fatalf("Reset() failed: %v", err)
			}
			if _, ok := store.Read(ctx, "shop.Order"); ok {
				t.Error("Expected a miss after Reset()")
			}
		})
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		config Config
		field  string
	}{
		{name: "missing adapter", config: Config{}, field: "adapter"},
		{name: "unknown serializer", config: Config{Adapter: "memory", Serializer: "php"}, field: "serializer"},
		{name: "negative lifetime", config: Config{Adapter: "memory", Options: cache.Options{Lifetime: -5}}, field: "lifetime"},
		{
			name:   "bad server port",
			config: Config{Adapter: "redis", Options: cache.Options{Servers: []cache.Server{{Host: "localhost", Port: 70000}}}},
			field:  "servers.0.port",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewContainer(context.Background(), tc.config, nil)
			var cfgErr *cache.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *cache.ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestNewContainer_UnsupportedAdapter(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{Adapter: "apcu"}, nil)
	if !errors.Is(err, cache.ErrUnsupportedAdapter) {
		t.Fatalf("Expected unsupported adapter error, got %v", err)
	}

	var unsupported *cache.UnsupportedAdapterError
	if errors.As(err, &unsupported) && len(unsupported.Known) != 4 {
		t.Errorf("Expected 4 known adapters, got %v", unsupported.Known)
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background())
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if container.Store() != container.Store() {
		t.Error("Store() should return the same instance")
	}
	if container.Factory() != container.Factory() {
		t.Error("Factory() should return the same instance")
	}
}

func TestNewAdapterFactory(t *testing.T) {
	factory := NewAdapterFactory()
	for _, name := range []string{"libmemcached", "redis", "memory", "lru"} {
		if !factory.Supports(name) {
			t.Errorf("Expected factory to support %q", name)
		}
	}
}

func TestNewContainer_OptionsFixture(t *testing.T) {
	opts := testsupport.LoadOptionsFixture(t, testsupport.FixturePath("lru_options.json"))

	container, err := NewContainer(context.Background(), Config{Adapter: "lru", Options: opts}, nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	effective := container.EffectiveOptions()
	if effective.Prefix != "fixture-" || effective.Lifetime != 600 || effective.Capacity != 32 {
		t.Errorf("Expected fixture options to win over defaults, got %+v", effective)
	}
}

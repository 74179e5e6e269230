package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/goliatone/go-metadata-cache/pkg/di"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "METADATA"

// bindFlags registers the persistent flags and binds each one to viper so
// METADATA_* variables and the config file fill whatever is not set on the
// command line.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	defaults := di.DefaultConfig()

	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("adapter", defaults.Adapter, "cache adapter: libmemcached, redis, memory, lru or local")
	flags.String("serializer", defaults.Serializer, "row encoding: msgpack or json")
	flags.String("prefix", "", "cache key prefix")
	flags.StringSlice("servers", nil, "backend servers as host:port")
	flags.Int("lifetime", 0, "entry lifetime in seconds")
	flags.Duration("timeout", 0, "per call timeout")
	flags.String("password", "", "backend password")
	flags.Int("index", 0, "logical database index")
	flags.Bool("verbose", false, "enable development logging")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// readConfigFile loads the file named by --config, if any.
func readConfigFile(v *viper.Viper) error {
	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// loadConfig assembles a container configuration from the bound settings.
func loadConfig(v *viper.Viper) (di.Config, error) {
	servers, err := parseServers(v.GetStringSlice("servers"))
	if err != nil {
		return di.Config{}, err
	}
	return di.Config{
		Adapter:    v.GetString("adapter"),
		Serializer: v.GetString("serializer"),
		Options: cache.Options{
			Prefix:   v.GetString("prefix"),
			Lifetime: v.GetInt("lifetime"),
			Timeout:  v.GetDuration("timeout"),
			Password: v.GetString("password"),
			Index:    v.GetInt("index"),
			Servers:  servers,
		},
	}, nil
}

func parseServers(addrs []string) ([]cache.Server, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	out := make([]cache.Server, 0, len(addrs))
	for _, addr := range addrs {
		host, portStr, err := net.SplitHostPort(strings.TrimSpace(addr))
		if err != nil {
			return nil, &cache.ConfigError{Field: "servers", Message: err.Error()}
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, &cache.ConfigError{Field: "servers", Message: fmt.Sprintf("invalid port %q", portStr)}
		}
		out = append(out, cache.Server{Host: host, Port: port, Weight: 1})
	}
	return out, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

var errNotCached = errors.New("model metadata not cached")

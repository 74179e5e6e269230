package cache

import (
	"errors"
	"net"
	"sort"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultTimeout bounds every remote adapter call when Options.Timeout is unset.
const DefaultTimeout = time.Second

// Server describes one backend endpoint.
type Server struct {
	Host   string `json:"host" mapstructure:"host"`
	Port   int    `json:"port" mapstructure:"port"`
	Weight int    `json:"weight" mapstructure:"weight"`
}

// Address returns the host:port form used by network clients.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate implements validation.Validatable.
func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Host, validation.Required),
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.Weight, validation.Min(0)),
	)
}

// Options configures an adapter and the metadata store in front of it.
// A zero field means "unset" and is filled by WithDefaults.
type Options struct {
	// PersistentID keys the connection pool shared by adapters with the same ID.
	PersistentID string `json:"persistentId" mapstructure:"persistent_id"`

	// Prefix namespaces every cache key written through the adapter.
	Prefix string `json:"prefix" mapstructure:"prefix"`

	// Lifetime is the entry TTL in seconds.
	Lifetime int `json:"lifetime" mapstructure:"lifetime"`

	// Servers lists the backend endpoints.
	Servers []Server `json:"servers" mapstructure:"servers"`

	// Password authenticates against backends that support it.
	Password string `json:"password" mapstructure:"password"`

	// Index selects the logical database on backends that support it.
	Index int `json:"index" mapstructure:"index"`

	// Timeout bounds each remote call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Capacity bounds the number of entries of in-process adapters.
	Capacity int `json:"capacity" mapstructure:"capacity"`
}

// WithDefaults returns a copy of o where every unset field is taken from
// defaults. Neither o nor defaults is modified and the returned Servers slice
// is never shared with either of them.
func (o Options) WithDefaults(defaults Options) Options {
	merged := o
	if merged.PersistentID == "" {
		merged.PersistentID = defaults.PersistentID
	}
	if merged.Prefix == "" {
		merged.Prefix = defaults.Prefix
	}
	if merged.Lifetime == 0 {
		merged.Lifetime = defaults.Lifetime
	}
	if len(merged.Servers) == 0 {
		merged.Servers = defaults.Servers
	}
	if merged.Password == "" {
		merged.Password = defaults.Password
	}
	if merged.Timeout == 0 {
		merged.Timeout = defaults.Timeout
	}
	if merged.Capacity == 0 {
		merged.Capacity = defaults.Capacity
	}
	merged.Servers = cloneServers(merged.Servers)
	return merged
}

// TTL returns Lifetime as a duration.
func (o Options) TTL() time.Duration {
	return time.Duration(o.Lifetime) * time.Second
}

// CallTimeout returns Timeout, or DefaultTimeout when unset.
func (o Options) CallTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Addresses returns the host:port form of every configured server.
func (o Options) Addresses() []string {
	out := make([]string, 0, len(o.Servers))
	for _, s := range o.Servers {
		out = append(out, s.Address())
	}
	return out
}

// Validate checks whether the option values are usable.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.Lifetime, validation.Min(0)),
		validation.Field(&o.Index, validation.Min(0)),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&o.Capacity, validation.Min(0)),
		validation.Field(&o.Servers),
	)
	return AsConfigError(err)
}

func cloneServers(in []Server) []Server {
	if in == nil {
		return nil
	}
	out := make([]Server, len(in))
	copy(out, in)
	return out
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// AsConfigError flattens ozzo validation errors into the first failing field,
// using a dotted path for nested values (servers.0.host). Other errors are
// returned unchanged.
func AsConfigError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	field, msg := firstFieldError("", verrs)
	return &ConfigError{Field: field, Message: msg}
}

func firstFieldError(path string, verrs validation.Errors) (string, string) {
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field := k
		if path != "" {
			field = path + "." + k
		}
		var nested validation.Errors
		if errors.As(verrs[k], &nested) {
			return firstFieldError(field, nested)
		}
		return field, verrs[k].Error()
	}
	return path, "invalid value"
}

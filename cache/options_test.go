package cache

import (
	"strings"
	"testing"
	"time"
)

var memcachedDefaults = Options{
	PersistentID: "ph-mm-mcid-",
	Prefix:       "ph-mm-memc-",
	Lifetime:     172800,
}

func TestOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name             string
		opts             Options
		wantPersistentID string
		wantPrefix       string
		wantLifetime     int
	}{
		{
			name:             "empty options",
			opts:             Options{},
			wantPersistentID: "ph-mm-mcid-",
			wantPrefix:       "ph-mm-memc-",
			wantLifetime:     172800,
		},
		{
			name:             "lifetime only",
			opts:             Options{Lifetime: 60},
			wantPersistentID: "ph-mm-mcid-",
			wantPrefix:       "ph-mm-memc-",
			wantLifetime:     60,
		},
		{
			name:             "everything set",
			opts:             Options{PersistentID: "pool", Prefix: "app-", Lifetime: 5},
			wantPersistentID: "pool",
			wantPrefix:       "app-",
			wantLifetime:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.WithDefaults(memcachedDefaults)
			if got.PersistentID != tt.wantPersistentID {
				t.Errorf("PersistentID = %q, want %q", got.PersistentID, tt.wantPersistentID)
			}
			if got.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %q, want %q", got.Prefix, tt.wantPrefix)
			}
			if got.Lifetime != tt.wantLifetime {
				t.Errorf("Lifetime = %d, want %d", got.Lifetime, tt.wantLifetime)
			}
		})
	}
}

func TestOptions_WithDefaultsDoesNotMutate(t *testing.T) {
	defaults := Options{
		Prefix:  "d-",
		Servers: []Server{{Host: "127.0.0.1", Port: 11211}},
	}
	caller := Options{Lifetime: 10}

	merged := caller.WithDefaults(defaults)
	merged.Servers[0].Host = "changed"

	if caller.Prefix != "" || caller.Servers != nil {
		t.Errorf("caller options were mutated: %+v", caller)
	}
	if defaults.Servers[0].Host != "127.0.0.1" {
		t.Errorf("defaults servers share storage with merged options")
	}

	again := merged.WithDefaults(defaults)
	if again.Prefix != merged.Prefix || again.Lifetime != merged.Lifetime {
		t.Errorf("defaulting is not idempotent: %+v vs %+v", again, merged)
	}
}

func TestOptions_TTLAndTimeout(t *testing.T) {
	opts := Options{Lifetime: 172800}
	if opts.TTL() != 48*time.Hour {
		t.Errorf("TTL() = %v, want 48h", opts.TTL())
	}
	if opts.CallTimeout() != DefaultTimeout {
		t.Errorf("CallTimeout() = %v, want %v", opts.CallTimeout(), DefaultTimeout)
	}
	opts.Timeout = 50 * time.Millisecond
	if opts.CallTimeout() != 50*time.Millisecond {
		t.Errorf("CallTimeout() = %v, want 50ms", opts.CallTimeout())
	}
}

func TestOptions_Addresses(t *testing.T) {
	opts := Options{Servers: []Server{{Host: "127.0.0.1", Port: 11211}, {Host: "::1", Port: 6379}}}
	got := opts.Addresses()
	want := []string{"127.0.0.1:11211", "[::1]:6379"}
	if len(got) != len(want) {
		t.Fatalf("Addresses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Addresses()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantField string
	}{
		{
			name: "valid",
			opts: Options{Lifetime: 10, Servers: []Server{{Host: "localhost", Port: 11211}}},
		},
		{
			name:      "negative lifetime",
			opts:      Options{Lifetime: -1},
			wantField: "lifetime",
		},
		{
			name:      "negative timeout",
			opts:      Options{Timeout: -time.Second},
			wantField: "timeout",
		},
		{
			name:      "server without host",
			opts:      Options{Servers: []Server{{Port: 11211}}},
			wantField: "servers.0.host",
		},
		{
			name:      "server port out of range",
			opts:      Options{Servers: []Server{{Host: "a", Port: 70000}}},
			wantField: "servers.0.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected validation error: %v", err)
				}
				return
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
			if !strings.Contains(cfgErr.Error(), tt.wantField) {
				t.Errorf("error message %q does not name the field", cfgErr.Error())
			}
		})
	}
}

package protocol

import (
	"time"

	"github.com/keybox9823/apollo/pkg/consts"
)

// Config is the root daemon configuration loaded from YAML.
type Config struct {
	Catalog       CatalogConfig       `yaml:"catalog"`
	Runtime       RuntimeConfig       `yaml:"runtime"`
	Feeds         FeedsConfig         `yaml:"feeds"`
	Sink          SinkConfig          `yaml:"sink"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// FeedsConfig configures the inbound CloudEvents receiver.
type FeedsConfig struct {
	// ListenPort accepts monitor and chassis feed events. Zero disables the
	// receiver.
	ListenPort int `yaml:"listen_port"`
}

// CatalogConfig points at the directories enumerated into the mode, map and
// vehicle catalogs.
type CatalogConfig struct {
	ModesDir    string `yaml:"modes_dir"`
	MapsDir     string `yaml:"maps_dir"`
	VehiclesDir string `yaml:"vehicles_dir"`
}

// RuntimeConfig holds the mutable-environment knobs of the supervisor.
type RuntimeConfig struct {
	// MapDir is the map data directory currently in effect; when it matches a
	// catalog entry the corresponding map is pre-selected at startup.
	MapDir string `yaml:"map_dir"`
	// VehicleDataDir is the runtime directory vehicle profiles are activated
	// into.
	VehicleDataDir string `yaml:"vehicle_data_dir"`
	// GlobalFlagfile is the shared flagfile appended to when a global flag
	// such as map_dir changes.
	GlobalFlagfile string `yaml:"global_flagfile"`
	// KVPath is the sqlite file backing last-selected-mode persistence.
	KVPath string `yaml:"kv_path"`

	DefaultMode       string `yaml:"default_mode"`
	UseNavigationMode bool   `yaml:"use_navigation_mode"`
	UseSimTime        bool   `yaml:"use_sim_time"`
	UTMZoneID         int    `yaml:"utm_zone_id"`

	// PublishInterval and StatusLifetime are time.ParseDuration strings.
	PublishInterval string `yaml:"publish_interval"`
	StatusLifetime  string `yaml:"status_lifetime"`
}

// SinkConfig configures the outbound CloudEvents emitter.
type SinkConfig struct {
	// Target is the HTTP endpoint status, pad and drive-event messages are
	// delivered to. Empty disables emission.
	Target string `yaml:"target"`
	Source string `yaml:"source"`
}

type ObservabilityConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// PublishIntervalOrDefault parses the configured publish interval, falling
// back to the built-in default on empty or malformed values.
func (r RuntimeConfig) PublishIntervalOrDefault() time.Duration {
	if d, err := time.ParseDuration(r.PublishInterval); err == nil && d > 0 {
		return d
	}
	return consts.DefaultPublishInterval
}

// StatusLifetimeOrDefault parses the configured feed staleness threshold,
// falling back to the built-in default.
func (r RuntimeConfig) StatusLifetimeOrDefault() time.Duration {
	if d, err := time.ParseDuration(r.StatusLifetime); err == nil && d > 0 {
		return d
	}
	return consts.DefaultStatusLifetime
}

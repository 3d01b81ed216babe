// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite ledger file. Empty selects the in-memory
	// engine (state is lost on restart).
	DBPath string `koanf:"db_path"`

	// ProbeIntervalSeconds sets the connectivity monitor's polling interval.
	ProbeIntervalSeconds int `koanf:"probe_interval_seconds"`

	// HistoryLimit caps how many events a history read returns.
	HistoryLimit int `koanf:"history_limit"`

	// ConfirmSplashMS sets how long the confirmation splash is shown.
	ConfirmSplashMS int `koanf:"confirm_splash_ms"`

	// AdminTapThreshold and AdminTapWindowMS configure the admin unlock
	// gesture: threshold activations within the window reveal the panel.
	AdminTapThreshold int `koanf:"admin_tap_threshold"`
	AdminTapWindowMS  int `koanf:"admin_tap_window_ms"`

	// Roster is the fixed list of scorable names. Configuration, not data:
	// the ledger core never hard-codes it.
	Roster []string `koanf:"roster"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DBPath:               "tally.db",
		ProbeIntervalSeconds: 8,
		HistoryLimit:         200,
		ConfirmSplashMS:      2000,
		AdminTapThreshold:    7,
		AdminTapWindowMS:     900,
		Roster: []string{
			"CREAG",
			"ARGYLE",
			"JOE",
			"NICOLA",
			"CHIP DOUGLAS",
			"TOP DOG",
		},
	}
}

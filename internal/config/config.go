// Package config provides Viper-based configuration loading for the loot list server.
package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/lootlist/internal/game/loot"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns loot finder persistence on. When false the server keeps
	// state in memory for the lifetime of each connection.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the connection URL shared by pgx and golang-migrate. User and
// password are escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Color enables ANSI color rendering of markup.
	Color bool `mapstructure:"color"`
	// MaxSessions caps concurrent players; 0 means no limit.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the listen address.
func (t TelnetConfig) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// HotkeyConfig binds the popup controls to keys.
type HotkeyConfig struct {
	ToggleAll string `mapstructure:"toggle_all"`
	Sort      string `mapstructure:"sort"`
	Pickup    string `mapstructure:"pickup"`
}

// Hotkeys converts the configured bindings to popup hotkeys.
func (h HotkeyConfig) Hotkeys() loot.Hotkeys {
	return loot.Hotkeys{ToggleAll: h.ToggleAll, Sort: h.Sort, Pickup: h.Pickup}
}

// LootConfig holds the loot list options.
type LootConfig struct {
	// AbilityEnabled grants the Zone Loot List ability to new players.
	AbilityEnabled bool `mapstructure:"ability_enabled"`
	// DefaultSort is the sort mode name of a fresh loot finder.
	DefaultSort string `mapstructure:"default_sort"`
	// DefaultPickup is the pickup mode name of a fresh loot finder.
	DefaultPickup string `mapstructure:"default_pickup"`
	// ModVersion is stamped on saved loot finder state.
	ModVersion string `mapstructure:"mod_version"`
	// Hotkeys binds the popup controls.
	Hotkeys HotkeyConfig `mapstructure:"hotkeys"`
}

// SortType returns the parsed default sort mode.
//
// Precondition: Validate has succeeded.
func (l LootConfig) SortType() loot.SortType {
	t, _ := loot.ParseSortType(l.DefaultSort)
	return t
}

// PickupType returns the parsed default pickup mode.
//
// Precondition: Validate has succeeded.
func (l LootConfig) PickupType() loot.PickupType {
	t, _ := loot.ParsePickupType(l.DefaultPickup)
	return t
}

// ContentConfig locates the YAML and Lua content.
type ContentConfig struct {
	ItemsDir               string `mapstructure:"items_dir"`
	LiquidsDir             string `mapstructure:"liquids_dir"`
	ZonesDir               string `mapstructure:"zones_dir"`
	ScriptDir              string `mapstructure:"script_dir"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Loot     LootConfig     `mapstructure:"loot"`
	Content  ContentConfig  `mapstructure:"content"`
}

// problems collects validation failures so one error reports all of them.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		p.addf(format, args...)
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(p, "; "))
}

var (
	sslModes   = []string{"disable", "require", "verify-ca", "verify-full"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

// Validate checks every section and reports all violations together.
func (c Config) Validate() error {
	var p problems
	if c.Database.Enabled {
		c.Database.validate(&p)
	}
	c.Telnet.validate(&p)
	c.Logging.validate(&p)
	c.Loot.validate(&p)
	c.Content.validate(&p)
	return p.err()
}

func validPort(n int) bool { return n >= 1 && n <= 65535 }

func (d DatabaseConfig) validate(p *problems) {
	p.check(d.Host != "", "database.host must not be empty")
	p.check(validPort(d.Port), "database.port must be 1-65535, got %d", d.Port)
	p.check(d.User != "", "database.user must not be empty")
	p.check(d.Name != "", "database.name must not be empty")
	p.check(slices.Contains(sslModes, d.SSLMode), "database.sslmode must be one of %v, got %q", sslModes, d.SSLMode)
	p.check(d.MaxConns >= 1, "database.max_conns must be >= 1, got %d", d.MaxConns)
	p.check(d.MinConns >= 0, "database.min_conns must be >= 0, got %d", d.MinConns)
	p.check(d.MinConns <= d.MaxConns, "database.min_conns must not exceed database.max_conns")
}

func (t TelnetConfig) validate(p *problems) {
	p.check(validPort(t.Port), "telnet.port must be 1-65535, got %d", t.Port)
	p.check(t.ReadTimeout >= 0, "telnet.read_timeout must not be negative")
	p.check(t.WriteTimeout >= 0, "telnet.write_timeout must not be negative")
	p.check(t.MaxSessions >= 0, "telnet.max_sessions must be >= 0, got %d", t.MaxSessions)
}

func (l LoggingConfig) validate(p *problems) {
	p.check(slices.Contains(logLevels, l.Level), "logging.level must be one of %v, got %q", logLevels, l.Level)
	p.check(slices.Contains(logFormats, l.Format), "logging.format must be one of %v, got %q", logFormats, l.Format)
}

func (l LootConfig) validate(p *problems) {
	if _, err := loot.ParseSortType(l.DefaultSort); err != nil {
		p.addf("loot.default_sort: %v", err)
	}
	if _, err := loot.ParsePickupType(l.DefaultPickup); err != nil {
		p.addf("loot.default_pickup: %v", err)
	}
	p.check(l.ModVersion != "", "loot.mod_version must not be empty")

	// Digits select rows and q cancels, so neither may be bound.
	owner := make(map[string]string, 3)
	for _, hk := range []struct{ name, key string }{
		{"toggle_all", l.Hotkeys.ToggleAll},
		{"sort", l.Hotkeys.Sort},
		{"pickup", l.Hotkeys.Pickup},
	} {
		key := strings.ToLower(hk.key)
		if utf8.RuneCountInString(key) != 1 {
			p.addf("loot.hotkeys.%s must be a single character, got %q", hk.name, hk.key)
			continue
		}
		p.check(key < "0" || key > "9", "loot.hotkeys.%s must not be a digit, got %q", hk.name, key)
		p.check(key != "q", "loot.hotkeys.%s must not be the cancel key q", hk.name)
		if other, dup := owner[key]; dup {
			p.addf("loot.hotkeys.%s duplicates loot.hotkeys.%s", hk.name, other)
		}
		owner[key] = hk.name
	}
}

func (c ContentConfig) validate(p *problems) {
	p.check(c.ItemsDir != "", "content.items_dir must not be empty")
	p.check(c.LiquidsDir != "", "content.liquids_dir must not be empty")
	p.check(c.ZonesDir != "", "content.zones_dir must not be empty")
	p.check(c.ScriptInstructionLimit >= 0, "content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// LOOTLIST_DATABASE_HOST overrides database.host, and so on.
	v.SetEnvPrefix("LOOTLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lootlist")
	v.SetDefault("database.password", "lootlist")
	v.SetDefault("database.name", "lootlist")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.color", true)
	v.SetDefault("telnet.max_sessions", 64)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	hk := loot.DefaultHotkeys()
	v.SetDefault("loot.ability_enabled", true)
	v.SetDefault("loot.default_sort", loot.DefaultSortType().String())
	v.SetDefault("loot.default_pickup", loot.DefaultPickupType().String())
	v.SetDefault("loot.mod_version", lootfinder.VersionCurrent)
	v.SetDefault("loot.hotkeys.toggle_all", hk.ToggleAll)
	v.SetDefault("loot.hotkeys.sort", hk.Sort)
	v.SetDefault("loot.hotkeys.pickup", hk.Pickup)

	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.liquids_dir", "content/liquids")
	v.SetDefault("content.zones_dir", "content/zones")
	v.SetDefault("content.script_dir", "content/scripts")
	v.SetDefault("content.script_instruction_limit", 0)
}

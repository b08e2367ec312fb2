package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const configDir = ".streamview"
const configFile = "config.json"

// EnvPrefix prefixes environment overrides, e.g. STREAMVIEW_REVEAL_BATCH.
const EnvPrefix = "STREAMVIEW"

type Config struct {
	Reveal  RevealConfig `json:"reveal" mapstructure:"reveal"`
	Render  RenderConfig `json:"render" mapstructure:"render"`
	Replay  ReplayConfig `json:"replay" mapstructure:"replay"`
	Watch   WatchConfig  `json:"watch" mapstructure:"watch"`
	Log     LogConfig    `json:"log" mapstructure:"log"`
	Profile string       `json:"-" mapstructure:"-"`
}

type RevealConfig struct {
	IntervalMS int `json:"interval_ms" mapstructure:"interval_ms"`
	Batch      int `json:"batch" mapstructure:"batch"`
}

type RenderConfig struct {
	Prose        string `json:"prose" mapstructure:"prose"`
	GlamourStyle string `json:"glamour_style" mapstructure:"glamour_style"`
	CodeStyle    string `json:"code_style" mapstructure:"code_style"`
	Width        int    `json:"width" mapstructure:"width"`
}

type ReplayConfig struct {
	Speed   float64 `json:"speed" mapstructure:"speed"`
	DelayMS int     `json:"delay_ms" mapstructure:"delay_ms"`
	Chunk   int     `json:"chunk" mapstructure:"chunk"`
}

type WatchConfig struct {
	IdleMS        int `json:"idle_ms" mapstructure:"idle_ms"`
	MinIntervalMS int `json:"min_interval_ms" mapstructure:"min_interval_ms"`
}

type LogConfig struct {
	File   string `json:"file,omitempty" mapstructure:"file"`
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

func (r RevealConfig) Interval() time.Duration { return ms(r.IntervalMS) }
func (r ReplayConfig) Delay() time.Duration    { return ms(r.DelayMS) }
func (w WatchConfig) Idle() time.Duration      { return ms(w.IdleMS) }

func (w WatchConfig) MinInterval() time.Duration { return ms(w.MinIntervalMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func setDefaults(v *viper.Viper) {
	v.SetDefault("reveal.interval_ms", 16)
	v.SetDefault("reveal.batch", 3)

	v.SetDefault("render.prose", "builtin")
	v.SetDefault("render.glamour_style", "dark")
	v.SetDefault("render.code_style", "monokai")
	v.SetDefault("render.width", 0)

	v.SetDefault("replay.speed", 1.0)
	v.SetDefault("replay.delay_ms", 30)
	v.SetDefault("replay.chunk", 8)

	v.SetDefault("watch.idle_ms", 10000)
	v.SetDefault("watch.min_interval_ms", 50)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Keys lists every settable key in dotted form.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}

func configPath(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	filename := configFile
	if profile != "" {
		filename = fmt.Sprintf("config-%s.json", profile)
	}
	return filepath.Join(home, configDir, filename), nil
}

// Load reads the profile's config file over the defaults, then applies
// STREAMVIEW_* environment overrides. A missing file yields the defaults.
func Load(profile string) (*Config, error) {
	path, err := configPath(profile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Profile = profile
	return &cfg, nil
}

func (c *Config) Save() error {
	path, err := configPath(c.Profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Set assigns one dotted key from its string form, e.g.
// Set("reveal.batch", "5"). The result is validated before it is applied.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(key)
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	current, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(current)); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	v.Set(key, value)

	var next Config
	if err := v.Unmarshal(&next); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	next.Profile = c.Profile
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) profileFlag() string {
	if c.Profile == "" {
		return ""
	}
	return " --profile " + c.Profile
}

func (c *Config) Validate() error {
	pf := c.profileFlag()
	hint := func(key string) string {
		return fmt.Sprintf("Run: streamview%s config set %s <value>", pf, key)
	}

	if c.Reveal.IntervalMS <= 0 {
		return fmt.Errorf("reveal.interval_ms must be positive. %s", hint("reveal.interval_ms"))
	}
	if c.Reveal.Batch < 1 {
		return fmt.Errorf("reveal.batch must be at least 1. %s", hint("reveal.batch"))
	}
	switch c.Render.Prose {
	case "builtin", "glamour":
	default:
		return fmt.Errorf("render.prose must be builtin or glamour, got %q. %s", c.Render.Prose, hint("render.prose"))
	}
	if c.Render.Width < 0 {
		return fmt.Errorf("render.width must not be negative. %s", hint("render.width"))
	}
	if c.Replay.Speed <= 0 {
		return fmt.Errorf("replay.speed must be positive. %s", hint("replay.speed"))
	}
	if c.Replay.Chunk < 1 {
		return fmt.Errorf("replay.chunk must be at least 1. %s", hint("replay.chunk"))
	}
	if c.Watch.IdleMS < 0 || c.Watch.MinIntervalMS < 0 {
		return fmt.Errorf("watch timings must not be negative. %s", hint("watch.idle_ms"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q. %s", c.Log.Level, hint("log.level"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q. %s", c.Log.Format, hint("log.format"))
	}
	return nil
}

func ListProfiles() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot find home directory: %w", err)
	}
	dir := filepath.Join(home, configDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config directory: %w", err)
	}
	var profiles []string
	for _, e := range entries {
		name := e.Name()
		if name == configFile {
			profiles = append(profiles, "default")
			continue
		}
		if strings.HasPrefix(name, "config-") && strings.HasSuffix(name, ".json") {
			profiles = append(profiles, strings.TrimSuffix(strings.TrimPrefix(name, "config-"), ".json"))
		}
	}
	return profiles, nil
}

func ProfileName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// Package config provides configuration management for pageforge using
// Viper for loading from files, environment variables and command-line
// flags.
//
// Configuration is read from .pageforge.yml in the working directory, with
// environment overrides under the PAGEFORGE_ prefix (dots become
// underscores, so router.base is PAGEFORGE_ROUTER_BASE).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/pageforge/internal/assets"
	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "PAGEFORGE"

// DisableStaticEnv turns static file serving off when set to a non-zero
// integer.
const DisableStaticEnv = "PAGEFORGE_DISABLE_STATIC"

type Config struct {
	Dev      bool         `mapstructure:"dev"`
	SrcDir   string       `mapstructure:"src_dir"`
	BuildDir string       `mapstructure:"build_dir"`
	Router   RouterConfig `mapstructure:"router"`
	Pages    PagesConfig  `mapstructure:"pages"`
	Build    BuildConfig  `mapstructure:"build"`
	Cache    CacheConfig  `mapstructure:"cache"`
	Server   ServerConfig `mapstructure:"server"`
	Static   StaticConfig `mapstructure:"static"`
	Log      LogConfig    `mapstructure:"log"`
}

type RouterConfig struct {
	// Base is the URL prefix the application is mounted under. It always
	// starts and ends with a slash after Load.
	Base string `mapstructure:"base"`
}

type PagesConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
}

type BuildConfig struct {
	// Filenames are the development bundle names served from the build
	// directory.
	Filenames assets.Filenames `mapstructure:"filenames"`

	// Sources are the client sources bundled by production builds.
	Sources assets.Sources `mapstructure:"sources"`

	PublicPath string `mapstructure:"public_path"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int           `mapstructure:"max_entries"`
	MaxAge     time.Duration `mapstructure:"max_age"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	Compress        bool          `mapstructure:"compress"`
}

type StaticConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults installs the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dev", false)
	v.SetDefault("src_dir", ".")
	v.SetDefault("build_dir", ".pageforge")
	v.SetDefault("router.base", "/")
	v.SetDefault("pages.dir", "pages")
	v.SetDefault("pages.extension", ".templ")

	names := assets.DefaultFilenames()
	v.SetDefault("build.filenames.app", names.App)
	v.SetDefault("build.filenames.vendor", names.Vendor)
	v.SetDefault("build.filenames.css", names.CSS)
	v.SetDefault("build.sources.app", "")
	v.SetDefault("build.sources.vendor", "")
	v.SetDefault("build.sources.css", "")
	v.SetDefault("build.public_path", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.max_age", 15*time.Minute)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.retry_delay", time.Second)
	v.SetDefault("server.compress", true)

	v.SetDefault("static.dir", "static")
	v.SetDefault("static.disabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load decodes and validates the configuration held by the global viper
// instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes and validates the configuration held by v. Unset keys
// take their defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, pferrors.NewConfigError(pferrors.ErrCodeConfigInvalid, "decoding configuration: "+err.Error())
	}

	config.Router.Base = NormalizeBase(config.Router.Base)
	if !strings.HasPrefix(config.Pages.Extension, ".") {
		config.Pages.Extension = "." + config.Pages.Extension
	}
	if disabled, ok := staticDisabledFromEnv(); ok {
		config.Static.Disabled = disabled
	}

	result := Validate(&config)
	if err := result.Err(); err != nil {
		return nil, err
	}
	return &config, nil
}

// NormalizeBase makes base start and end with a slash.
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return "/"
	}
	return "/" + strings.Trim(base, "/") + "/"
}

func staticDisabledFromEnv() (bool, bool) {
	raw, ok := os.LookupEnv(DisableStaticEnv)
	if !ok {
		return false, false
	}
	nonZero, _ := leadingInt(raw)
	return nonZero, true
}

// leadingInt parses the integer s starts with, after optional whitespace
// and sign, ignoring anything that follows ("1abc" and "2.5" are 1 and 2).
// It reports whether that integer is non-zero and whether there was one.
func leadingInt(s string) (nonZero, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		ok = true
		if s[i] != '0' {
			nonZero = true
		}
	}
	return nonZero, ok
}

// ResolvedBuildDir is the build directory, relative build directories being
// taken from SrcDir.
func (c *Config) ResolvedBuildDir() string {
	if filepath.IsAbs(c.BuildDir) {
		return c.BuildDir
	}
	return filepath.Join(c.SrcDir, c.BuildDir)
}

// ResolvedStaticDir is the static directory under SrcDir.
func (c *Config) ResolvedStaticDir() string {
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.SrcDir, c.Static.Dir)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ayakoakasaka/csprojgen/internal/branding"
	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/options"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized keys.
const (
	KeyRuntime      = "runtime"
	KeyFramework    = "framework"
	KeyPackageCache = "package_cache"
	KeyLogJSON      = "log.json"
	KeyLogVerbose   = "log.verbose"
)

// Keys lists every key accepted by "config set".
var Keys = []string{KeyRuntime, KeyFramework, KeyPackageCache, KeyLogJSON, KeyLogVerbose}

// Dir returns the path to the config directory (~/.csprojgen/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.csprojgen/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.IOFailure("create config directory", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyRuntime, options.NativeAOT.String())
	viper.SetDefault(KeyPackageCache, options.DefaultPackageCache)
	viper.SetDefault(KeyLogJSON, false)
	viper.SetDefault(KeyLogVerbose, false)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetBool returns a boolean config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Runtime returns the configured default runtime.
func Runtime() (options.Runtime, error) {
	return options.ParseRuntime(viper.GetString(KeyRuntime))
}

// Set validates and writes a config key-value pair and saves the config file.
// runtime and framework are checked together, since a framework moniker is
// only meaningful for the runtime it is paired with.
func Set(key, value string) error {
	if !isKnown(key) {
		return errors.WithHintf(
			errors.UnsupportedCombination(key, "unknown config key %q", key),
			"known keys: %s", strings.Join(Keys, ", "))
	}
	if err := validate(key, value); err != nil {
		return err
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return errors.IOFailure("create config file", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return errors.IOFailure("write config file", configFile, err)
	}

	return nil
}

func validate(key, value string) error {
	switch key {
	case KeyRuntime, KeyFramework:
		rt, err := Runtime()
		framework := Get(KeyFramework)
		if key == KeyRuntime {
			rt, err = options.ParseRuntime(value)
		} else {
			framework = value
		}
		if err != nil {
			return err
		}
		var opts []options.Option
		if framework != "" {
			opts = append(opts, options.WithFramework(framework))
		}
		if _, err := options.New(rt, opts...); err != nil {
			if key == KeyRuntime {
				return errors.WithHintf(err, "configured framework %s does not suit %s; set framework first", framework, rt)
			}
			return err
		}
	case KeyPackageCache:
		if strings.TrimSpace(value) == "" {
			return errors.UnsupportedCombination(key, "package cache directory must not be empty")
		}
	case KeyLogJSON, KeyLogVerbose:
		if _, err := strconv.ParseBool(value); err != nil {
			return errors.UnsupportedCombination(key, "%s must be true or false, got %q", key, value)
		}
	}
	return nil
}

func isKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

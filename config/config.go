package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigEnv overrides the config file location.
const ConfigEnv = "XBRIDGE_CONFIG"

var DefaultHome = filepath.Join(os.Getenv("HOME"), ".xbridge")

var noSuchFile = "no such file"
var notFoundIn = "not found in"

func getViper() *viper.Viper {
	// new instance of viper to avoid conflicts with embedding applications
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// If the config location env is set, use that.
	if path := os.Getenv(ConfigEnv); path != "" {
		v.SetConfigFile(path)
	}

	// otherwise, prioritize current path or parent
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	// Lastly, check home dir
	v.AddConfigPath(DefaultHome)

	return v
}

// RequireConfig loads configuration.
// 1. Read in a configuration file based on environment variables and current path.
// 2. If a section is provided, e.g. "xbridge", only that section is treated as root and deserialized.
// 3. You may optionally provide an existing configuration object with default values.
// 4. If defaults are provided, an error will _not_ be returned if no config is found.
func RequireConfig(section string, unmarshalDst interface{}, defaults interface{}) error {
	v := getViper()
	err := v.ReadInConfig()
	if err != nil {
		msg := strings.ToLower(err.Error())
		if defaults != nil && (strings.Contains(msg, noSuchFile) || strings.Contains(msg, notFoundIn)) {
			// use the defaults by serializing and deserializing
			return roundTrip(defaults, unmarshalDst)
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	if section != "" {
		sub := v.Sub(section)
		if sub == nil {
			if defaults != nil {
				return roundTrip(defaults, unmarshalDst)
			}
			return fmt.Errorf("section %s %s config file %s", section, notFoundIn, v.ConfigFileUsed())
		}
		v = sub
	}

	// round trip through yaml so the yaml struct tags apply
	return roundTrip(v.AllSettings(), unmarshalDst)
}

func roundTrip(src interface{}, dst interface{}) error {
	bz, err := yaml.Marshal(src)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bz, dst)
}

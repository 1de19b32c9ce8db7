package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tunaaoguzhann/dataforge/database"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "dataforge.yaml"

var configKeys = []string{"driver", "host", "port", "name", "user", "pass", "driver_name"}

// LoadConfig reads the database section of a config file. Every key can be
// overridden by a DB_<KEY> environment variable, e.g. DB_HOST or
// DB_DRIVER_NAME. A missing default file is not an error; a missing
// explicit path is.
func LoadConfig(path string) (database.Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	for _, key := range configKeys {
		if err := v.BindEnv("database."+key, "DB_"+strings.ToUpper(key)); err != nil {
			return database.Config{}, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return database.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := database.Config{
		Driver:     v.GetString("database.driver"),
		Host:       v.GetString("database.host"),
		Port:       v.GetString("database.port"),
		Name:       v.GetString("database.name"),
		User:       v.GetString("database.user"),
		Pass:       v.GetString("database.pass"),
		DriverName: v.GetString("database.driver_name"),
		Params:     v.GetStringMapString("database.params"),
	}
	if cfg.Driver == "" {
		return cfg, fmt.Errorf("no database driver configured (set database.driver in %s or DB_DRIVER)", DefaultConfigFile)
	}
	return cfg, nil
}

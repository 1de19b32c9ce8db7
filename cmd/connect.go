package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/tunaaoguzhann/dataforge/database"
	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/utils"
)

// connect loads the config and opens a connection. A missing password is
// asked for on the terminal when a user is configured.
func connect(ctx context.Context) (*database.Connection, error) {
	cfg, err := utils.LoadConfig(configPath())
	if err != nil {
		return nil, err
	}

	if cfg.User != "" && cfg.Pass == "" && cfg.Driver != string(dialect.SQLite) {
		pass, err := utils.PromptPassword(fmt.Sprintf("Password for %s@%s: ", cfg.User, cfg.Host))
		if err != nil && !errors.Is(err, utils.ErrNotTerminal) {
			return nil, err
		}
		cfg.Pass = pass
	}

	return database.Open(ctx, cfg)
}

// configPath is the --config flag, then DATAFORGE_CONFIG. Empty means the
// default file in the working directory.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return utils.Getenv("DATAFORGE_CONFIG", "")
}

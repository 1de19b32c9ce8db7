package database

import (
	"net"
	"net/url"
	"sort"

	"github.com/go-sql-driver/mysql"

	"github.com/tunaaoguzhann/dataforge/dialect"
)

// Config describes how to reach a database.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Host   string `mapstructure:"host" yaml:"host"`
	Port   string `mapstructure:"port" yaml:"port,omitempty"`
	Name   string `mapstructure:"name" yaml:"name"`
	User   string `mapstructure:"user" yaml:"user,omitempty"`
	Pass   string `mapstructure:"pass" yaml:"pass,omitempty"`

	// DriverName overrides the database/sql driver picked for the dialect,
	// e.g. "postgres" to use lib/pq instead of pgx.
	DriverName string            `mapstructure:"driver_name" yaml:"driver_name,omitempty"`
	Params     map[string]string `mapstructure:"params" yaml:"params,omitempty"`
}

// ConfigFromMap builds a Config from the driver/host/name/user/pass mapping.
func ConfigFromMap(m map[string]string) Config {
	return Config{
		Driver:     m["driver"],
		Host:       m["host"],
		Port:       m["port"],
		Name:       m["name"],
		User:       m["user"],
		Pass:       m["pass"],
		DriverName: m["driver_name"],
	}
}

// Dialect validates the configured driver.
func (c Config) Dialect() (dialect.Dialect, error) {
	return dialect.Parse(c.Driver)
}

// SQLDriver returns the database/sql driver name used to open the connection.
func (c Config) SQLDriver() (string, error) {
	if c.DriverName != "" {
		return c.DriverName, nil
	}
	d, err := c.Dialect()
	if err != nil {
		return "", err
	}
	switch d {
	case dialect.MySQL:
		return "mysql", nil
	case dialect.Postgres:
		return "pgx", nil
	case dialect.SQLite:
		return sqliteDriverName, nil
	default:
		return "sqlserver", nil
	}
}

// DSN builds the dialect specific connection string.
func (c Config) DSN() (string, error) {
	d, err := c.Dialect()
	if err != nil {
		return "", err
	}
	switch d {
	case dialect.MySQL:
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Pass
		cfg.Net = "tcp"
		cfg.Addr = c.address("3306")
		cfg.DBName = c.Name
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		for k, v := range c.Params {
			cfg.Params[k] = v
		}
		return cfg.FormatDSN(), nil
	case dialect.Postgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     c.address("5432"),
			Path:     "/" + c.Name,
			RawQuery: c.query(nil),
		}
		if c.User != "" {
			u.User = url.UserPassword(c.User, c.Pass)
		}
		return u.String(), nil
	case dialect.SQLite:
		if len(c.Params) == 0 {
			return c.Name, nil
		}
		return c.Name + "?" + c.query(nil), nil
	default:
		u := url.URL{
			Scheme:   "sqlserver",
			Host:     c.address(""),
			RawQuery: c.query(map[string]string{"database": c.Name}),
		}
		if c.User != "" {
			u.User = url.UserPassword(c.User, c.Pass)
		}
		return u.String(), nil
	}
}

func (c Config) address(defaultPort string) string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == "" {
		if _, p, err := net.SplitHostPort(host); err == nil && p != "" {
			return host
		}
		port = defaultPort
	}
	if port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}

func (c Config) query(base map[string]string) string {
	v := url.Values{}
	for k, val := range base {
		v.Set(k, val)
	}
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, c.Params[k])
	}
	return v.Encode()
}

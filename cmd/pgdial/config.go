package main

import "gfx.cafe/util/go/gun"

// Config mirrors the libpq environment variables, so the tool drops into
// existing setups.
type Config struct {
	PGHost     string `env:"PGHOST"`
	PGPort     int    `env:"PGPORT"`
	PGUser     string `env:"PGUSER"`
	PGPassword string `env:"PGPASSWORD"`
	PGDatabase string `env:"PGDATABASE"`
	PGSSLMode  string `env:"PGSSLMODE"`
	PGAppName  string `env:"PGAPPNAME"`
}

func loadConfig() Config {
	conf := Config{
		PGHost: "localhost",
		PGPort: 5432,
	}
	gun.Load(&conf)
	return conf
}

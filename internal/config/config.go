package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env          string
	Port         int
	DataDir      string
	DatabaseURL  string
	JWTSecret    string
	LogJSON      bool
	ConfirmDelay time.Duration
	TipURL       string
}

func Default() Config {
	return Config{
		Env:          "dev",
		Port:         5000,
		DataDir:      "./data",
		DatabaseURL:  "",
		JWTSecret:    "",
		LogJSON:      true,
		ConfirmDelay: 3 * time.Second,
		TipURL:       "",
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("LAUNDRY_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("LAUNDRY_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("LAUNDRY_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LAUNDRY_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LAUNDRY_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("LAUNDRY_LOG_JSON"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.LogJSON = true
		case "0", "false", "FALSE":
			c.LogJSON = false
		}
	}
	if v := os.Getenv("LAUNDRY_CONFIRM_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ConfirmDelay = d
		}
	}
	if v := os.Getenv("LAUNDRY_TIP_URL"); v != "" {
		c.TipURL = v
	}
	return c
}

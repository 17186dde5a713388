// Package ctl implements the notifyctl command line client. The cobra tree
// lives in cobra_root.go; the HTTP calls live in client.go.
package ctl

import "os"

// Config carries the persistent CLI options.
type Config struct {
	Addr   string
	LogLvl string
}

// DefaultConfig resolves defaults from the environment.
func DefaultConfig() *Config {
	return &Config{
		Addr:   envStr("NOTIFYD_ADDR", "http://127.0.0.1:8080"),
		LogLvl: envStr("NOTIFYCTL_LOG_LEVEL", "info"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// internal/config/validator.go
//
// Defaults and validation for the merged configuration.
//
// Context
// -------
// `Load` calls `applyDefaults` and then `validateStruct` immediately after
// it unmarshals the merged Koanf tree.  Any validation error aborts startup,
// so the binary never runs with partial, malformed, or missing settings.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

// applyDefaults fills zero values the YAML may omit.
func applyDefaults(c *Config) {
	setDur := func(d *time.Duration, def time.Duration) {
		if *d == 0 {
			*d = def
		}
	}
	setInt := func(n *int, def int) {
		if *n == 0 {
			*n = def
		}
	}

	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	setDur(&c.HTTP.ReadTimeout, 5*time.Second)
	setDur(&c.HTTP.WriteTimeout, 10*time.Second)
	setDur(&c.HTTP.IdleTimeout, 120*time.Second)
	setDur(&c.HTTP.ShutdownTimeout, 15*time.Second)

	if c.Database.Driver == "" {
		c.Database.Driver = "pgx"
	}
	setInt(&c.Database.MaxOpenConns, 15)
	setInt(&c.Database.MaxIdleConns, 5)
	setDur(&c.Database.ConnMaxLifetime, 30*time.Minute)

	if c.Waitlist.ProductName == "" {
		c.Waitlist.ProductName = "Kallio"
	}
	setInt(&c.Waitlist.CounterBase, 298)
	setDur(&c.Waitlist.CountTTL, 30*time.Second)
	setInt(&c.Waitlist.FormCacheSize, 4096)

	setDur(&c.Security.MinFillTime, 2*time.Second)
	setDur(&c.Security.MaxFormAge, 30*time.Minute)

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	setDur(&c.Vault.CacheTTL, 10*time.Minute)
}

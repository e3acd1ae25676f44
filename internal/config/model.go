// internal/config/model.go
//
// Typed configuration model for the waitlist service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `WAITLIST_`-prefixed environment overrides – highest precedence.
//
// Any string value that begins with `vault:` is a secret reference of the
// form `vault:<mount>/<path>#<key>`.  ResolveSecrets swaps those for the
// plain value before the pool, guard, or anything else reads them.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations are written as Go duration strings ("30s", "5m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"fmt"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Database section
//

// Database holds the driver, DSN template, and secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  When it contains one `%s` verb the
// *secret* (`Password`) is injected there at runtime, keeping credentials
// out of flat files and git history.
type Database struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=pgx postgres mysql"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	Password        string        `koanf:"password"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	Migrate         bool          `koanf:"migrate"`
}

// ConnString returns the DSN with the password substituted when the
// template asks for it.
func (d Database) ConnString() (string, error) {
	switch n := strings.Count(d.DSN, "%s"); n {
	case 0:
		return d.DSN, nil
	case 1:
		if d.Password == "" {
			return "", fmt.Errorf("database.dsn expects a password but database.password is empty")
		}
		return fmt.Sprintf(d.DSN, d.Password), nil
	default:
		return "", fmt.Errorf("database.dsn has %d %%s verbs, want at most one", n)
	}
}

//
// Waitlist section
//

// Waitlist holds product-facing settings.
type Waitlist struct {
	ProductName   string        `koanf:"product_name"    validate:"required"`
	CounterBase   int           `koanf:"counter_base"    validate:"gte=0"`
	CountTTL      time.Duration `koanf:"count_ttl"       validate:"gte=0"`
	FormCacheSize int           `koanf:"form_cache_size" validate:"gte=1"`
}

//
// Security section
//

// RateLimit bounds submissions per client IP.  RPS 0 disables limiting.
type RateLimit struct {
	RPS   float64 `koanf:"rps"   validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
}

// Security holds form-guard and abuse settings.
type Security struct {
	CSRFKey     string        `koanf:"csrf_key"`
	MinFillTime time.Duration `koanf:"min_fill_time" validate:"gte=0"`
	MaxFormAge  time.Duration `koanf:"max_form_age"  validate:"gte=0"`
	RateLimit   RateLimit     `koanf:"rate_limit"`
}

//
// Log, GeoIP, and Vault sections
//

// Log configures the zap file logger.
type Log struct {
	Dir     string `koanf:"dir"`
	Level   string `koanf:"level"   validate:"omitempty,oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

// GeoIP points at an optional MaxMind City database.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

// Vault tunes secret lookups.  Connection details come from VAULT_ADDR and
// VAULT_TOKEN.
type Vault struct {
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // WAITLIST_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Waitlist Waitlist `koanf:"waitlist"`
	Security Security `koanf:"security"`
	Log      Log      `koanf:"log"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Vault    Vault    `koanf:"vault"`
	Paths    Paths    `koanf:"-"`
}

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
database:
  driver: pgx
  dsn: "postgres://waitlist:%s@db/waitlist"
  password: "vault:secret/waitlist/db#password"
security:
  csrf_key: "vault:secret/waitlist/app#csrf_key"
`

func writeRoot(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadFrom_Defaults(t *testing.T) {
	root := writeRoot(t, minimalYAML)

	cfg, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.HTTP.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Waitlist.CounterBase != 298 || cfg.Waitlist.ProductName != "Kallio" {
		t.Errorf("waitlist defaults = %+v", cfg.Waitlist)
	}
	if cfg.Security.MinFillTime != 2*time.Second || cfg.Security.MaxFormAge != 30*time.Minute {
		t.Errorf("security defaults = %+v", cfg.Security)
	}
	if cfg.Paths.Root != root || cfg.Log.Dir != filepath.Join(root, "logs") {
		t.Errorf("paths = %+v, log dir = %q", cfg.Paths, cfg.Log.Dir)
	}
	if Get() != cfg {
		t.Error("Get() did not return the loaded config")
	}
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	root := writeRoot(t, minimalYAML+`
http:
  listen_addr: ":9000"
waitlist:
  count_ttl: 10s
`)
	t.Setenv("WAITLIST_HTTP__LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("WAITLIST_HTTP__FORCE_HTTPS", "true")
	t.Setenv("WAITLIST_WAITLIST__COUNT_TTL", "45s")
	t.Setenv("WAITLIST_SECURITY__RATE_LIMIT__RPS", "2.5")

	cfg, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:7000" || !cfg.HTTP.ForceHTTPS {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Waitlist.CountTTL != 45*time.Second {
		t.Errorf("CountTTL = %v", cfg.Waitlist.CountTTL)
	}
	if cfg.Security.RateLimit.RPS != 2.5 {
		t.Errorf("RPS = %v", cfg.Security.RateLimit.RPS)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad driver": "database:\n  driver: sqlite\n  dsn: x\n",
		"no dsn":     "database:\n  driver: pgx\n",
		"bad level":  "database:\n  dsn: x\nlog:\n  level: loud\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(writeRoot(t, yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadFrom_MissingYAML(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Fatal("expected error for missing conf/global.yaml")
	}
}

func TestConnString(t *testing.T) {
	d := Database{DSN: "postgres://u:%s@h/db", Password: "pw"}
	if s, err := d.ConnString(); err != nil || s != "postgres://u:pw@h/db" {
		t.Fatalf("ConnString = %q, %v", s, err)
	}

	d = Database{DSN: "postgres://u@h/db"}
	if s, _ := d.ConnString(); s != d.DSN {
		t.Fatalf("ConnString = %q, want DSN unchanged", s)
	}

	if _, err := (Database{DSN: "u:%s@h"}).ConnString(); err == nil {
		t.Fatal("expected error for missing password")
	}
	if _, err := (Database{DSN: "%s:%s", Password: "x"}).ConnString(); err == nil {
		t.Fatal("expected error for two verbs")
	}
}

type mapResolver map[string]string

func (m mapResolver) Secret(_ context.Context, path, key string) (string, error) {
	v, ok := m[path+"#"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{
		Database: Database{DSN: "plain", Password: "vault:secret/waitlist/db#password"},
		Security: Security{CSRFKey: "vault:secret/waitlist/app#csrf_key"},
	}
	if !cfg.HasSecretRefs() {
		t.Fatal("HasSecretRefs = false")
	}

	err := ResolveSecrets(context.Background(), cfg, mapResolver{
		"secret/waitlist/db#password":  "s3cret",
		"secret/waitlist/app#csrf_key": "key",
	})
	if err != nil {
		t.Fatalf("ResolveSecrets: %v", err)
	}
	if cfg.Database.Password != "s3cret" || cfg.Security.CSRFKey != "key" || cfg.Database.DSN != "plain" {
		t.Fatalf("resolved = %+v %+v", cfg.Database, cfg.Security)
	}
	if cfg.HasSecretRefs() {
		t.Fatal("references remain after resolve")
	}
}

func TestResolveSecrets_Errors(t *testing.T) {
	cfg := &Config{Database: Database{Password: "vault:secret/x#k"}}
	if err := ResolveSecrets(context.Background(), cfg, nil); err == nil ||
		!strings.Contains(err.Error(), "database.password") {
		t.Fatalf("nil resolver err = %v", err)
	}

	cfg = &Config{Database: Database{Password: "vault:secret/x"}}
	if err := ResolveSecrets(context.Background(), cfg, mapResolver{}); err == nil {
		t.Fatal("expected malformed reference error")
	}

	cfg = &Config{Database: Database{Password: "vault:secret/x#k"}}
	if err := ResolveSecrets(context.Background(), cfg, mapResolver{}); err == nil {
		t.Fatal("expected lookup error")
	}
}

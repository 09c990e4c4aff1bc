package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
}

const minimal = `
http:
  addr: ":8080"
postgres:
  dsn: "postgres://localhost/presence"
auth:
  jwtSecret: "secret"
`

func TestLoadConfig_Defaults(t *testing.T) {
	writeConfig(t, minimal)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Presence.TTL != 60*time.Second {
		t.Fatalf("ttl = %s, want 60s", cfg.Presence.TTL)
	}
	if cfg.Presence.Heartbeat != 20*time.Second {
		t.Fatalf("heartbeat = %s, want 20s", cfg.Presence.Heartbeat)
	}
	if cfg.Logging.Service != "presence-service" || cfg.Logging.Env != "dev" {
		t.Fatalf("unexpected logging defaults: %#v", cfg.Logging)
	}
	if cfg.Logging.Backend != "std" {
		t.Fatalf("backend = %q, want std", cfg.Logging.Backend)
	}
}

func TestLoadConfig_TTLMustExceedHeartbeat(t *testing.T) {
	writeConfig(t, minimal+`
presence:
  ttl: 15s
  heartbeat: 20s
`)

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error for ttl <= heartbeat")
	}
}

func TestLoadConfig_MissingRequiredFields(t *testing.T) {
	for name, body := range map[string]string{
		"addr": `
postgres:
  dsn: "x"
auth:
  jwtSecret: "s"
`,
		"dsn": `
http:
  addr: ":8080"
auth:
  jwtSecret: "s"
`,
		"jwtSecret": `
http:
  addr: ":8080"
postgres:
  dsn: "x"
`,
	} {
		t.Run(name, func(t *testing.T) {
			writeConfig(t, body)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for missing %s", name)
			}
		})
	}
}

func TestLoadConfig_ExplicitValues(t *testing.T) {
	writeConfig(t, minimal+`
redis:
  addr: "localhost:6379"
  db: 2
presence:
  ttl: 90s
  heartbeat: 30s
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %#v", cfg.Redis)
	}
	if cfg.Presence.TTL != 90*time.Second || cfg.Presence.Heartbeat != 30*time.Second {
		t.Fatalf("unexpected presence config: %#v", cfg.Presence)
	}
}

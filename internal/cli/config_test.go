package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"github.com/matzehuels/meshskel/pkg/cache"
	"github.com/matzehuels/meshskel/pkg/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{envRedisAddr, envCache, envAddr, envPrefix} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigTOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", `
xyz_scaling = 1.0
radius = 250.0
node_label = 2
use_smooth_vertices = true

[cache]
backend = "bolt"
dir = "/tmp/meshskel-test"
ttl = "2h"
prefix = "lab-a:"

[server]
addr = ":9090"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.XYZScaling != 1 || cfg.Radius != 250 || cfg.NodeLabel != 2 || !cfg.UseSmoothVertices {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Cache.Backend != cache.BackendBolt || cfg.Cache.Dir != "/tmp/meshskel-test" || cfg.Cache.Prefix != "lab-a:" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if ttl, _ := cfg.ttl(); ttl.Hours() != 2 {
		t.Errorf("ttl = %v, want 2h", ttl)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", `
xyz_scaling: 10
cache:
  backend: memory
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.XYZScaling != 10 || cfg.Cache.Backend != cache.BackendMemory {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("unset fields should keep defaults, addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	defer xdg.Reload()
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.XYZScaling != pipeline.DefaultScale || cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", "")
	t.Setenv(envRedisAddr, "localhost:6379")
	t.Setenv(envAddr, "127.0.0.1:7000")
	t.Setenv(envPrefix, "ci:")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("redis address should select the redis backend: %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Prefix != "ci:" {
		t.Errorf("prefix = %q, want ci:", cfg.Cache.Prefix)
	}

	t.Setenv(envCache, "none")
	if cfg, err = loadConfig(path); err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != cache.BackendNone {
		t.Errorf("%s should win, backend = %q", envCache, cfg.Cache.Backend)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		file    string
		want    string
	}{
		{"unknown key", `colour = "red"`, "a.toml", "unknown key"},
		{"bad toml", `xyz_scaling = `, "b.toml", "decode config"},
		{"unknown yaml key", "colour: red\n", "c.yaml", "decode config"},
		{"bad backend", "[cache]\nbackend = \"s3\"", "d.toml", "unknown cache backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"", "e.toml", "redis_addr"},
		{"bad ttl", "[cache]\nttl = \"soon\"", "f.toml", "cache.ttl"},
		{"zero scaling", "xyz_scaling = 0.0", "g.toml", "xyz_scaling"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeFile(t, dir, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("an explicit missing config should fail")
	}
}

func TestCacheConfig(t *testing.T) {
	cfg := defaultConfig()
	cc := cfg.cacheConfig(false)
	if cc.Backend != cache.BackendFile || !strings.HasSuffix(cc.Dir, appName) {
		t.Errorf("cacheConfig = %+v", cc)
	}
	if cfg.cacheConfig(true).Backend != cache.BackendNone {
		t.Error("noCache should select the none backend")
	}
}

func TestConfigKeyer(t *testing.T) {
	cfg := defaultConfig()
	opts := cache.ForestKeyOpts{}
	plain := cfg.keyer().ForestKey("abc", opts)

	cfg.Cache.Prefix = "lab-a:"
	scoped := cfg.keyer().ForestKey("abc", opts)
	if scoped != "lab-a:"+plain {
		t.Errorf("scoped key = %q, want %q", scoped, "lab-a:"+plain)
	}
	if got := cfg.keyer().ArtifactKey(plain, cache.ArtifactKeyOpts{}); !strings.HasPrefix(got, "lab-a:") {
		t.Errorf("artifact key = %q, want lab-a: prefix", got)
	}
}

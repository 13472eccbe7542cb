package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadWithIncludes(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "router.yaml", "router:\n  min_interval: 30s\n")
	main := writeConfigFile(t, dir, "config.yaml", "includes:\n  - router.yaml\nsession:\n  buffer_capacity: 20\n")

	cfg, err := Load(main)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Router.MinInterval != 30*time.Second {
		t.Errorf("min_interval = %s, want 30s from include", cfg.Router.MinInterval)
	}
	if cfg.Session.BufferCapacity != 20 {
		t.Errorf("buffer_capacity = %d, want main file value kept", cfg.Session.BufferCapacity)
	}
}

func TestLoadNestedIncludes(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "inner.yaml", "router:\n  random_route_probability: 0.9\n")
	writeConfigFile(t, dir, "outer.yaml", "includes:\n  - inner.yaml\n")
	main := writeConfigFile(t, dir, "config.yaml", "includes:\n  - outer.yaml\n")

	cfg, err := Load(main)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Router.RandomRouteProbability != 0.9 {
		t.Errorf("random_route_probability = %v", cfg.Router.RandomRouteProbability)
	}
}

func TestLoadCircularInclude(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "a.yaml", "includes:\n  - b.yaml\n")
	writeConfigFile(t, dir, "b.yaml", "includes:\n  - a.yaml\n")
	main := writeConfigFile(t, dir, "config.yaml", "includes:\n  - a.yaml\n")

	if _, err := Load(main); err == nil {
		t.Fatal("circular include not detected")
	}
}

func TestLoadIncludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "10-router.yaml", "router:\n  min_interval: 20s\n")
	writeConfigFile(t, dir, "20-gateway.yaml", "gateway:\n  addr: \":9090\"\n")
	main := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"*-*.yaml\"\n")

	cfg, err := Load(main)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Router.MinInterval != 20*time.Second {
		t.Errorf("min_interval = %s", cfg.Router.MinInterval)
	}
	if cfg.Gateway.Addr != ":9090" {
		t.Errorf("gateway.addr = %q", cfg.Gateway.Addr)
	}
}

func TestLoadIncludeEscapesDir(t *testing.T) {
	dir := t.TempDir()
	main := writeConfigFile(t, dir, "config.yaml", "includes:\n  - ../outside.yaml\n")

	if _, err := Load(main); err == nil {
		t.Fatal("path traversal include not rejected")
	}
}

func TestLoadIncludeInsecurePermissions(t *testing.T) {
	dir := t.TempDir()
	loose := writeConfigFile(t, dir, "loose.yaml", "router:\n  min_interval: 5s\n")
	if err := os.Chmod(loose, 0o666); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	main := writeConfigFile(t, dir, "config.yaml", "includes:\n  - loose.yaml\n")

	if _, err := Load(main); err == nil {
		t.Fatal("world-writable include not rejected")
	}
}

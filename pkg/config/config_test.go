package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ferry.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestResolveDefaults(t *testing.T) {
	r, err := Resolve(t.TempDir()) // no ferry.yaml
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.FlushInterval != DefaultFlushIntervalMS*time.Millisecond {
		t.Errorf("FlushInterval = %s", r.FlushInterval)
	}
	if !r.ImmediateHigh {
		t.Error("ImmediateHigh should default to true")
	}
	if r.Codec != "json" {
		t.Errorf("Codec = %q, want json", r.Codec)
	}
	if r.CacheCapacity != DefaultCacheCapacity {
		t.Errorf("CacheCapacity = %d", r.CacheCapacity)
	}
	if r.InspectPort != DefaultInspectPort {
		t.Errorf("InspectPort = %d", r.InspectPort)
	}
}

func TestResolveFromYAML(t *testing.T) {
	dir := writeConfig(t, `
bridge:
  flush_interval_ms: 8
  immediate_high: false
  codec: cbor
cache:
  capacity: 64
inspect:
  enabled: true
  port: 9400
`)
	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.FlushInterval != 8*time.Millisecond {
		t.Errorf("FlushInterval = %s, want 8ms", r.FlushInterval)
	}
	if r.ImmediateHigh {
		t.Error("ImmediateHigh should be false")
	}
	if r.Codec != "cbor" {
		t.Errorf("Codec = %q", r.Codec)
	}
	if r.CacheCapacity != 64 {
		t.Errorf("CacheCapacity = %d", r.CacheCapacity)
	}
	if !r.InspectEnabled || r.InspectPort != 9400 {
		t.Errorf("Inspect = %v/%d", r.InspectEnabled, r.InspectPort)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad codec", yaml: "bridge:\n  codec: xml\n"},
		{name: "negative interval", yaml: "bridge:\n  flush_interval_ms: -5\n"},
		{name: "negative capacity", yaml: "cache:\n  capacity: -1\n"},
		{name: "port out of range", yaml: "inspect:\n  port: 99999\n"},
		{name: "malformed yaml", yaml: "bridge: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.yaml)
			if _, err := Resolve(dir); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := writeConfig(t, "cache:\n  capacity: 64\n")

	t.Setenv("FERRY_CACHE_CAPACITY", "128")
	t.Setenv("FERRY_INSPECT_PORT", "9500")

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.CacheCapacity != 128 {
		t.Errorf("CacheCapacity = %d, want env override 128", r.CacheCapacity)
	}
	if r.InspectPort != 9500 {
		t.Errorf("InspectPort = %d, want env override 9500", r.InspectPort)
	}
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv("FERRY_CACHE_CAPACITY", "lots")
	if _, err := Resolve(t.TempDir()); err == nil {
		t.Error("expected error for non-numeric FERRY_CACHE_CAPACITY")
	}
}

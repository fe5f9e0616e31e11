package inspect

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-ferry/ferry/pkg/bridge"
	"github.com/go-ferry/ferry/pkg/config"
	"github.com/go-ferry/ferry/pkg/value"
)

func startTestServer(t *testing.T) (*bridge.Runtime, int) {
	t.Helper()
	rt := bridge.New(bridge.NewLoopback(), bridge.Options{CacheCapacity: 8})
	t.Cleanup(func() { rt.Close() })

	resolved, err := (&config.Config{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	srv := NewServer(rt, resolved)
	port, err := srv.Start(0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })
	return rt, port
}

func get(t *testing.T, port int, path string, out any) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d%s", port, path))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, port := startTestServer(t)

	var health map[string]string
	get(t, port, "/health", &health)
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}

func TestStatsEndpoint(t *testing.T) {
	rt, port := startTestServer(t)

	s := value.MustFromGo(map[string]any{"width": 1.0})
	if _, err := rt.Transform(s); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Transform(s); err != nil {
		t.Fatal(err)
	}
	rt.Enqueue("a", value.Null(), bridge.PriorityNormal)

	var stats bridge.Stats
	get(t, port, "/stats", &stats)
	if stats.Cache.Hits != 1 || stats.Cache.Misses != 1 {
		t.Errorf("cache stats = %+v", stats.Cache)
	}
	if stats.QueueDepth != 1 {
		t.Errorf("queue depth = %d", stats.QueueDepth)
	}
}

func TestConfigEndpoint(t *testing.T) {
	_, port := startTestServer(t)

	var cfg map[string]any
	get(t, port, "/config", &cfg)
	if got := cfg["codec"]; got != "json" {
		t.Errorf("codec = %v, want default json", got)
	}
	if got := cfg["cacheCapacity"]; got != float64(config.DefaultCacheCapacity) {
		t.Errorf("cacheCapacity = %v, want %d", got, config.DefaultCacheCapacity)
	}
	if got := cfg["flushIntervalMs"]; got != float64(config.DefaultFlushIntervalMS) {
		t.Errorf("flushIntervalMs = %v, want %d", got, config.DefaultFlushIntervalMS)
	}
}

func TestConfigEndpointWithoutConfig(t *testing.T) {
	rt := bridge.New(bridge.NewLoopback(), bridge.Options{})
	defer rt.Close()
	srv := NewServer(rt, nil)
	defer srv.Stop()

	port, err := srv.Start(0)
	if err != nil {
		t.Fatal(err)
	}
	var cfg map[string]any
	get(t, port, "/config", &cfg)
	if len(cfg) != 0 {
		t.Errorf("config without resolved settings = %v, want empty object", cfg)
	}
}

func TestStartTwiceReturnsSamePort(t *testing.T) {
	rt := bridge.New(bridge.NewLoopback(), bridge.Options{})
	defer rt.Close()
	srv := NewServer(rt, nil)
	defer srv.Stop()

	first, err := srv.Start(0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := srv.Start(0)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("ports differ: %d vs %d", first, second)
	}
}

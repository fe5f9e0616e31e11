// Command ferrydev runs a Ferry bridge runtime against a simulated
// native host, for exercising the pipeline and inspecting cache and
// queue behavior without a device. It loads ferry.yaml from the
// working directory, serves diagnostics over HTTP, and drives
// synthetic render traffic through the style cache and message queue.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-ferry/ferry/pkg/bridge"
	"github.com/go-ferry/ferry/pkg/config"
	"github.com/go-ferry/ferry/pkg/inspect"
	"github.com/go-ferry/ferry/pkg/value"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ferrydev: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.String("dir", ".", "directory containing ferry.yaml")
	port := flag.Int("port", -1, "inspect server port (-1 uses config, 0 is ephemeral)")
	interval := flag.Duration("traffic", 250*time.Millisecond, "synthetic traffic interval")
	flag.Parse()

	cfg, err := config.Resolve(*dir)
	if err != nil {
		return err
	}

	transport := bridge.NewLoopback()
	if cfg.Codec == "cbor" {
		transport.Codec = bridge.CBORCodec{}
	} else {
		transport.Codec = bridge.JSONCodec{}
	}

	rt := bridge.New(transport, bridge.Options{
		CacheCapacity: cfg.CacheCapacity,
		FlushInterval: cfg.FlushInterval,
		ImmediateHigh: cfg.ImmediateHigh,
	})
	transport.OnBatch = echoHost(transport)

	if err := rt.Start(); err != nil {
		return err
	}
	defer rt.Close()

	srv := inspect.NewServer(rt, cfg)
	inspectPort := cfg.InspectPort
	if *port >= 0 {
		inspectPort = *port
	}
	actual, err := srv.Start(inspectPort)
	if err != nil {
		return err
	}
	defer srv.Stop()
	fmt.Printf("ferrydev: inspect server on http://127.0.0.1:%d (stats: /stats)\n", actual)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	frame := 0
	for {
		select {
		case <-stop:
			fmt.Println("\nferrydev: shutting down")
			return nil
		case <-ticker.C:
			frame++
			driveFrame(rt, frame)
			if frame%20 == 0 {
				s := rt.Stats()
				fmt.Printf("frame %d: cache %.0f%% hit (%d/%d), seq %d\n",
					frame, s.Cache.HitRate*100, s.Cache.Hits, s.Cache.Hits+s.Cache.Misses, s.LastSeq)
			}
		}
	}
}

// echoHost simulates the native side: handshakes are answered in kind
// and requests are echoed back as responses.
func echoHost(transport *bridge.Loopback) func(bridge.Batch) {
	return func(batch bridge.Batch) {
		for _, e := range batch {
			switch e.Type {
			case bridge.MessageTypeHandshake:
				transport.Emit(bridge.MessageTypeHandshake, value.Object(map[string]value.Value{
					"protocol": value.String(bridge.ProtocolVersion),
				}))
			default:
				if id, ok := e.Payload.Get(bridge.RequestIDKey); ok {
					transport.Emit(bridge.MessageTypeResponse, value.Object(map[string]value.Value{
						bridge.RequestIDKey: id,
						"result":            e.Payload,
					}))
				}
			}
		}
	}
}

// driveFrame pushes a small, partly repeating style workload through
// the cache and enqueues the resulting commands, imitating a UI layer
// re-rendering.
func driveFrame(rt *bridge.Runtime, frame int) {
	base := value.MustFromGo(map[string]any{
		"backgroundColor": "steelblue",
		"padding":         12,
		"elevation":       2,
	})
	variant := value.MustFromGo(map[string]any{
		"width": float64(100 + frame%4),
	})

	transformed, err := rt.TransformMerged(base, variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ferrydev: transform: %v\n", err)
		return
	}
	rt.Enqueue("view/update", value.Object(map[string]value.Value{
		"viewId": value.Number(float64(frame % 8)),
		"style":  transformed,
	}), bridge.PriorityNormal)

	if frame%10 == 0 {
		go func() {
			if _, err := rt.Request("host/ping", value.Null(), time.Second); err != nil {
				fmt.Fprintf(os.Stderr, "ferrydev: ping: %v\n", err)
			}
		}()
	}
}

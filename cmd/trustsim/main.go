// Command trustsim runs a synthetic tick loop over a trust field, driving
// it from simulated sensor walkers instead of a real device, and logging
// phase transitions as they occur. It exists to exercise the engine
// end-to-end; a real embedding supplies its own sensor vectors and ticks
// the field directly.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/talgya/trustfield/internal/ctxkey"
	"github.com/talgya/trustfield/internal/narration"
	"github.com/talgya/trustfield/internal/observer"
	"github.com/talgya/trustfield/internal/persistence"
	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/phase"
	"github.com/talgya/trustfield/internal/sensorfield"
	"github.com/talgya/trustfield/internal/snapshot"
	"github.com/talgya/trustfield/internal/trust"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := envInt64OrDefault("TRUSTSIM_SEED", 42)
	capacity := envIntOrDefault("TRUSTSIM_CAPACITY", 64)
	channels := envIntOrDefault("TRUSTSIM_CHANNELS", 4)
	tickInterval := time.Duration(envIntOrDefault("TRUSTSIM_TICK_MS", 200)) * time.Millisecond
	dbPath := envOrDefault("TRUSTSIM_DB", "data/trustfield.db")
	relayKey := os.Getenv("TRUSTSIM_RELAY_KEY")
	streamPort := envIntOrDefault("TRUSTSIM_STREAM_PORT", 8090)

	slog.Info("trustsim starting",
		"seed", seed,
		"capacity", capacity,
		"channels", channels,
		"tick_interval", tickInterval,
	)

	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	fieldID := uuid.New()
	p := personality.New()
	field := trust.New(capacity)
	var tick uint64
	var totalInteractions uint64
	createdAt := uint64(0)

	if existing, loadErr := latestFieldID(db); loadErr == nil {
		snap, snapErr := db.LoadSnapshot(existing)
		if snapErr == nil {
			fieldID = existing
			field = snapshot.Restore(snap, capacity)
			p = snap.Personality
			tick = snap.LastActive
			createdAt = snap.CreatedAt
			totalInteractions = snap.TotalInteractions
			slog.Info("restored field from snapshot", "field_id", fieldID, "contexts", field.Len(), "tick", tick)
		}
	}

	sensor := sensorfield.NewWalker(channels, seed, 0.05)
	stress := sensorfield.NewWalker(1, seed+9973, 0.03)

	hub := observer.NewHub()
	streamServer := observer.NewServer(hub, streamPort, relayKey)
	if relayKey != "" {
		streamServer.Start()
	} else {
		slog.Info("TRUSTSIM_RELAY_KEY not set — live stream disabled")
	}

	previous := phase.ShyObserver
	thresholds := phase.DefaultThresholds()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	isTerminal := isatty.IsTerminal(os.Stdout.Fd())
	fmt.Printf("trustsim: field %s ready (%s contexts restored)\n", fieldID, humanize.Comma(int64(field.Len())))

	for {
		select {
		case <-ticker.C:
			vec := sensor.At(tick)
			k := ctxkey.New(vec)
			tensionVec := stress.At(tick)

			// Make every seventh interaction negative to exercise both arms
			// of the accumulator; a real embedding decides this from its own
			// interaction outcome, not from the tick count.
			if tick%7 != 0 {
				field.PositiveInteraction(k, p, tick, false)
			} else {
				field.NegativeInteraction(k, p, tick)
			}
			totalInteractions++

			coherence := field.EffectiveCoherence(vec.At(0), k)
			tension := tensionVec.At(0)
			current := phase.Classify(coherence, tension, previous, thresholds)

			if current != previous || tick%50 == 0 {
				hub.Publish(narration.TransitionEvent{
					ContextHash: k.Hash(),
					Tick:        tick,
					From:        previous,
					To:          current,
					Coherence:   coherence,
					Tension:     tension,
					At:          time.Unix(int64(tick), 0).UTC(),
				})
				line := narration.Describe(narration.TransitionEvent{
					ContextHash: k.Hash(), Tick: tick, From: previous, To: current,
					Coherence: coherence, Tension: tension, At: time.Now(),
				})
				if isTerminal {
					fmt.Println(line)
				} else {
					slog.Info("phase", "tick", tick, "phase", current.String(), "coherence", coherence, "tension", tension)
				}
			}
			previous = current

			if tick%500 == 0 {
				snap := snapshot.FromField(field, p, createdAt, tick, totalInteractions)
				if err := db.SaveSnapshot(fieldID, snap); err != nil {
					slog.Error("periodic snapshot save failed", "error", err)
				}
			}
			tick++

		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			snap := snapshot.FromField(field, p, createdAt, tick, totalInteractions)
			if err := db.SaveSnapshot(fieldID, snap); err != nil {
				slog.Error("final snapshot save failed", "error", err)
			}
			fmt.Println("trustsim stopped. Field snapshot saved.")
			return
		}
	}
}

func latestFieldID(db *persistence.DB) (uuid.UUID, error) {
	ids, err := db.ListFieldIDs()
	if err != nil {
		return uuid.UUID{}, err
	}
	if len(ids) == 0 {
		return uuid.UUID{}, fmt.Errorf("no stored fields")
	}
	return ids[0], nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

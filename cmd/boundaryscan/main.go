// Command boundaryscan runs a one-shot observe → partition → report cycle
// over a synthetic population of contexts: it seeds a boundary tracker from
// simulated sensor walkers, finds the global min-cut comfort-zone boundary,
// and normalizes the resulting affinity matrix into a doubly-stochastic
// assignment via Sinkhorn-Knopp for comparison.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/mat"

	"github.com/talgya/trustfield/internal/boundary"
	"github.com/talgya/trustfield/internal/ctxkey"
	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/sensorfield"
	"github.com/talgya/trustfield/internal/sinkhorn"
	"github.com/talgya/trustfield/internal/trust"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := envInt64OrDefault("BOUNDARYSCAN_SEED", 7)
	population := envIntOrDefault("BOUNDARYSCAN_POPULATION", 6)
	warmupTicks := envIntOrDefault("BOUNDARYSCAN_WARMUP", 40)

	slog.Info("boundaryscan starting", "seed", seed, "population", population, "warmup", warmupTicks)

	p := personality.New()
	field := trust.New(population + 4)
	b := boundary.New(population + 4)

	keys := make([]ctxkeyHolder, population)
	for i := 0; i < population; i++ {
		// Each simulated context is its own sensor walker — a distinct
		// source a real device might separate into its own comfort zone.
		walker := sensorfield.NewWalker(4, seed+int64(i)*131, 0.04)
		vec := walker.At(uint64(warmupTicks))
		k := ctxkey.New(vec)
		keys[i] = ctxkeyHolder{key: k, walker: walker}

		// Contexts in the back half of the population are deliberately
		// under-warmed, so the scan has a low-trust cluster to separate.
		ticks := warmupTicks
		if i >= population/2 {
			ticks = warmupTicks / 8
		}
		for tick := 0; tick < ticks; tick++ {
			field.PositiveInteraction(k, p, uint64(tick), false)
		}

		coherence := field.EffectiveCoherence(vec.At(0), k)
		b.ReportContextWithKey(k, coherence)
		slog.Info("context observed", "index", i, "hash", fmt.Sprintf("%016x", k.Hash()), "coherence", fmt.Sprintf("%.3f", coherence))
	}

	partition := b.Partition()
	fmt.Printf("\nboundary scan: %s contexts, min-cut weight %.4f\n", humanize.Comma(int64(b.Len())), partition.Cut)
	fmt.Printf("  comfort zone (S):    %v\n", hexList(partition.S))
	fmt.Printf("  remaining contexts:  %v\n", hexList(partition.SBar))

	if n := b.Len(); n > 1 {
		affinity := buildAffinity(keys, field, p)
		res := sinkhorn.Project(affinity, sinkhorn.DefaultConfig())
		fmt.Printf("\nsinkhorn projection: converged=%v iterations=%d\n", res.Converged, res.Iterations)
		printMatrix(affinity)
	}
}

type ctxkeyHolder struct {
	key    ctxkey.Key
	walker *sensorfield.Walker
}

// buildAffinity assembles the same pairwise cosine/coherence weighting the
// boundary tracker uses internally, exposed here as a plain matrix so it can
// be projected onto the Birkhoff polytope independently. Unlike the boundary
// graph, which has no self-edges, the diagonal is set to 1.
func buildAffinity(keys []ctxkeyHolder, field *trust.Field, p personality.Personality) *mat.Dense {
	n := len(keys)
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		ci := field.EffectiveCoherence(keys[i].key.Vector().At(0), keys[i].key)
		for j := 0; j < n; j++ {
			if i == j {
				data[i*n+j] = 1
				continue
			}
			cj := field.EffectiveCoherence(keys[j].key.Vector().At(0), keys[j].key)
			cos := ctxkey.Cosine(keys[i].key.Vector(), keys[j].key.Vector())
			c := ci
			if cj < c {
				c = cj
			}
			data[i*n+j] = cos * c
		}
	}
	return mat.NewDense(n, n, data)
}

func printMatrix(m *mat.Dense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			fmt.Printf("%6.3f ", m.At(i, j))
		}
		fmt.Println()
	}
}

func hexList(hashes []uint64) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = fmt.Sprintf("%016x", h)
	}
	return out
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

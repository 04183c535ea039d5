// Package sinkhorn implements the Sinkhorn–Knopp projection of a
// non-negative square matrix onto the Birkhoff polytope (the set of
// doubly-stochastic matrices) via alternating row/column normalisation.
// See design doc Section 4.7.
package sinkhorn

import "gonum.org/v1/gonum/mat"

// Config holds the convergence parameters.
type Config struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultConfig returns the spec's default configuration: 100 iterations, 1e-6 tolerance.
func DefaultConfig() Config {
	return Config{MaxIterations: 100, Tolerance: 1e-6}
}

// Result reports whether Project converged, and after how many iterations.
type Result struct {
	Converged  bool
	Iterations int
}

// Project mutates m in place, alternately row- and column-normalising it
// until every non-zero row and column sums to 1 within cfg.Tolerance, or
// cfg.MaxIterations is exhausted. A row or column that sums to exactly zero
// is left as zeros and excluded from the convergence check.
func Project(m *mat.Dense, cfg Config) Result {
	rows, cols := m.Dims()

	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		normalizeRows(m, rows, cols)
		normalizeCols(m, rows, cols)

		if withinTolerance(m, rows, cols, cfg.Tolerance) {
			return Result{Converged: true, Iterations: iter}
		}
	}

	return Result{Converged: false, Iterations: cfg.MaxIterations}
}

func normalizeRows(m *mat.Dense, rows, cols int) {
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += m.At(i, j)
		}
		if sum == 0 {
			continue
		}
		for j := 0; j < cols; j++ {
			m.Set(i, j, m.At(i, j)/sum)
		}
	}
}

func normalizeCols(m *mat.Dense, rows, cols int) {
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		if sum == 0 {
			continue
		}
		for i := 0; i < rows; i++ {
			m.Set(i, j, m.At(i, j)/sum)
		}
	}
}

// withinTolerance reports whether every non-zero row and column sums to
// 1±tolerance.
func withinTolerance(m *mat.Dense, rows, cols int, tolerance float64) bool {
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += m.At(i, j)
		}
		if sum == 0 {
			continue
		}
		if abs(sum-1) > tolerance {
			return false
		}
	}
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		if sum == 0 {
			continue
		}
		if abs(sum-1) > tolerance {
			return false
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

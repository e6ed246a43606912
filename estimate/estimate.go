// Package estimate computes order-statistic compute-unit estimates from
// measurement samples. Every reported value is one of the observed
// samples; there is no interpolation and no model beyond sorting.
package estimate

import (
	"errors"
	"sort"
)

// ErrEmptySampleSet is returned when statistics are requested over zero
// samples. Callers must guard sample counts before measuring.
var ErrEmptySampleSet = errors.New("estimate: empty sample set")

// Kind tags statistics with the benchmark variant they describe. The
// type and name strings are part of the report wire contract.
type Kind struct {
	Type string
	Name string
}

// InstructionKind tags statistics for a single-instruction benchmark.
func InstructionKind(name string) Kind {
	return Kind{Type: "instruction", Name: name}
}

// TransactionKind tags statistics for a whole-transaction benchmark.
func TransactionKind(name string) Kind {
	return Kind{Type: "transaction", Name: name}
}

// Stats holds compute-unit percentile statistics for one benchmark
// subject. It is immutable after creation; the field names are part of
// the external report contract.
type Stats struct {
	BenchmarkType string `json:"benchmark_type"`
	BenchmarkName string `json:"benchmark_name"`
	// Minimum observed CU usage (0th percentile).
	Min uint64 `json:"min"`
	// Conservative estimate (25th percentile).
	Conservative uint64 `json:"conservative"`
	// Balanced estimate (50th percentile).
	Balanced uint64 `json:"balanced"`
	// Safe estimate (75th percentile).
	Safe uint64 `json:"safe"`
	// Very high estimate (95th percentile).
	VeryHigh uint64 `json:"very_high"`
	// Maximum observed CU usage (100th percentile).
	UnsafeMax uint64 `json:"unsafe_max"`
	// Number of executed measurement passes behind this estimate.
	SampleSize int `json:"sample_size"`
}

// FromMeasurements derives statistics from a series of CU measurements.
// The input is not mutated. Each named percentile P is read from index
// (len-1)*P/100 of the ascending-sorted samples; small sample sets
// therefore bias toward lower observations rather than interpolating.
func FromMeasurements(kind Kind, measurements []uint64) (Stats, error) {
	if len(measurements) == 0 {
		return Stats{}, ErrEmptySampleSet
	}

	sorted := make([]uint64, len(measurements))
	copy(sorted, measurements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	return Stats{
		BenchmarkType: kind.Type,
		BenchmarkName: kind.Name,
		Min:           sorted[0],
		Conservative:  sorted[(n-1)*25/100],
		Balanced:      sorted[(n-1)*50/100],
		Safe:          sorted[(n-1)*75/100],
		VeryHigh:      sorted[(n-1)*95/100],
		UnsafeMax:     sorted[n-1],
		SampleSize:    n,
	}, nil
}

type levelKind uint8

const (
	levelMin levelKind = iota
	levelConservative
	levelBalanced
	levelSafe
	levelVeryHigh
	levelUnsafeMax
	levelCustom
	levelMultiplier
)

// Level selects a confidence level for a CU estimate: one of the fixed
// named percentile levels, an absolute custom value, or a multiplier
// applied to the balanced estimate.
type Level struct {
	kind   levelKind
	value  uint64
	factor float64
}

var (
	// Min is the minimum observed usage. Absolute lower bound.
	Min = Level{kind: levelMin}
	// Conservative is the 25th percentile. Safe for most cases.
	Conservative = Level{kind: levelConservative}
	// Balanced is the 50th percentile. Good default.
	Balanced = Level{kind: levelBalanced}
	// Safe is the 75th percentile. High reliability.
	Safe = Level{kind: levelSafe}
	// VeryHigh is the 95th percentile. Very reliable.
	VeryHigh = Level{kind: levelVeryHigh}
	// UnsafeMax is the maximum observed usage. May be unnecessarily high.
	UnsafeMax = Level{kind: levelUnsafeMax}
)

// Custom selects an exact CU value, independent of sample data.
func Custom(cu uint64) Level {
	return Level{kind: levelCustom, value: cu}
}

// Multiplier scales the balanced estimate by factor, truncated toward
// zero. Negative factors yield zero.
func Multiplier(factor float64) Level {
	return Level{kind: levelMultiplier, factor: factor}
}

// ForLevel returns the CU estimate for the given confidence level.
func (s Stats) ForLevel(level Level) uint64 {
	switch level.kind {
	case levelMin:
		return s.Min
	case levelConservative:
		return s.Conservative
	case levelBalanced:
		return s.Balanced
	case levelSafe:
		return s.Safe
	case levelVeryHigh:
		return s.VeryHigh
	case levelUnsafeMax:
		return s.UnsafeMax
	case levelCustom:
		return level.value
	case levelMultiplier:
		if level.factor < 0 {
			return 0
		}
		return uint64(float64(s.Balanced) * level.factor)
	default:
		return s.Balanced
	}
}

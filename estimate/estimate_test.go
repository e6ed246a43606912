package estimate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromMeasurements_SimpleCase(t *testing.T) {
	// 100 values: 1, 2, 3, ..., 100
	measurements := make([]uint64, 0, 100)
	for i := uint64(1); i <= 100; i++ {
		measurements = append(measurements, i)
	}

	stats, err := FromMeasurements(InstructionKind("test"), measurements)
	require.NoError(t, err)

	// Percentile index is (N-1)*P/100: (100-1)*25/100 = 24 -> value 25, etc.
	require.Equal(t, uint64(1), stats.Min)
	require.Equal(t, uint64(25), stats.Conservative)
	require.Equal(t, uint64(50), stats.Balanced)
	require.Equal(t, uint64(75), stats.Safe)
	require.Equal(t, uint64(95), stats.VeryHigh)
	require.Equal(t, uint64(100), stats.UnsafeMax)
	require.Equal(t, 100, stats.SampleSize)
}

func TestFromMeasurements_SmallDataset(t *testing.T) {
	stats, err := FromMeasurements(TransactionKind("small_test"), []uint64{10, 20, 30, 40})
	require.NoError(t, err)

	// (4-1)*25/100 = 0 -> 10, (4-1)*50/100 = 1 -> 20,
	// (4-1)*75/100 = 2 -> 30, (4-1)*95/100 = 2 -> 30
	require.Equal(t, uint64(10), stats.Min)
	require.Equal(t, uint64(10), stats.Conservative)
	require.Equal(t, uint64(20), stats.Balanced)
	require.Equal(t, uint64(30), stats.Safe)
	require.Equal(t, uint64(30), stats.VeryHigh)
	require.Equal(t, uint64(40), stats.UnsafeMax)
	require.Equal(t, 4, stats.SampleSize)
}

func TestFromMeasurements_SingleValue(t *testing.T) {
	stats, err := FromMeasurements(InstructionKind("single"), []uint64{42})
	require.NoError(t, err)

	// All percentiles collapse onto the only sample
	require.Equal(t, uint64(42), stats.Min)
	require.Equal(t, uint64(42), stats.Conservative)
	require.Equal(t, uint64(42), stats.Balanced)
	require.Equal(t, uint64(42), stats.Safe)
	require.Equal(t, uint64(42), stats.VeryHigh)
	require.Equal(t, uint64(42), stats.UnsafeMax)
	require.Equal(t, 1, stats.SampleSize)
}

func TestFromMeasurements_DuplicateValues(t *testing.T) {
	measurements := []uint64{5, 5, 5, 10, 10, 15, 20, 20, 20, 20}
	stats, err := FromMeasurements(TransactionKind("duplicates"), measurements)
	require.NoError(t, err)

	// Sorted indices 0..9: (10-1)*25/100 = 2 -> 5, *50 = 4 -> 10,
	// *75 = 6 -> 20, *95 = 8 -> 20
	require.Equal(t, uint64(5), stats.Min)
	require.Equal(t, uint64(5), stats.Conservative)
	require.Equal(t, uint64(10), stats.Balanced)
	require.Equal(t, uint64(20), stats.Safe)
	require.Equal(t, uint64(20), stats.VeryHigh)
	require.Equal(t, uint64(20), stats.UnsafeMax)
	require.Equal(t, 10, stats.SampleSize)
}

func TestFromMeasurements_UnsortedInput(t *testing.T) {
	measurements := []uint64{100, 10, 50, 30, 80, 20, 90, 40, 70, 60}
	stats, err := FromMeasurements(InstructionKind("unsorted"), measurements)
	require.NoError(t, err)

	require.Equal(t, uint64(10), stats.Min)
	require.Equal(t, uint64(30), stats.Conservative)
	require.Equal(t, uint64(50), stats.Balanced)
	require.Equal(t, uint64(70), stats.Safe)
	require.Equal(t, uint64(90), stats.VeryHigh)
	require.Equal(t, uint64(100), stats.UnsafeMax)
	require.Equal(t, 10, stats.SampleSize)

	// The input slice must not be reordered by the estimator.
	require.Equal(t, []uint64{100, 10, 50, 30, 80, 20, 90, 40, 70, 60}, measurements)
}

func TestFromMeasurements_OrderInvariance(t *testing.T) {
	ascending := []uint64{10, 20, 30, 40, 50}
	descending := []uint64{50, 40, 30, 20, 10}

	a, err := FromMeasurements(InstructionKind("perm"), ascending)
	require.NoError(t, err)
	b, err := FromMeasurements(InstructionKind("perm"), descending)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFromMeasurements_Empty(t *testing.T) {
	_, err := FromMeasurements(InstructionKind("empty"), nil)
	require.ErrorIs(t, err, ErrEmptySampleSet)
}

func TestForLevel(t *testing.T) {
	stats, err := FromMeasurements(InstructionKind("level_test"), []uint64{10, 20, 30, 40, 50})
	require.NoError(t, err)

	require.Equal(t, stats.Min, stats.ForLevel(Min))
	require.Equal(t, stats.Conservative, stats.ForLevel(Conservative))
	require.Equal(t, stats.Balanced, stats.ForLevel(Balanced))
	require.Equal(t, stats.Safe, stats.ForLevel(Safe))
	require.Equal(t, stats.VeryHigh, stats.ForLevel(VeryHigh))
	require.Equal(t, stats.UnsafeMax, stats.ForLevel(UnsafeMax))
	require.Equal(t, uint64(999), stats.ForLevel(Custom(999)))
}

func TestForLevel_Multiplier(t *testing.T) {
	stats, err := FromMeasurements(InstructionKind("mult"), []uint64{10, 20, 30, 40, 50})
	require.NoError(t, err)
	require.Equal(t, uint64(30), stats.Balanced)

	tests := []struct {
		name   string
		factor float64
		want   uint64
	}{
		{name: "double", factor: 2.0, want: 60},
		{name: "identity", factor: 1.0, want: 30},
		{name: "truncates toward zero", factor: 1.5, want: 45},
		{name: "fractional truncation", factor: 0.33, want: 9},
		{name: "zero", factor: 0, want: 0},
		{name: "negative clamps to zero", factor: -1.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, stats.ForLevel(Multiplier(tt.factor)))
		})
	}
}

package bench

// This file contains the benchmark runner: one environment setup, one
// simulated discovery pass, then N sequential executed measurement
// passes over the same warm environment.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cubench/cubench/estimate"
	"github.com/cubench/cubench/svm"
)

// generator identifies the tool in emitted reports.
var generator = "cubench@dev"

// SetGenerator overrides the generated_by identity, typically with the
// release version.
func SetGenerator(identity string) {
	generator = identity
}

// Runner executes benchmark definitions and produces result records.
type Runner struct {
	logger zerolog.Logger
}

// NewRunner creates a runner that logs measurement progress to logger.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// BenchmarkInstruction runs an instruction benchmark: environment setup
// once, context discovery once (simulated), then samples executed
// measurement passes. Passes run strictly in order and share the
// environment; each pass relies on the committed state of all prior
// passes. The first failed pass aborts the run with no partial result,
// since a partial sample set would silently understate variance.
func (r *Runner) BenchmarkInstruction(b InstructionBenchmark, samples int) (*InstructionResult, error) {
	if samples < 1 {
		return nil, ErrInvalidSampleCount
	}

	env, err := b.SetupEnvironment()
	if err != nil {
		return nil, fmt.Errorf("environment setup failed: %w", err)
	}

	execContext, err := DiscoverInstructionContext(b, env)
	if err != nil {
		return nil, err
	}

	measurements := make([]uint64, 0, samples)
	for i := 0; i < samples; i++ {
		cu, err := r.measureInstruction(b, env)
		if err != nil {
			return nil, fmt.Errorf("measurement pass %d failed: %w", i+1, err)
		}
		measurements = append(measurements, cu)

		if (i+1)%10 == 0 {
			r.logger.Info().Int("completed", i+1).Msg("Completed measurements")
		}
	}

	stats, err := estimate.FromMeasurements(estimate.InstructionKind(b.InstructionName()), measurements)
	if err != nil {
		return nil, err
	}

	return &InstructionResult{
		InstructionName:  b.InstructionName(),
		CUEstimate:       stats,
		ExecutionContext: *execContext,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		GeneratedBy:      generator,
	}, nil
}

// BenchmarkTransaction runs a transaction workflow benchmark with the
// same phase ordering as BenchmarkInstruction. The benchmark's builder
// is re-invoked for every pass so each transaction carries a fresh
// blockhash and reflects the current environment state.
func (r *Runner) BenchmarkTransaction(b TransactionBenchmark, samples int) (*TransactionResult, error) {
	if samples < 1 {
		return nil, ErrInvalidSampleCount
	}

	env, err := b.SetupEnvironment()
	if err != nil {
		return nil, fmt.Errorf("environment setup failed: %w", err)
	}

	contextTx, err := b.BuildTransaction(env)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	execContext, err := DiscoverTransactionContext(contextTx, b.TransactionName(), env, b.AddressBook())
	if err != nil {
		return nil, err
	}

	measurements := make([]uint64, 0, samples)
	for i := 0; i < samples; i++ {
		tx, err := b.BuildTransaction(env)
		if err != nil {
			return nil, fmt.Errorf("measurement pass %d failed to build transaction: %w", i+1, err)
		}
		res, err := env.Execute(tx)
		if err != nil {
			return nil, fmt.Errorf("measurement pass %d failed: %w", i+1, err)
		}
		measurements = append(measurements, res.ComputeUnitsConsumed)

		if (i+1)%10 == 0 {
			r.logger.Info().Int("completed", i+1).Msg("Completed measurements")
		}
	}

	stats, err := estimate.FromMeasurements(estimate.TransactionKind(b.TransactionName()), measurements)
	if err != nil {
		return nil, err
	}

	return &TransactionResult{
		TransactionName:  b.TransactionName(),
		CUEstimate:       stats,
		ExecutionContext: *execContext,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		GeneratedBy:      generator,
	}, nil
}

// measureInstruction crafts a fresh unit of work and executes it,
// committing state, and returns the reported cost.
func (r *Runner) measureInstruction(b InstructionBenchmark, env svm.Environment) (uint64, error) {
	signed, err := craftInstructionTransaction(b, env)
	if err != nil {
		return 0, err
	}
	res, err := env.Execute(signed)
	if err != nil {
		return 0, err
	}
	return res.ComputeUnitsConsumed, nil
}

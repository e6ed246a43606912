// Package bench contains the two-phase benchmarking engine: benchmark
// definitions, the runner that orchestrates one discovery pass and N
// measurement passes against a single environment instance, the
// execution-context extractor, and the result report writer.
package bench

import (
	"errors"

	"github.com/cubench/cubench/svm"
)

var (
	// ErrInvalidSampleCount is returned when fewer than one measurement
	// pass is requested.
	ErrInvalidSampleCount = errors.New("bench: sample count must be at least 1")
	// ErrNoSigners is returned when a benchmark yields a unit of work
	// with no required signers.
	ErrNoSigners = errors.New("bench: benchmark produced no required signers")
)

// InstructionBenchmark defines a single-instruction benchmark. The
// definition owns everything a run needs: a one-time environment setup,
// a builder invoked once per pass, signing, and display metadata. A
// definition is consumed by one run and then discarded; environment
// state accumulates across passes by design, so reuse across runs would
// measure different warm states.
type InstructionBenchmark interface {
	// InstructionName names the benchmark subject in reports.
	InstructionName() string

	// SetupEnvironment constructs the environment this run exclusively
	// owns. Called exactly once, before discovery.
	SetupEnvironment() (svm.Environment, error)

	// BuildInstruction produces a fresh target instruction plus the
	// pubkeys that must sign it. The first pubkey pays the fee. Called
	// once per pass; implementations must not cache the instruction.
	BuildInstruction(env svm.Environment) (svm.Instruction, []svm.Pubkey, error)

	// SignTransaction signs the unsigned transaction the engine crafted
	// around the target instruction.
	SignTransaction(tx *svm.Transaction) (*svm.Transaction, error)

	// AddressBook maps program ids to display names for reports. May
	// be nil; unknown programs fall back to their base58 form.
	AddressBook() map[svm.Pubkey]string
}

// TransactionBenchmark defines a whole-transaction workflow benchmark.
// Unlike the instruction variant, the definition builds and signs the
// complete transaction itself, including blockhash handling.
type TransactionBenchmark interface {
	// TransactionName names the workflow in reports.
	TransactionName() string

	// SetupEnvironment constructs the environment this run exclusively
	// owns. Called exactly once, before discovery.
	SetupEnvironment() (svm.Environment, error)

	// BuildTransaction produces a fresh signed transaction with a
	// current blockhash. Called once for discovery and once per
	// measurement pass.
	BuildTransaction(env svm.Environment) (*svm.Transaction, error)

	// AddressBook maps program ids to display names for reports.
	AddressBook() map[svm.Pubkey]string
}

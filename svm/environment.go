package svm

// This file contains the environment capability surface the benchmark
// engine consumes. Exactly four capabilities are used: environment
// construction (a concrete constructor, e.g. svmtest.New), simulation,
// execution, and blockhash expiry/readback. CurrentSlot is a read of
// environment state reported alongside the blockhash.

// InnerInstruction is one nested call observed during simulation,
// attributed to a program other than the directly addressed one.
type InnerInstruction struct {
	Instruction CompiledInstruction
	// StackHeight is 1 for top-level instructions, 2 for their nested
	// calls, and so on.
	StackHeight uint8
}

// SimulationResult is what a simulate pass reports: effects without
// committed state. InnerInstructions holds one set per top-level
// instruction, in instruction order.
type SimulationResult struct {
	Logs                 []string
	ComputeUnitsConsumed uint64
	InnerInstructions    [][]InnerInstruction
}

// ExecutionResult is what an execute pass reports after committing state.
type ExecutionResult struct {
	Logs                 []string
	ComputeUnitsConsumed uint64
}

// Environment is the embedded VM instance a benchmark run exclusively
// owns. Implementations are not required to be safe for concurrent use;
// the engine never issues concurrent calls against one instance.
type Environment interface {
	// Simulate evaluates a signed transaction and reports its effects
	// without committing state changes.
	Simulate(tx *Transaction) (*SimulationResult, error)

	// Execute processes a signed transaction and commits its state
	// changes.
	Execute(tx *Transaction) (*ExecutionResult, error)

	// ExpireBlockhash invalidates the current blockhash and installs a
	// fresh one, so newly crafted work cannot collide with prior
	// processed work.
	ExpireBlockhash()

	// LatestBlockhash returns the current blockhash.
	LatestBlockhash() Hash

	// CurrentSlot returns the current runtime slot.
	CurrentSlot() uint64
}

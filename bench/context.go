package bench

// This file contains execution-context discovery: a single simulated
// pass that extracts which programs a unit of work touches, the nested
// calls it triggers, and the logs it produces. Discovery always
// simulates and never executes, so it cannot perturb the state the
// measurement passes depend on.

import (
	"fmt"

	"github.com/cubench/cubench/svm"
)

// SVMContext captures the environment state at discovery time.
type SVMContext struct {
	CurrentSlot     uint64   `json:"current_slot"`
	LatestBlockhash svm.Hash `json:"latest_blockhash"`
}

// ProgramContext describes the directly addressed program of an
// instruction benchmark.
type ProgramContext struct {
	ProgramID   svm.Pubkey `json:"program_id"`
	ProgramName string     `json:"program_name"`
	// CPICount is the number of nested calls the simulation reported.
	CPICount int `json:"cpi_count"`
}

// ProgramInfo describes one program involved in a workflow.
type ProgramInfo struct {
	ProgramID   svm.Pubkey `json:"program_id"`
	ProgramName string     `json:"program_name"`
	// InstructionCount is how many invocations (direct and nested)
	// addressed this program.
	InstructionCount int `json:"instruction_count"`
}

// WorkflowContext describes a multi-program transaction workflow.
type WorkflowContext struct {
	WorkflowName     string        `json:"workflow_name"`
	InvolvedPrograms []ProgramInfo `json:"involved_programs"`
	// CPISequence lists program display names in call order; nested
	// calls carry a _cpi suffix.
	CPISequence   []string `json:"cpi_sequence"`
	TotalCPICalls int      `json:"total_cpi_calls"`
}

// ExecutionStats holds the raw observations of the discovery pass.
type ExecutionStats struct {
	Logs        []string `json:"logs"`
	SimulatedCU uint64   `json:"simulated_cu"`
}

// InstructionContext is the execution context discovered for an
// instruction benchmark. Immutable once returned.
type InstructionContext struct {
	SVMContext     SVMContext     `json:"svm_context"`
	ProgramContext ProgramContext `json:"program_context"`
	ExecutionStats ExecutionStats `json:"execution_stats"`
}

// TransactionContext is the execution context discovered for a
// transaction workflow. Immutable once returned.
type TransactionContext struct {
	SVMContext      SVMContext      `json:"svm_context"`
	WorkflowContext WorkflowContext `json:"workflow_context"`
	ExecutionStats  ExecutionStats  `json:"execution_stats"`
}

// DiscoverInstructionContext crafts one unit of work from the benchmark
// and simulates it to extract its execution context. Simulation failure
// is fatal: a benchmark whose crafted call cannot even be simulated is
// misconfigured.
func DiscoverInstructionContext(b InstructionBenchmark, env svm.Environment) (*InstructionContext, error) {
	signed, err := craftInstructionTransaction(b, env)
	if err != nil {
		return nil, err
	}

	sim, err := env.Simulate(signed)
	if err != nil {
		return nil, fmt.Errorf("context discovery simulation failed: %w", err)
	}

	msg := signed.Message
	programID := msg.Program(0)
	return &InstructionContext{
		SVMContext: SVMContext{
			CurrentSlot:     env.CurrentSlot(),
			LatestBlockhash: env.LatestBlockhash(),
		},
		ProgramContext: ProgramContext{
			ProgramID:   programID,
			ProgramName: lookupProgramName(programID, b.AddressBook()),
			CPICount:    countInnerCalls(sim),
		},
		ExecutionStats: extractExecutionStats(sim),
	}, nil
}

// DiscoverTransactionContext simulates an already-built transaction and
// extracts the workflow context: per-program invocation counts and the
// ordered call sequence over direct and nested calls.
func DiscoverTransactionContext(tx *svm.Transaction, workflowName string, env svm.Environment, addressBook map[svm.Pubkey]string) (*TransactionContext, error) {
	sim, err := env.Simulate(tx)
	if err != nil {
		return nil, fmt.Errorf("context discovery simulation failed: %w", err)
	}

	return &TransactionContext{
		SVMContext: SVMContext{
			CurrentSlot:     env.CurrentSlot(),
			LatestBlockhash: env.LatestBlockhash(),
		},
		WorkflowContext: extractWorkflowContext(tx, sim, workflowName, addressBook),
		ExecutionStats:  extractExecutionStats(sim),
	}, nil
}

// craftInstructionTransaction wraps the benchmark's target instruction
// into a signed single-operation transaction with a fresh blockhash.
// The measurement loop uses the identical crafting path so that
// discovery and measurement observe structurally equivalent work.
func craftInstructionTransaction(b InstructionBenchmark, env svm.Environment) (*svm.Transaction, error) {
	targetIx, signerPubkeys, err := b.BuildInstruction(env)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	if len(signerPubkeys) == 0 {
		return nil, ErrNoSigners
	}

	// A fresh blockhash per pass keeps each transaction distinct from
	// all previously processed work.
	env.ExpireBlockhash()

	msg := svm.NewMessage([]svm.Instruction{targetIx}, signerPubkeys[0])
	msg.RecentBlockhash = env.LatestBlockhash()

	signed, err := b.SignTransaction(svm.NewUnsignedTransaction(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

func extractWorkflowContext(tx *svm.Transaction, sim *svm.SimulationResult, workflowName string, addressBook map[svm.Pubkey]string) WorkflowContext {
	usage := make(map[svm.Pubkey]int)
	var usageOrder []svm.Pubkey
	var sequence []string

	count := func(programID svm.Pubkey) {
		if _, seen := usage[programID]; !seen {
			usageOrder = append(usageOrder, programID)
		}
		usage[programID]++
	}

	msg := tx.Message
	for i := range msg.Instructions {
		programID := msg.Program(i)
		count(programID)
		sequence = append(sequence, lookupProgramName(programID, addressBook))
	}

	for _, innerSet := range sim.InnerInstructions {
		for _, inner := range innerSet {
			programID := msg.AccountKeys[inner.Instruction.ProgramIDIndex]
			count(programID)
			sequence = append(sequence, lookupProgramName(programID, addressBook)+"_cpi")
		}
	}

	involved := make([]ProgramInfo, 0, len(usageOrder))
	for _, programID := range usageOrder {
		involved = append(involved, ProgramInfo{
			ProgramID:        programID,
			ProgramName:      lookupProgramName(programID, addressBook),
			InstructionCount: usage[programID],
		})
	}

	return WorkflowContext{
		WorkflowName:     workflowName,
		InvolvedPrograms: involved,
		CPISequence:      sequence,
		TotalCPICalls:    countInnerCalls(sim),
	}
}

func extractExecutionStats(sim *svm.SimulationResult) ExecutionStats {
	return ExecutionStats{
		Logs:        sim.Logs,
		SimulatedCU: sim.ComputeUnitsConsumed,
	}
}

func countInnerCalls(sim *svm.SimulationResult) int {
	var n int
	for _, set := range sim.InnerInstructions {
		n += len(set)
	}
	return n
}

// lookupProgramName resolves a display name with graceful fallback; it
// never fails, even for programs absent from the address book.
func lookupProgramName(programID svm.Pubkey, addressBook map[svm.Pubkey]string) string {
	if name, ok := addressBook[programID]; ok {
		return name
	}
	return programID.String()
}

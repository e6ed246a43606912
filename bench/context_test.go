package bench

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubench/cubench/svm"
	"github.com/cubench/cubench/svm/svmtest"
)

// stubEnv returns a canned simulation result without running anything.
type stubEnv struct {
	slot      uint64
	blockhash svm.Hash
	sim       *svm.SimulationResult
	simErr    error
}

func (e *stubEnv) Simulate(*svm.Transaction) (*svm.SimulationResult, error) {
	if e.simErr != nil {
		return nil, e.simErr
	}
	return e.sim, nil
}

func (e *stubEnv) Execute(*svm.Transaction) (*svm.ExecutionResult, error) {
	return nil, errors.New("stub environment does not execute")
}

func (e *stubEnv) ExpireBlockhash()          {}
func (e *stubEnv) LatestBlockhash() svm.Hash { return e.blockhash }
func (e *stubEnv) CurrentSlot() uint64       { return e.slot }

// workflowFixture is a transaction whose message carries one top-level
// instruction addressing programX, with a simulation reporting two
// nested calls into programY.
func workflowFixture(t *testing.T) (*svm.Transaction, *stubEnv, svm.Pubkey, svm.Pubkey) {
	t.Helper()
	payer, err := svm.NewKeypair()
	require.NoError(t, err)
	programX := svm.Pubkey{1}
	programY := svm.Pubkey{2}

	tx := svm.NewUnsignedTransaction(&svm.Message{
		NumRequiredSignatures: 1,
		AccountKeys:           []svm.Pubkey{payer.Pubkey(), programX, programY},
		Instructions: []svm.CompiledInstruction{
			{ProgramIDIndex: 1},
		},
	})

	env := &stubEnv{
		slot:      7,
		blockhash: svm.Hash{9},
		sim: &svm.SimulationResult{
			Logs:                 []string{"Program X invoke [1]"},
			ComputeUnitsConsumed: 1234,
			InnerInstructions: [][]svm.InnerInstruction{
				{
					{Instruction: svm.CompiledInstruction{ProgramIDIndex: 2}, StackHeight: 2},
					{Instruction: svm.CompiledInstruction{ProgramIDIndex: 2}, StackHeight: 2},
				},
			},
		},
	}
	return tx, env, programX, programY
}

func TestDiscoverTransactionContext(t *testing.T) {
	tx, env, programX, programY := workflowFixture(t)
	addressBook := map[svm.Pubkey]string{programX: "alpha", programY: "beta"}

	ctx, err := DiscoverTransactionContext(tx, "two_step", env, addressBook)
	require.NoError(t, err)

	require.Equal(t, uint64(7), ctx.SVMContext.CurrentSlot)
	require.Equal(t, svm.Hash{9}, ctx.SVMContext.LatestBlockhash)

	wf := ctx.WorkflowContext
	require.Equal(t, "two_step", wf.WorkflowName)
	require.Equal(t, []ProgramInfo{
		{ProgramID: programX, ProgramName: "alpha", InstructionCount: 1},
		{ProgramID: programY, ProgramName: "beta", InstructionCount: 2},
	}, wf.InvolvedPrograms)
	require.Equal(t, []string{"alpha", "beta_cpi", "beta_cpi"}, wf.CPISequence)
	require.Equal(t, 2, wf.TotalCPICalls)

	require.Equal(t, []string{"Program X invoke [1]"}, ctx.ExecutionStats.Logs)
	require.Equal(t, uint64(1234), ctx.ExecutionStats.SimulatedCU)
}

func TestDiscoverTransactionContext_Base58Fallback(t *testing.T) {
	tx, env, programX, programY := workflowFixture(t)

	// No address book at all: names fall back to the base58 program id.
	ctx, err := DiscoverTransactionContext(tx, "anonymous", env, nil)
	require.NoError(t, err)

	wf := ctx.WorkflowContext
	require.Equal(t, programX.String(), wf.InvolvedPrograms[0].ProgramName)
	require.Equal(t, programY.String(), wf.InvolvedPrograms[1].ProgramName)
	require.Equal(t, []string{
		programX.String(),
		programY.String() + "_cpi",
		programY.String() + "_cpi",
	}, wf.CPISequence)
}

func TestDiscoverTransactionContext_SimulationFailure(t *testing.T) {
	tx, env, _, _ := workflowFixture(t)
	env.simErr = errors.New("blockhash expired")

	_, err := DiscoverTransactionContext(tx, "broken", env, nil)
	require.ErrorContains(t, err, "context discovery simulation failed")
	require.ErrorContains(t, err, "blockhash expired")
}

func TestDiscoverInstructionContext(t *testing.T) {
	b := newTransferBenchmark(t, 1_000_000)
	env, err := b.SetupEnvironment()
	require.NoError(t, err)
	testEnv := env.(*svmtest.Environment)
	payerBefore := testEnv.Balance(b.payer.Pubkey())

	ctx, err := DiscoverInstructionContext(b, env)
	require.NoError(t, err)

	require.Equal(t, svmtest.SystemProgramID, ctx.ProgramContext.ProgramID)
	require.Equal(t, "system_program", ctx.ProgramContext.ProgramName)
	require.Equal(t, 0, ctx.ProgramContext.CPICount)

	require.Equal(t, env.CurrentSlot(), ctx.SVMContext.CurrentSlot)
	require.Equal(t, env.LatestBlockhash(), ctx.SVMContext.LatestBlockhash)
	require.Equal(t, uint64(svmtest.TransferComputeUnits), ctx.ExecutionStats.SimulatedCU)
	require.NotEmpty(t, ctx.ExecutionStats.Logs)

	// Discovery simulates only; no lamports moved.
	require.Equal(t, payerBefore, testEnv.Balance(b.payer.Pubkey()))
}

type noSignerBenchmark struct {
	*transferBenchmark
}

func (b noSignerBenchmark) BuildInstruction(env svm.Environment) (svm.Instruction, []svm.Pubkey, error) {
	ix, _, err := b.transferBenchmark.BuildInstruction(env)
	return ix, nil, err
}

func TestDiscoverInstructionContext_NoSigners(t *testing.T) {
	b := noSignerBenchmark{newTransferBenchmark(t, 1_000_000)}
	env, err := b.SetupEnvironment()
	require.NoError(t, err)

	_, err = DiscoverInstructionContext(b, env)
	require.ErrorIs(t, err, ErrNoSigners)
}

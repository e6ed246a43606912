package svmtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubench/cubench/svm"
)

func signedTransfer(t *testing.T, env *Environment, payer *svm.Keypair, to svm.Pubkey, lamports uint64) *svm.Transaction {
	t.Helper()
	ix := NewTransferInstruction(payer.Pubkey(), to, lamports)
	msg := svm.NewMessage([]svm.Instruction{ix}, payer.Pubkey())
	msg.RecentBlockhash = env.LatestBlockhash()
	tx := svm.NewUnsignedTransaction(msg)
	require.NoError(t, tx.Sign(payer))
	return tx
}

func TestExecuteTransfer(t *testing.T) {
	env := New()
	payer, err := svm.NewKeypair()
	require.NoError(t, err)
	recipient, err := svm.NewKeypair()
	require.NoError(t, err)

	env.Airdrop(payer.Pubkey(), 1_000_000)

	tx := signedTransfer(t, env, payer, recipient.Pubkey(), 400_000)
	res, err := env.Execute(tx)
	require.NoError(t, err)

	require.Equal(t, uint64(TransferComputeUnits), res.ComputeUnitsConsumed)
	require.NotEmpty(t, res.Logs)
	require.Equal(t, uint64(600_000), env.Balance(payer.Pubkey()))
	require.Equal(t, uint64(400_000), env.Balance(recipient.Pubkey()))
}

func TestSimulateDoesNotCommit(t *testing.T) {
	env := New()
	payer, err := svm.NewKeypair()
	require.NoError(t, err)
	recipient, err := svm.NewKeypair()
	require.NoError(t, err)

	env.Airdrop(payer.Pubkey(), 1_000_000)

	tx := signedTransfer(t, env, payer, recipient.Pubkey(), 400_000)
	sim, err := env.Simulate(tx)
	require.NoError(t, err)
	require.Equal(t, uint64(TransferComputeUnits), sim.ComputeUnitsConsumed)

	// Balances are untouched and the same transaction still executes.
	require.Equal(t, uint64(1_000_000), env.Balance(payer.Pubkey()))
	require.Equal(t, uint64(0), env.Balance(recipient.Pubkey()))

	_, err = env.Execute(tx)
	require.NoError(t, err)
	require.Equal(t, uint64(600_000), env.Balance(payer.Pubkey()))
}

func TestExecuteRejectsReplayAndStaleBlockhash(t *testing.T) {
	env := New()
	payer, err := svm.NewKeypair()
	require.NoError(t, err)
	recipient, err := svm.NewKeypair()
	require.NoError(t, err)

	env.Airdrop(payer.Pubkey(), 1_000_000)

	tx := signedTransfer(t, env, payer, recipient.Pubkey(), 100)
	_, err = env.Execute(tx)
	require.NoError(t, err)

	_, err = env.Execute(tx)
	require.ErrorContains(t, err, "already processed")

	stale := signedTransfer(t, env, payer, recipient.Pubkey(), 200)
	env.ExpireBlockhash()
	_, err = env.Execute(stale)
	require.ErrorContains(t, err, "not found")
}

func TestExecuteInsufficientFunds(t *testing.T) {
	env := New()
	payer, err := svm.NewKeypair()
	require.NoError(t, err)
	recipient, err := svm.NewKeypair()
	require.NoError(t, err)

	env.Airdrop(payer.Pubkey(), 50)

	tx := signedTransfer(t, env, payer, recipient.Pubkey(), 100)
	_, err = env.Execute(tx)
	require.ErrorContains(t, err, "insufficient funds")
}

func TestExpireBlockhashAdvancesSlot(t *testing.T) {
	env := New()
	slot := env.CurrentSlot()
	hash := env.LatestBlockhash()

	env.ExpireBlockhash()
	require.Equal(t, slot+1, env.CurrentSlot())
	require.NotEqual(t, hash, env.LatestBlockhash())
}

// nestingProgram issues one transfer per listed target as a nested call.
type nestingProgram struct {
	targets []svm.Pubkey
	amount  uint64
}

func (p nestingProgram) Invoke(call *Call) (*Invocation, error) {
	inv := &Invocation{
		ComputeUnits: 500,
		Logs:         []string{fmt.Sprintf("Program %s invoke [%d]", call.Program, call.Depth())},
	}
	for _, target := range p.targets {
		inv.Inner = append(inv.Inner, NewTransferInstruction(call.Accounts[0], target, p.amount))
	}
	return inv, nil
}

func TestNestedCalls(t *testing.T) {
	env := New()
	payer, err := svm.NewKeypair()
	require.NoError(t, err)
	target, err := svm.NewKeypair()
	require.NoError(t, err)

	programID := svm.Pubkey{42}
	env.RegisterProgram(programID, nestingProgram{
		targets: []svm.Pubkey{target.Pubkey(), target.Pubkey()},
		amount:  1_000,
	})
	env.Airdrop(payer.Pubkey(), 1_000_000)

	ix := svm.Instruction{
		ProgramID: programID,
		Accounts: []svm.AccountMeta{
			{Pubkey: payer.Pubkey(), IsSigner: true, IsWritable: true},
			{Pubkey: target.Pubkey(), IsWritable: true},
			{Pubkey: SystemProgramID},
		},
	}
	msg := svm.NewMessage([]svm.Instruction{ix}, payer.Pubkey())
	msg.RecentBlockhash = env.LatestBlockhash()
	tx := svm.NewUnsignedTransaction(msg)
	require.NoError(t, tx.Sign(payer))

	sim, err := env.Simulate(tx)
	require.NoError(t, err)

	require.Len(t, sim.InnerInstructions, 1)
	require.Len(t, sim.InnerInstructions[0], 2)
	for _, inner := range sim.InnerInstructions[0] {
		require.Equal(t, SystemProgramID, tx.Message.AccountKeys[inner.Instruction.ProgramIDIndex])
		require.Equal(t, uint8(2), inner.StackHeight)
	}
	// Top-level cost plus both nested transfers.
	require.Equal(t, uint64(500+2*TransferComputeUnits), sim.ComputeUnitsConsumed)
}

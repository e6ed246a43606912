// Package benchmarks contains the bundled benchmark definitions the CLI
// can run out of the box. They double as end-to-end exercises of the
// engine against the svmtest environment.
package benchmarks

import (
	"fmt"

	"github.com/cubench/cubench/svm"
	"github.com/cubench/cubench/svm/svmtest"
)

const lamportsPerSOL = 1_000_000_000

// SOLTransfer benchmarks a single system transfer instruction. The
// payer's balance drains a little further on every measurement pass;
// that warm-state accumulation is the point, not an accident.
type SOLTransfer struct {
	payer     *svm.Keypair
	recipient svm.Pubkey
	amount    uint64
}

// NewSOLTransfer creates a transfer benchmark with fresh keys.
func NewSOLTransfer() (*SOLTransfer, error) {
	payer, err := svm.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payer: %w", err)
	}
	recipient, err := svm.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipient: %w", err)
	}
	return &SOLTransfer{
		payer:     payer,
		recipient: recipient.Pubkey(),
		amount:    1_000,
	}, nil
}

func (b *SOLTransfer) InstructionName() string { return "sol_transfer" }

func (b *SOLTransfer) SetupEnvironment() (svm.Environment, error) {
	env := svmtest.New()
	env.Airdrop(b.payer.Pubkey(), 10*lamportsPerSOL)
	return env, nil
}

func (b *SOLTransfer) BuildInstruction(svm.Environment) (svm.Instruction, []svm.Pubkey, error) {
	ix := svmtest.NewTransferInstruction(b.payer.Pubkey(), b.recipient, b.amount)
	return ix, []svm.Pubkey{b.payer.Pubkey()}, nil
}

func (b *SOLTransfer) SignTransaction(tx *svm.Transaction) (*svm.Transaction, error) {
	if err := tx.Sign(b.payer); err != nil {
		return nil, err
	}
	return tx, nil
}

func (b *SOLTransfer) AddressBook() map[svm.Pubkey]string {
	return map[svm.Pubkey]string{
		svmtest.SystemProgramID: "system_program",
	}
}

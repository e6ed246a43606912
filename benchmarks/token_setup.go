package benchmarks

// This file contains the token-setup workflow benchmark: a
// three-instruction transaction against a toy token program whose
// account-creation instructions nest system transfers.

import (
	"crypto/sha256"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/cubench/cubench/svm"
	"github.com/cubench/cubench/svm/svmtest"
)

// TokenProgramID is a fixed identifier for the bundled token program.
var TokenProgramID = svm.Pubkey(sha256.Sum256([]byte("cubench-token-program")))

const (
	tokenIxInitializeMint uint32 = iota
	tokenIxInitializeAccount
	tokenIxMintTo
)

const (
	initializeMintComputeUnits    = 1_450
	initializeAccountComputeUnits = 1_200
	mintToComputeUnits            = 950

	// rentLamports funds each created account through a nested system
	// transfer from the payer.
	rentLamports = 2_039_280
)

type tokenInstruction struct {
	Instruction uint32
	Lamports    uint64
}

type tokenProgram struct{}

func (tokenProgram) Invoke(call *svmtest.Call) (*svmtest.Invocation, error) {
	var ix tokenInstruction
	if err := borsh.Deserialize(&ix, call.Data); err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}
	if len(call.Accounts) < 2 {
		return nil, fmt.Errorf("token instruction needs 2 accounts, got %d", len(call.Accounts))
	}
	payer, target := call.Accounts[0], call.Accounts[1]

	invoke := fmt.Sprintf("Program %s invoke [%d]", TokenProgramID, call.Depth())
	success := fmt.Sprintf("Program %s success", TokenProgramID)

	switch ix.Instruction {
	case tokenIxInitializeMint:
		return &svmtest.Invocation{
			ComputeUnits: initializeMintComputeUnits,
			Logs:         []string{invoke, "Program log: Instruction: InitializeMint", success},
			Inner:        []svm.Instruction{svmtest.NewTransferInstruction(payer, target, ix.Lamports)},
		}, nil
	case tokenIxInitializeAccount:
		return &svmtest.Invocation{
			ComputeUnits: initializeAccountComputeUnits,
			Logs:         []string{invoke, "Program log: Instruction: InitializeAccount", success},
			Inner:        []svm.Instruction{svmtest.NewTransferInstruction(payer, target, ix.Lamports)},
		}, nil
	case tokenIxMintTo:
		return &svmtest.Invocation{
			ComputeUnits: mintToComputeUnits,
			Logs:         []string{invoke, "Program log: Instruction: MintTo", success},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported token instruction %d", ix.Instruction)
	}
}

// TokenSetup benchmarks a full token bootstrap workflow: initialize a
// mint, initialize a token account, then mint to it. The first two
// instructions nest a system transfer, so the workflow involves two
// programs and two CPI calls per transaction.
type TokenSetup struct {
	payer        *svm.Keypair
	mint         svm.Pubkey
	tokenAccount svm.Pubkey
}

// NewTokenSetup creates a token workflow benchmark with fresh keys.
func NewTokenSetup() (*TokenSetup, error) {
	payer, err := svm.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payer: %w", err)
	}
	mint, err := svm.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint: %w", err)
	}
	tokenAccount, err := svm.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token account: %w", err)
	}
	return &TokenSetup{
		payer:        payer,
		mint:         mint.Pubkey(),
		tokenAccount: tokenAccount.Pubkey(),
	}, nil
}

func (b *TokenSetup) TransactionName() string { return "token_setup" }

func (b *TokenSetup) SetupEnvironment() (svm.Environment, error) {
	env := svmtest.New()
	env.RegisterProgram(TokenProgramID, tokenProgram{})
	env.Airdrop(b.payer.Pubkey(), 100*lamportsPerSOL)
	return env, nil
}

func (b *TokenSetup) BuildTransaction(env svm.Environment) (*svm.Transaction, error) {
	env.ExpireBlockhash()

	instructions := []svm.Instruction{
		b.tokenInstruction(tokenIxInitializeMint, b.mint, rentLamports),
		b.tokenInstruction(tokenIxInitializeAccount, b.tokenAccount, rentLamports),
		b.mintToInstruction(),
	}

	msg := svm.NewMessage(instructions, b.payer.Pubkey())
	msg.RecentBlockhash = env.LatestBlockhash()

	tx := svm.NewUnsignedTransaction(msg)
	if err := tx.Sign(b.payer); err != nil {
		return nil, err
	}
	return tx, nil
}

func (b *TokenSetup) AddressBook() map[svm.Pubkey]string {
	return map[svm.Pubkey]string{
		svmtest.SystemProgramID: "system_program",
		TokenProgramID:          "token_program",
	}
}

func (b *TokenSetup) tokenInstruction(kind uint32, target svm.Pubkey, lamports uint64) svm.Instruction {
	data, err := borsh.Serialize(tokenInstruction{Instruction: kind, Lamports: lamports})
	if err != nil {
		panic(err)
	}
	return svm.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []svm.AccountMeta{
			{Pubkey: b.payer.Pubkey(), IsSigner: true, IsWritable: true},
			{Pubkey: target, IsWritable: true},
			// The nested transfer targets the system program, so it
			// must be present in the transaction's account keys.
			{Pubkey: svmtest.SystemProgramID},
		},
		Data: data,
	}
}

func (b *TokenSetup) mintToInstruction() svm.Instruction {
	data, err := borsh.Serialize(tokenInstruction{Instruction: tokenIxMintTo, Lamports: 1_000_000})
	if err != nil {
		panic(err)
	}
	return svm.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []svm.AccountMeta{
			{Pubkey: b.payer.Pubkey(), IsSigner: true, IsWritable: true},
			{Pubkey: b.tokenAccount, IsWritable: true},
		},
		Data: data,
	}
}

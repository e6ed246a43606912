package svmtest

// This file contains the built-in system program: lamport transfers.

import (
	"fmt"

	"github.com/near/borsh-go"

	"github.com/cubench/cubench/svm"
)

// SystemProgramID is the all-zero program id, which renders as the
// familiar run of ones in base58.
var SystemProgramID = svm.Pubkey{}

// TransferComputeUnits is the flat cost of one system transfer.
const TransferComputeUnits = 150

const transferIndex = 2

// TransferInstruction is the borsh payload of a system transfer.
type TransferInstruction struct {
	Instruction uint32
	Lamports    uint64
}

// NewTransferInstruction builds a system transfer of lamports from from
// to to. from must sign the containing transaction.
func NewTransferInstruction(from, to svm.Pubkey, lamports uint64) svm.Instruction {
	data, err := borsh.Serialize(TransferInstruction{
		Instruction: transferIndex,
		Lamports:    lamports,
	})
	if err != nil {
		// TransferInstruction is a fixed-shape struct; serialization
		// cannot fail at runtime.
		panic(err)
	}
	return svm.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []svm.AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsWritable: true},
		},
		Data: data,
	}
}

type systemProgram struct{}

func (systemProgram) Invoke(call *Call) (*Invocation, error) {
	var ix TransferInstruction
	if err := borsh.Deserialize(&ix, call.Data); err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}
	if ix.Instruction != transferIndex {
		return nil, fmt.Errorf("unsupported system instruction %d", ix.Instruction)
	}
	if len(call.Accounts) < 2 {
		return nil, fmt.Errorf("transfer needs 2 accounts, got %d", len(call.Accounts))
	}

	from, to := call.Accounts[0], call.Accounts[1]
	if !call.IsSigner(from) {
		return nil, fmt.Errorf("transfer source %s did not sign", from)
	}
	if err := call.Transfer(from, to, ix.Lamports); err != nil {
		return nil, err
	}

	return &Invocation{
		ComputeUnits: TransferComputeUnits,
		Logs: []string{
			fmt.Sprintf("Program %s invoke [%d]", SystemProgramID, call.Depth()),
			fmt.Sprintf("Program %s success", SystemProgramID),
		},
	}, nil
}

// Package svm defines the interface boundary to the embedded SVM test
// environment: account and program identifiers, instructions, messages,
// transactions, signers and the environment capabilities the benchmark
// engine consumes. The runtime itself lives behind the Environment
// interface; this package never executes anything.
package svm

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeyLen is the byte length of a program or account identifier.
const PubkeyLen = 32

// HashLen is the byte length of a blockhash.
const HashLen = 32

// Pubkey identifies an account or program. The canonical text form is
// base58, which is also what reports fall back to when no address-book
// entry exists for a program.
type Pubkey [PubkeyLen]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	raw, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid pubkey %q: %w", text, err)
	}
	if len(raw) != PubkeyLen {
		return fmt.Errorf("invalid pubkey %q: got %d bytes, want %d", text, len(raw), PubkeyLen)
	}
	copy(p[:], raw)
	return nil
}

// Hash is a blockhash, rendered as base58 in reports.
type Hash [HashLen]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	raw, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid hash %q: %w", text, err)
	}
	if len(raw) != HashLen {
		return fmt.Errorf("invalid hash %q: got %d bytes, want %d", text, len(raw), HashLen)
	}
	copy(h[:], raw)
	return nil
}

// AccountMeta describes how one account participates in an instruction.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is one operation addressed to a program, before message
// compilation.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// CompiledInstruction references its program and accounts by index into
// the containing message's account keys.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndexes []uint8
	Data           []byte
}

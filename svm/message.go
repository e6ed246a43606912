package svm

// This file contains message compilation and transaction signing.

import (
	"fmt"

	"github.com/near/borsh-go"
)

// Message is the compiled form of a unit of work: a deduplicated account
// key table, the blockhash that scopes it, and instructions referencing
// both by index. The first NumRequiredSignatures keys must sign.
type Message struct {
	NumRequiredSignatures uint8
	AccountKeys           []Pubkey
	RecentBlockhash       Hash
	Instructions          []CompiledInstruction
}

// NewMessage compiles instructions into a message fee-paid by payer.
// The payer is always the first account key. Signer keys come before
// non-signers; within each class, first-appearance order is kept.
func NewMessage(instructions []Instruction, payer Pubkey) *Message {
	type meta struct {
		isSigner bool
	}
	flags := map[Pubkey]*meta{payer: {isSigner: true}}
	order := []Pubkey{payer}

	observe := func(key Pubkey, isSigner bool) {
		m, ok := flags[key]
		if !ok {
			flags[key] = &meta{isSigner: isSigner}
			order = append(order, key)
			return
		}
		m.isSigner = m.isSigner || isSigner
	}

	for _, ix := range instructions {
		for _, acct := range ix.Accounts {
			observe(acct.Pubkey, acct.IsSigner)
		}
		observe(ix.ProgramID, false)
	}

	var keys []Pubkey
	for _, key := range order {
		if flags[key].isSigner {
			keys = append(keys, key)
		}
	}
	numSigners := len(keys)
	for _, key := range order {
		if !flags[key].isSigner {
			keys = append(keys, key)
		}
	}

	index := make(map[Pubkey]uint8, len(keys))
	for i, key := range keys {
		index[key] = uint8(i)
	}

	compiled := make([]CompiledInstruction, 0, len(instructions))
	for _, ix := range instructions {
		ci := CompiledInstruction{
			ProgramIDIndex: index[ix.ProgramID],
			Data:           ix.Data,
		}
		for _, acct := range ix.Accounts {
			ci.AccountIndexes = append(ci.AccountIndexes, index[acct.Pubkey])
		}
		compiled = append(compiled, ci)
	}

	return &Message{
		NumRequiredSignatures: uint8(numSigners),
		AccountKeys:           keys,
		Instructions:          compiled,
	}
}

// Serialize returns the borsh encoding of the message. This is the byte
// payload that gets signed.
func (m *Message) Serialize() ([]byte, error) {
	return borsh.Serialize(*m)
}

// Program returns the program addressed by instruction i.
func (m *Message) Program(i int) Pubkey {
	return m.AccountKeys[m.Instructions[i].ProgramIDIndex]
}

// Signature is an ed25519 signature over a serialized message.
type Signature [SignatureLen]byte

// Transaction is a message plus the signatures that authorize it.
type Transaction struct {
	Signatures []Signature
	Message    *Message
}

// NewUnsignedTransaction wraps a message without any signatures.
func NewUnsignedTransaction(msg *Message) *Transaction {
	return &Transaction{Message: msg}
}

// Sign produces signatures for every required signer key, in account-key
// order. Every required signer must have a matching keypair.
func (tx *Transaction) Sign(signers ...*Keypair) error {
	msgBytes, err := tx.Message.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	byPubkey := make(map[Pubkey]*Keypair, len(signers))
	for _, kp := range signers {
		byPubkey[kp.Pubkey()] = kp
	}

	required := int(tx.Message.NumRequiredSignatures)
	tx.Signatures = make([]Signature, required)
	for i := 0; i < required; i++ {
		key := tx.Message.AccountKeys[i]
		kp, ok := byPubkey[key]
		if !ok {
			return fmt.Errorf("missing keypair for required signer %s", key)
		}
		tx.Signatures[i] = kp.Sign(msgBytes)
	}
	return nil
}

// VerifySignatures checks every required signature against the message.
func (tx *Transaction) VerifySignatures() error {
	required := int(tx.Message.NumRequiredSignatures)
	if len(tx.Signatures) != required {
		return fmt.Errorf("got %d signatures, want %d", len(tx.Signatures), required)
	}
	msgBytes, err := tx.Message.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	for i := 0; i < required; i++ {
		if !Verify(msgBytes, tx.Message.AccountKeys[i], tx.Signatures[i]) {
			return fmt.Errorf("invalid signature for signer %s", tx.Message.AccountKeys[i])
		}
	}
	return nil
}

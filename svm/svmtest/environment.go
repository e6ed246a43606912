// Package svmtest provides a deterministic in-memory implementation of
// svm.Environment for tests and the bundled benchmarks. It models just
// enough of a runtime to execute benchmark workloads: lamport balances,
// an advancing slot with a derived blockhash, replay protection, a
// built-in system transfer program and pluggable custom programs. It is
// a test double, not a runtime.
package svmtest

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/cubench/cubench/svm"
)

// Program is a pluggable program handler. A handler inspects the call,
// may move lamports through it, and reports compute units, log lines and
// the nested calls it issued.
type Program interface {
	Invoke(call *Call) (*Invocation, error)
}

// Invocation is the outcome of one program invocation.
type Invocation struct {
	ComputeUnits uint64
	Logs         []string
	// Inner lists nested calls to issue after this invocation returns.
	// Each referenced account and program must already be present in
	// the transaction's account keys.
	Inner []svm.Instruction
}

// Call is the view a program gets of one invocation.
type Call struct {
	Program  svm.Pubkey
	Accounts []svm.Pubkey
	Data     []byte

	depth    uint8
	signers  map[svm.Pubkey]bool
	balances map[svm.Pubkey]uint64
}

// Depth returns the invocation stack height, 1 for top-level calls.
func (c *Call) Depth() uint8 { return c.depth }

// IsSigner reports whether p signed the transaction.
func (c *Call) IsSigner(p svm.Pubkey) bool { return c.signers[p] }

// Balance returns the lamport balance of p as seen by this call.
func (c *Call) Balance(p svm.Pubkey) uint64 { return c.balances[p] }

// Transfer moves lamports between accounts within the call's ledger
// view. During simulation the view is a throwaway copy.
func (c *Call) Transfer(from, to svm.Pubkey, lamports uint64) error {
	if c.balances[from] < lamports {
		return fmt.Errorf("insufficient funds: %s has %d lamports, needs %d", from, c.balances[from], lamports)
	}
	c.balances[from] -= lamports
	c.balances[to] += lamports
	return nil
}

// Environment is a deterministic in-memory svm.Environment. It is owned
// by a single benchmark run and mutated sequentially; it is not safe for
// concurrent use.
type Environment struct {
	slot      uint64
	blockhash svm.Hash
	accounts  map[svm.Pubkey]uint64
	programs  map[svm.Pubkey]Program
	processed map[[32]byte]bool
}

// New constructs a fresh environment with the system program installed.
func New() *Environment {
	e := &Environment{
		accounts:  make(map[svm.Pubkey]uint64),
		programs:  map[svm.Pubkey]Program{SystemProgramID: systemProgram{}},
		processed: make(map[[32]byte]bool),
	}
	e.ExpireBlockhash()
	return e
}

// RegisterProgram installs a program handler at id.
func (e *Environment) RegisterProgram(id svm.Pubkey, p Program) {
	e.programs[id] = p
}

// Airdrop credits lamports to an account.
func (e *Environment) Airdrop(p svm.Pubkey, lamports uint64) {
	e.accounts[p] += lamports
}

// Balance returns the committed lamport balance of p.
func (e *Environment) Balance(p svm.Pubkey) uint64 {
	return e.accounts[p]
}

// ExpireBlockhash advances the slot and derives a fresh blockhash from it.
func (e *Environment) ExpireBlockhash() {
	e.slot++
	var seed [16]byte
	copy(seed[:8], "cubench\x00")
	binary.LittleEndian.PutUint64(seed[8:], e.slot)
	e.blockhash = sha256.Sum256(seed[:])
}

// LatestBlockhash returns the current blockhash.
func (e *Environment) LatestBlockhash() svm.Hash { return e.blockhash }

// CurrentSlot returns the current slot.
func (e *Environment) CurrentSlot() uint64 { return e.slot }

// Simulate evaluates tx without committing balances or recording it as
// processed.
func (e *Environment) Simulate(tx *svm.Transaction) (*svm.SimulationResult, error) {
	return e.process(tx, false)
}

// Execute processes tx and commits its effects.
func (e *Environment) Execute(tx *svm.Transaction) (*svm.ExecutionResult, error) {
	sim, err := e.process(tx, true)
	if err != nil {
		return nil, err
	}
	return &svm.ExecutionResult{
		Logs:                 sim.Logs,
		ComputeUnitsConsumed: sim.ComputeUnitsConsumed,
	}, nil
}

func (e *Environment) process(tx *svm.Transaction, commit bool) (*svm.SimulationResult, error) {
	if tx == nil || tx.Message == nil {
		return nil, fmt.Errorf("transaction has no message")
	}
	msg := tx.Message

	if msg.RecentBlockhash != e.blockhash {
		return nil, fmt.Errorf("blockhash %s not found", msg.RecentBlockhash)
	}
	if err := tx.VerifySignatures(); err != nil {
		return nil, fmt.Errorf("signature verification failed: %w", err)
	}

	msgBytes, err := msg.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}
	msgHash := sha256.Sum256(msgBytes)
	if e.processed[msgHash] {
		return nil, fmt.Errorf("transaction already processed")
	}

	signers := make(map[svm.Pubkey]bool, msg.NumRequiredSignatures)
	for i := 0; i < int(msg.NumRequiredSignatures); i++ {
		signers[msg.AccountKeys[i]] = true
	}

	// Execution mutates the committed ledger; simulation works on a copy.
	balances := e.accounts
	if !commit {
		balances = make(map[svm.Pubkey]uint64, len(e.accounts))
		for k, v := range e.accounts {
			balances[k] = v
		}
	}

	keyIndex := make(map[svm.Pubkey]uint8, len(msg.AccountKeys))
	for i, key := range msg.AccountKeys {
		keyIndex[key] = uint8(i)
	}

	result := &svm.SimulationResult{}
	for _, ci := range msg.Instructions {
		inv, err := e.invoke(msg, ci, 1, signers, balances)
		if err != nil {
			return nil, err
		}
		result.ComputeUnitsConsumed += inv.ComputeUnits
		result.Logs = append(result.Logs, inv.Logs...)

		var innerSet []svm.InnerInstruction
		for _, innerIx := range inv.Inner {
			compiled, err := compileInner(innerIx, keyIndex)
			if err != nil {
				return nil, err
			}
			innerInv, err := e.invoke(msg, compiled, 2, signers, balances)
			if err != nil {
				return nil, err
			}
			result.ComputeUnitsConsumed += innerInv.ComputeUnits
			result.Logs = append(result.Logs, innerInv.Logs...)
			innerSet = append(innerSet, svm.InnerInstruction{
				Instruction: compiled,
				StackHeight: 2,
			})
		}
		result.InnerInstructions = append(result.InnerInstructions, innerSet)
	}

	if commit {
		e.processed[msgHash] = true
	}
	return result, nil
}

func (e *Environment) invoke(msg *svm.Message, ci svm.CompiledInstruction, depth uint8, signers map[svm.Pubkey]bool, balances map[svm.Pubkey]uint64) (*Invocation, error) {
	programID := msg.AccountKeys[ci.ProgramIDIndex]
	program, ok := e.programs[programID]
	if !ok {
		return nil, fmt.Errorf("program %s not found", programID)
	}

	accounts := make([]svm.Pubkey, len(ci.AccountIndexes))
	for i, idx := range ci.AccountIndexes {
		accounts[i] = msg.AccountKeys[idx]
	}

	inv, err := program.Invoke(&Call{
		Program:  programID,
		Accounts: accounts,
		Data:     ci.Data,
		depth:    depth,
		signers:  signers,
		balances: balances,
	})
	if err != nil {
		return nil, fmt.Errorf("program %s failed: %w", programID, err)
	}
	if depth > 1 && len(inv.Inner) > 0 {
		return nil, fmt.Errorf("program %s: nested calls beyond depth 2 are not modeled", programID)
	}
	return inv, nil
}

func compileInner(ix svm.Instruction, keyIndex map[svm.Pubkey]uint8) (svm.CompiledInstruction, error) {
	programIdx, ok := keyIndex[ix.ProgramID]
	if !ok {
		return svm.CompiledInstruction{}, fmt.Errorf("nested call program %s not in transaction account keys", ix.ProgramID)
	}
	ci := svm.CompiledInstruction{ProgramIDIndex: programIdx, Data: ix.Data}
	for _, acct := range ix.Accounts {
		idx, ok := keyIndex[acct.Pubkey]
		if !ok {
			return svm.CompiledInstruction{}, fmt.Errorf("nested call account %s not in transaction account keys", acct.Pubkey)
		}
		ci.AccountIndexes = append(ci.AccountIndexes, idx)
	}
	return ci, nil
}

var _ svm.Environment = (*Environment)(nil)

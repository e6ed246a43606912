package benchmarks

// This file contains the registry the CLI uses to resolve benchmark
// names to runnable definitions.

import (
	"github.com/cubench/cubench/bench"
)

// KindInstruction and KindTransaction label registry entries.
const (
	KindInstruction = "instruction"
	KindTransaction = "transaction"
)

// Entry describes one runnable benchmark.
type Entry struct {
	Name string
	Kind string
	// Run constructs a fresh definition and executes it. A fresh
	// definition per run keeps environment state from leaking between
	// runs.
	Run func(r *bench.Runner, samples int) (bench.Report, error)
}

// All returns the bundled benchmarks in display order.
func All() []Entry {
	return []Entry{
		{
			Name: "sol_transfer",
			Kind: KindInstruction,
			Run: func(r *bench.Runner, samples int) (bench.Report, error) {
				b, err := NewSOLTransfer()
				if err != nil {
					return nil, err
				}
				return r.BenchmarkInstruction(b, samples)
			},
		},
		{
			Name: "token_setup",
			Kind: KindTransaction,
			Run: func(r *bench.Runner, samples int) (bench.Report, error) {
				b, err := NewTokenSetup()
				if err != nil {
					return nil, err
				}
				return r.BenchmarkTransaction(b, samples)
			},
		},
	}
}

// Lookup resolves a benchmark by name.
func Lookup(name string) (Entry, bool) {
	for _, entry := range All() {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

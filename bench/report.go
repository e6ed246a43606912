package bench

// This file contains the result records and their serialization. The
// JSON field names are an external contract consumed by downstream
// tooling; changing them is a breaking change.

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cubench/cubench/estimate"
)

// InstructionResult is the terminal artifact of an instruction
// benchmark run.
type InstructionResult struct {
	InstructionName  string             `json:"instruction_name"`
	CUEstimate       estimate.Stats     `json:"cu_estimate"`
	ExecutionContext InstructionContext `json:"execution_context"`
	GeneratedAt      string             `json:"generated_at"`
	GeneratedBy      string             `json:"generated_by"`
}

// TransactionResult is the terminal artifact of a transaction workflow
// benchmark run.
type TransactionResult struct {
	TransactionName  string             `json:"transaction_name"`
	CUEstimate       estimate.Stats     `json:"cu_estimate"`
	ExecutionContext TransactionContext `json:"execution_context"`
	GeneratedAt      string             `json:"generated_at"`
	GeneratedBy      string             `json:"generated_by"`
}

// Report is implemented by both result records.
type Report interface {
	// ReportName returns the benchmark subject name.
	ReportName() string
	// Estimate returns the percentile statistics.
	Estimate() estimate.Stats
}

func (r *InstructionResult) ReportName() string       { return r.InstructionName }
func (r *InstructionResult) Estimate() estimate.Stats { return r.CUEstimate }
func (r *TransactionResult) ReportName() string       { return r.TransactionName }
func (r *TransactionResult) Estimate() estimate.Stats { return r.CUEstimate }

// WriteReport writes a pretty-printed JSON report to path.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// AppendReport appends a single-line JSON report to path, creating the
// file if needed. The resulting file is line-delimited JSON.
func AppendReport(path string, report Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report stream: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}
	return nil
}

package models

import (
	"encoding/json"
	"time"
)

// ExecutionResult is the outcome of one command attempt.
type ExecutionResult struct {
	Success       bool
	ExitCode      int // -1 when the process could not be classified
	Stdout        string
	Stderr        string
	ExecutionTime time.Duration
	Command       string
}

type resultJSON struct {
	Success       bool    `json:"success"`
	ExitCode      int     `json:"exit_code"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	ExecutionTime float64 `json:"execution_time"`
	Command       string  `json:"command"`
}

// MarshalJSON encodes ExecutionTime as fractional seconds.
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:       r.Success,
		ExitCode:      r.ExitCode,
		Stdout:        r.Stdout,
		Stderr:        r.Stderr,
		ExecutionTime: r.ExecutionTime.Seconds(),
		Command:       r.Command,
	})
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (r *ExecutionResult) UnmarshalJSON(b []byte) error {
	var v resultJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = ExecutionResult{
		Success:       v.Success,
		ExitCode:      v.ExitCode,
		Stdout:        v.Stdout,
		Stderr:        v.Stderr,
		ExecutionTime: time.Duration(v.ExecutionTime * float64(time.Second)),
		Command:       v.Command,
	}
	return nil
}

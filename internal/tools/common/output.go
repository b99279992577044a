package common

import (
	"encoding/json"
	"io"
	"time"
)

// CIResult is the machine-readable summary a tool command prints under --ci.
type CIResult struct {
	OK         bool     `json:"ok"`
	Tool       string   `json:"tool"`
	Command    string   `json:"command"`
	Title      string   `json:"title"`
	Details    []string `json:"details,omitempty"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"durationMs"`
}

func NewCIResult(tool, command, title string, details []string, err error, elapsed time.Duration) CIResult {
	res := CIResult{
		OK:         err == nil,
		Tool:       tool,
		Command:    command,
		Title:      title,
		Details:    details,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func PrintCIResult(w io.Writer, res CIResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Report holds session data for one encode or decode run.
type Report struct {
	RunID       string        `json:"runId" yaml:"run_id"`
	Mode        string        `json:"mode" yaml:"mode"`
	InputPath   string        `json:"inputPath" yaml:"input_path"`
	OutputPath  string        `json:"outputPath" yaml:"output_path"`
	Profile     string        `json:"profile,omitempty" yaml:"profile,omitempty"`
	MinTokenLen int           `json:"minTokenLen,omitempty" yaml:"min_token_len,omitempty"`
	MaxTokenLen int           `json:"maxTokenLen,omitempty" yaml:"max_token_len,omitempty"`
	Seed        int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	InputSize   int           `json:"inputSize" yaml:"input_size"`
	OutputSize  int           `json:"outputSize" yaml:"output_size"`
	SizeRatio   float64       `json:"sizeRatio,omitempty" yaml:"size_ratio,omitempty"`
	Entropy     float64       `json:"entropy,omitempty" yaml:"entropy,omitempty"`
	LongestLine int           `json:"longestLine,omitempty" yaml:"longest_line,omitempty"`
	Tokens      int           `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Definitions int           `json:"definitions" yaml:"definitions"`
	Blobs       int           `json:"blobs,omitempty" yaml:"blobs,omitempty"`
	OpaqueLines []int         `json:"opaqueLines,omitempty" yaml:"opaque_lines,omitempty"`
	Verified    bool          `json:"verified,omitempty" yaml:"verified,omitempty"`
	Warnings    []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration    time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ToJSON returns the report as indented JSON (for CI/CD integration).
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToYAML returns the report as YAML.
func (r *Report) ToYAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Marshal renders the report in the requested format.
func (r *Report) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return r.ToJSON()
	case "yaml", "yml":
		return r.ToYAML()
	}
	return nil, fmt.Errorf("invalid --report format: %s (json|yaml)", format)
}

// applyMetrics copies the output metrics into the report.
func (r *Report) applyMetrics(m Metrics) {
	r.OutputSize = m.SizeBytes
	r.SizeRatio = m.SizeRatio
	r.Entropy = m.Entropy
	r.LongestLine = m.LongestLine
}

// WriteReport writes the report in the requested format, framed for a terminal.
func WriteReport(w io.Writer, r *Report, format string) error {
	b, err := r.Marshal(format)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s%s=== ObfusBat Report ===%s\n", Bold, Cyan, Reset)
	if _, err := w.Write(b); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s%s======================%s\n", Bold, Cyan, Reset)
	return nil
}

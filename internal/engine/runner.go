package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Run executes one CLI invocation: read input, encode or decode, write
// output, print metrics and the optional report.
func Run(opts Options) error {
	if !opts.Quiet {
		fmt.Fprintln(os.Stderr, banner())
	}
	logger, closer, err := NewLogger(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	runID := uuid.NewString()
	logger = logger.With("run", runID)

	if err := applyProfileDefaults(&opts); err != nil {
		return err
	}
	if opts.Report != "" {
		if _, err := (&Report{}).Marshal(opts.Report); err != nil {
			return err
		}
	}
	if opts.DryRun && opts.UseStdout {
		return errors.New("cannot use --dry-run with --stdout")
	}
	if opts.Verify && opts.Decode {
		return errors.New("cannot use --verify with --deobfuscate (verify checks encoder output)")
	}

	data, err := readAllInput(opts)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := validateUTF8(data, opts.Decode); err != nil {
		return err
	}
	logger.Debug("input read", "input", inputLabel(opts), "bytes", len(data))

	if opts.DryRun || opts.Recommend {
		if opts.Decode {
			return errors.New("cannot analyze in --deobfuscate mode")
		}
		PrintAnalysis(AnalyzeScript(string(data)), false)
		if opts.DryRun {
			fmt.Fprintf(os.Stderr, "%sNo transformation or output (dry-run).%s\n", Gray, Reset)
		}
		return nil
	}

	r := &Report{RunID: runID, InputPath: inputLabel(opts), InputSize: len(data), Profile: opts.Profile}
	start := time.Now()
	var out string
	if opts.Decode {
		out, err = runDecode(opts, string(data), logger, r)
	} else {
		out, err = runEncode(opts, string(data), logger, r)
	}
	if err != nil {
		return err
	}

	path, err := writeOutput(opts, out)
	if err != nil {
		return err
	}
	r.OutputPath = path
	r.Duration = time.Since(start)
	m := ComputeMetricsWithInput(out, len(data))
	r.applyMetrics(m)
	logger.Info("done", "mode", r.Mode, "output", path, "bytes", m.SizeBytes)
	if !opts.Quiet {
		PrintMetrics(os.Stderr, m)
		if !opts.UseStdout {
			fmt.Fprintf(os.Stderr, "%sWrote:%s %s\n", Green, Reset, path)
		}
	}
	if opts.Report != "" {
		return WriteReport(os.Stderr, r, opts.Report)
	}
	return nil
}

func runEncode(opts Options, src string, logger *slog.Logger, r *Report) (string, error) {
	min, max := opts.bounds()
	if err := ValidateBounds(min, max); err != nil {
		return "", err
	}
	res, err := NewEncoder(opts, TerminalConfirmer{}, logger).Encode(src)
	if err != nil {
		return "", err
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	if len(res.OpaqueLines) > 0 {
		logger.Warn("lines kept as-is", "lines", res.OpaqueLines)
	}
	r.Mode = "encode"
	r.MinTokenLen, r.MaxTokenLen = min, max
	r.Seed = res.Seed
	r.Tokens = res.Tokens
	r.Definitions = res.Definitions
	r.Blobs = res.Blobs
	r.OpaqueLines = res.OpaqueLines
	r.Warnings = res.Warnings
	if opts.Verify {
		if err := runVerify(opts, src, res); err != nil {
			return "", err
		}
		r.Verified = true
	}
	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "%sSeed:%s %d %s(re-run with --seed %d for same output)%s\n", Yellow, Reset, res.Seed, Gray, res.Seed, Reset)
	}
	return res.Text, nil
}

func runDecode(opts Options, doc string, logger *slog.Logger, r *Report) (string, error) {
	res, err := NewDecoder(logger).Decode(doc)
	if err != nil {
		return "", err
	}
	for _, issue := range res.Issues {
		logger.Warn("decode issue", "error", issue)
		r.Warnings = append(r.Warnings, issue.Error())
	}
	r.Mode = "decode"
	r.Definitions = res.Definitions
	if !opts.Quiet && res.Verbatim > 0 {
		fmt.Fprintf(os.Stderr, "%sNote:%s %d line(s) had no obfuscated references and were kept as-is\n", Yellow, Reset, res.Verbatim)
	}
	return res.Text, nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/benzoXdev/obfusbat/internal/config"
	"github.com/benzoXdev/obfusbat/internal/engine"
)

func main() {
	// Clean exit on Ctrl+C
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintf(os.Stderr, "\n%sInterrupted.%s\n", engine.Yellow, engine.Reset)
		os.Exit(130)
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", engine.Red, engine.Reset, err)
		if hint := engine.ErrorHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "%sHint:%s %s\n", engine.Gray, engine.Reset, hint)
		}
		os.Exit(1)
	}
}

type cliFlags struct {
	opts       engine.Options
	configPath string
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "obfusbat [input file | command | -]",
		Short: "Obfuscate and deobfuscate Windows batch scripts",
		Long: `obfusbat rewrites every character of a batch script as a reference to a
randomly named variable, and reverses that rewrite without any key.

INPUT:
  obfusbat script.bat                 # a file
  obfusbat "start calc.exe"           # a literal command (when no such file exists)
  type script.bat | obfusbat -        # stdin

DEOBFUSCATE:
  obfusbat -d obfuscated.bat -o clean.bat

CONFIG:
  obfusbat.cue in the working directory, the user config directory or /etc.
  Flags override config values.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       engine.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !f.opts.UseStdin {
				return cmd.Help()
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			opts, err := resolveOptions(cmd.Flags(), f, input)
			if err != nil {
				return err
			}
			start := time.Now()
			if err := engine.Run(opts); err != nil {
				return err
			}
			if !opts.Quiet {
				fmt.Fprintf(os.Stderr, "%sDone in %s%s\n", engine.Gray, time.Since(start).Round(time.Millisecond), engine.Reset)
			}
			return nil
		},
	}
	cmd.SetVersionTemplate(engine.VersionFull() + "\n")

	fl := cmd.Flags()
	fl.BoolVarP(&f.opts.Decode, "deobfuscate", "d", false, "Use deobfuscation mode")
	fl.BoolVarP(&f.opts.EchoOff, "echo-off", "e", false, `Add "@echo off" to the output script to avoid echoing cleartext commands`)
	fl.StringVarP(&f.opts.OutputFile, "output-file", "o", "", "Output file (default obfuscated.bat / deobfuscated.bat)")
	fl.IntVar(&f.opts.MinTokenLen, "min", engine.DefaultMinTokenLen, "Minimum obfuscated variable length")
	fl.IntVar(&f.opts.MaxTokenLen, "max", engine.DefaultMaxTokenLen, "Maximum obfuscated variable length")
	fl.BoolVarP(&f.opts.AssumeYes, "yes", "y", false, "Keep lines with variables or labels as-is without asking")
	fl.BoolVar(&f.opts.FullAlphabet, "full-alphabet", false, "Define every character, not only the ones the script uses")
	fl.BoolVar(&f.opts.UseStdin, "stdin", false, "Read the script from stdin")
	fl.BoolVar(&f.opts.UseStdout, "stdout", false, "Write the result to stdout")
	fl.Int64Var(&f.opts.Seed, "seed", 0, "RNG seed (0=random). Set N for a reproducible build")
	fl.StringVar(&f.opts.Profile, "profile", "", "Token length preset: default|tight|noisy|paranoid")
	fl.StringVar(&f.opts.Report, "report", "", "Print a run report: json|yaml")
	fl.BoolVar(&f.opts.DryRun, "dry-run", false, "Analyze only, no transformation or output")
	fl.BoolVar(&f.opts.Recommend, "recommend", false, "Analyze the script and print recommendations")
	fl.BoolVar(&f.opts.Verify, "verify", false, "Decode the result and compare it with the source")
	fl.BoolVarP(&f.opts.Quiet, "quiet", "q", false, "Quiet mode (no banner, warnings only)")
	fl.StringVar(&f.opts.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fl.StringVar(&f.opts.LogFile, "log", "", "Append JSON logs to this file")
	fl.BoolVar(&f.opts.Journal, "journal", false, "Also log to the systemd journal")
	fl.StringVar(&f.configPath, "config", "", "Config file (default: discover obfusbat.cue)")
	return cmd
}

// resolveOptions layers defaults, the config file and explicit flags.
func resolveOptions(fl *pflag.FlagSet, f *cliFlags, input string) (engine.Options, error) {
	opts := f.opts
	engine.ResolveInput(&opts, input)

	cfg, err := config.Load(config.Discover(f.configPath))
	if err != nil {
		return opts, err
	}
	set := func(name string) bool { return fl.Changed(name) }
	if cfg.MinTokenLength != nil && !set("min") {
		opts.MinTokenLen = *cfg.MinTokenLength
	}
	if cfg.MaxTokenLength != nil && !set("max") {
		opts.MaxTokenLen = *cfg.MaxTokenLength
	}
	if cfg.EchoOff != nil && !set("echo-off") {
		opts.EchoOff = *cfg.EchoOff
	}
	if cfg.Warn != nil && !set("yes") {
		opts.AssumeYes = !*cfg.Warn
	}
	if cfg.FullAlphabet != nil && !set("full-alphabet") {
		opts.FullAlphabet = *cfg.FullAlphabet
	}
	if cfg.Profile != nil && !set("profile") {
		opts.Profile = *cfg.Profile
	}
	if cfg.LogLevel != nil && !set("log-level") {
		opts.LogLevel = *cfg.LogLevel
	}
	if cfg.LogFile != nil && !set("log") {
		opts.LogFile = *cfg.LogFile
	}
	if cfg.Journal != nil && !set("journal") {
		opts.Journal = *cfg.Journal
	}
	if cfg.Report != nil && !set("report") {
		opts.Report = *cfg.Report
	}
	if !set("output-file") {
		if opts.Decode && cfg.DecodeOutput != nil {
			opts.OutputFile = *cfg.DecodeOutput
		} else if !opts.Decode && cfg.EncodeOutput != nil {
			opts.OutputFile = *cfg.EncodeOutput
		}
	}

	// A profile only fills bounds nobody set explicitly.
	if opts.Profile != "" {
		if !set("min") && cfg.MinTokenLength == nil {
			opts.MinTokenLen = 0
		}
		if !set("max") && cfg.MaxTokenLength == nil {
			opts.MaxTokenLen = 0
		}
	}
	// Original CLI behaviour: a --min above the effective max doubles it.
	if set("min") && !set("max") && opts.MaxTokenLen != 0 && opts.MinTokenLen > opts.MaxTokenLen {
		opts.MaxTokenLen = opts.MinTokenLen * 2
	}

	opts.Seeded = set("seed") && opts.Seed != 0
	return opts, nil
}

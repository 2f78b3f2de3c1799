package engine

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// ScriptFeatures holds the result of static analysis on a batch script.
type ScriptFeatures struct {
	HasEchoOff       bool // @echo off already present
	HasDelayedExpand bool // setlocal enabledelayedexpansion / !var!
	HasForLoops      bool // for %%i in (...)
	HasCalls         bool // call :label / call other.bat
	HasGoto          bool
	HasNonASCII      bool // characters outside the Extended set (copied verbatim)

	LineCount      int
	LabelCount     int
	SetCount       int // keyword assignment lines
	VariableLines  int // lines referencing %name%
	BlobLines      int // lines with delimiters that are not references
	OpaqueLines    int
	LongestLine    int
	EstimatedBytes int // rough output size at the recommended profile

	RecommendedProfile string
	Warnings           []string
	Suggestions        []string
}

var (
	reForLoop      = regexp.MustCompile(`(?im)^\s*for\s+(/\w\s+)*%%\w`)
	reCall         = regexp.MustCompile(`(?im)^\s*call\s+`)
	reGoto         = regexp.MustCompile(`(?im)^\s*goto\s+`)
	reDelayedVar   = regexp.MustCompile(`![A-Za-z_][A-Za-z0-9_]*!`)
	reEchoOffFirst = regexp.MustCompile(`(?i)^\s*@?echo\s+off\s*$`)
)

// AnalyzeScript performs static analysis on a batch script and returns
// detected features and recommendations.
func AnalyzeScript(src string) *ScriptFeatures {
	f := &ScriptFeatures{}
	lines := strings.Split(src, "\n")
	f.LineCount = len(lines)
	lower := strings.ToLower(src)

	for _, line := range lines {
		f.LongestLine = max(f.LongestLine, len([]rune(line)))
		switch {
		case isLabel(line):
			f.LabelCount++
		case reSetStatement.MatchString(line):
			f.SetCount++
		case reUserVariable.MatchString(line):
			f.VariableLines++
		case strings.ContainsRune(line, Delimiter):
			f.BlobLines++
		}
		if isOpaqueLine(line) {
			f.OpaqueLines++
		}
		if reEchoOffFirst.MatchString(line) {
			f.HasEchoOff = true
		}
	}
	f.HasNonASCII = lo.ContainsBy([]rune(src), func(r rune) bool { return !IsExtended(r) && r != '\t' })
	f.HasDelayedExpand = strings.Contains(lower, "enabledelayedexpansion") || reDelayedVar.MatchString(src)
	f.HasForLoops = reForLoop.MatchString(src)
	f.HasCalls = reCall.MatchString(src)
	f.HasGoto = reGoto.MatchString(src)

	f.computeRecommendations()
	return f
}

func (f *ScriptFeatures) computeRecommendations() {
	f.RecommendedProfile = recommendProfile(f.LongestLine)
	p := profiles[f.RecommendedProfile]
	avgRef := (p.min+p.max)/2 + 2
	// body references plus roughly one definition line per substitutable character
	f.EstimatedBytes = f.LineCount*f.LongestLine*avgRef/2 + len(SubstitutableChars)*(avgRef*3+1)

	if f.OpaqueLines > 0 {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%d line(s) use variables or labels and will be kept as-is", f.OpaqueLines))
		f.Suggestions = append(f.Suggestions, "Pass --yes to accept opaque lines without a prompt")
	}
	if f.HasDelayedExpand {
		f.Warnings = append(f.Warnings, "Delayed expansion (!var!) is not recognized; such lines are substituted")
	}
	if f.HasNonASCII {
		f.Warnings = append(f.Warnings, "Non-ASCII characters are copied verbatim")
	}
	if f.LongestLine*(avgRef) >= MaxLineLen {
		f.Warnings = append(f.Warnings, fmt.Sprintf("Longest line (%d chars) may exceed the %d character limit once encoded", f.LongestLine, MaxLineLen))
		f.Suggestions = append(f.Suggestions, "Split long lines or use --profile tight")
	}
	if !f.HasEchoOff {
		f.Suggestions = append(f.Suggestions, "Use -e to add @echo off so cleartext commands are not echoed")
	}
	if f.BlobLines > 0 {
		f.Suggestions = append(f.Suggestions, "Percent signs outside references are encoded as blobs; run with --verify")
	}
}

// PrintAnalysis prints the script analysis to stderr.
func PrintAnalysis(f *ScriptFeatures, quiet bool) {
	if quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%s╔══ Script Analysis ═══════════════════════════════════════╗%s\n", Cyan, Reset)
	fmt.Fprintf(os.Stderr, "%s║%s  Lines: %-6d  Labels: %-4d  Set: %-4d  Longest: %-6d %s║%s\n",
		Cyan, Reset, f.LineCount, f.LabelCount, f.SetCount, f.LongestLine, Cyan, Reset)
	fmt.Fprintf(os.Stderr, "%s║%s  Variable lines: %-5d  Blob lines: %-5d  Opaque: %-5d%s║%s\n",
		Cyan, Reset, f.VariableLines, f.BlobLines, f.OpaqueLines, Cyan, Reset)

	var features []string
	if f.HasEchoOff {
		features = append(features, "EchoOff")
	}
	if f.HasForLoops {
		features = append(features, "For")
	}
	if f.HasCalls {
		features = append(features, "Call")
	}
	if f.HasGoto {
		features = append(features, "Goto")
	}
	if f.HasDelayedExpand {
		features = append(features, "DelayedExpansion")
	}
	if f.HasNonASCII {
		features = append(features, "Non-ASCII")
	}
	if len(features) > 0 {
		fmt.Fprintf(os.Stderr, "%s║%s  Features: %-48s%s║%s\n", Cyan, Reset, strings.Join(features, ", "), Cyan, Reset)
	}

	fmt.Fprintf(os.Stderr, "%s╠══ Recommendation ════════════════════════════════════════╣%s\n", Cyan, Reset)
	fmt.Fprintf(os.Stderr, "%s║%s  %s→ Profile: %-10s  ~%d bytes%s\n",
		Cyan, Reset, Green, f.RecommendedProfile, f.EstimatedBytes, Reset)
	for _, s := range f.Suggestions {
		fmt.Fprintf(os.Stderr, "%s║%s  → %s\n", Cyan, Reset, s)
	}

	if len(f.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%s╠══ Warnings ══════════════════════════════════════════════╣%s\n", Yellow, Reset)
		for _, w := range f.Warnings {
			fmt.Fprintf(os.Stderr, "%s║%s  %s⚠ %s%s\n", Yellow, Reset, Yellow, w, Reset)
		}
	}
	fmt.Fprintf(os.Stderr, "%s╚═════════════════════════════════════════════════════════╝%s\n\n", Cyan, Reset)
}

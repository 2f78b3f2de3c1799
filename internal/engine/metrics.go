package engine

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samber/lo"
)

// Metrics describes an encoded or decoded document.
type Metrics struct {
	SizeBytes      int
	InputSize      int
	SizeRatio      float64 // SizeBytes / InputSize, 0 without input
	LineCount      int
	LongestLine    int // in runes
	OverLimitLines int // lines cmd.exe would truncate
	References     int // complete %name% pairs
	LetterRatio    float64
	Entropy        float64 // bits per rune
}

// ComputeMetrics measures doc. Everything is zero for an empty document.
func ComputeMetrics(doc string) Metrics {
	var m Metrics
	if doc == "" {
		return m
	}
	m.SizeBytes = len(doc)
	lines := strings.Split(doc, "\n")
	m.LineCount = len(lines)
	for _, l := range lines {
		n := len([]rune(l))
		m.LongestLine = max(m.LongestLine, n)
		if n > MaxLineLen {
			m.OverLimitLines++
		}
		m.References += strings.Count(l, string(Delimiter)) / 2
	}

	runes := []rune(doc)
	m.LetterRatio = float64(lo.CountBy(runes, isLetter)) / float64(len(runes))
	total := float64(len(runes))
	for _, c := range lo.CountValues(runes) {
		p := float64(c) / total
		m.Entropy -= p * math.Log2(p)
	}
	return m
}

// ComputeMetricsWithInput also records the size ratio against the source.
func ComputeMetricsWithInput(doc string, inputSize int) Metrics {
	m := ComputeMetrics(doc)
	m.InputSize = inputSize
	if inputSize > 0 {
		m.SizeRatio = float64(m.SizeBytes) / float64(inputSize)
	}
	return m
}

func PrintMetrics(w io.Writer, m Metrics) {
	fmt.Fprintf(w, "%sOutput:%s %s%d%s bytes, %d lines, %d refs | entropy %.2f | letters %.0f%%",
		Cyan, Reset, Green, m.SizeBytes, Reset, m.LineCount, m.References, m.Entropy, m.LetterRatio*100)
	if m.SizeRatio > 0 {
		fmt.Fprintf(w, " | %.1fx input", m.SizeRatio)
	}
	fmt.Fprintln(w)
	if m.OverLimitLines > 0 {
		fmt.Fprintf(w, "%sWarning:%s %d line(s) exceed %d characters (longest %d)\n",
			Yellow, Reset, m.OverLimitLines, MaxLineLen, m.LongestLine)
	}
}

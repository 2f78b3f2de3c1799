package engine

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

// legacyWatermarks are emitted by the 0xidiz3r tool this format descends from.
var legacyWatermarks = []string{
	"VGhpcyBmaWxlIHdhcyBvYmZ1c2NhdGVkIHZpYSBodHRwczovL2dpdGh1Yi5jb20vMHhUYXMvMHhpZGl6M3I=",
	"VGhpcyBmaWxlIGNhbiBiZSBwcm9ncmFtYXRpY2FsbHkgZGVvYmZ1c2NhdGVkIHZpYSBodHRwczovL2dpdGh1Yi5jb20vMHhUYXMvMHhpZGl6M3I=",
}

var reKeywordAnchor = regexp.MustCompile(`^set ([A-Za-z]+)=set\r?$`)

// DecodeResult is the recovered source plus the non-fatal issues met on
// the way. Issues never abort a decode.
type DecodeResult struct {
	Text        string
	Keyword     string
	Space       string
	Equals      string
	Definitions int
	Verbatim    int // body lines with delimiters but no known token
	Issues      []error
}

// Err joins the non-fatal issues, nil when there were none.
func (r *DecodeResult) Err() error {
	return errors.Join(r.Issues...)
}

// Decoder rebuilds source from encoded text without a shared Alphabet. It
// runs three passes: anchors, definition table, body.
type Decoder struct {
	Logger *slog.Logger
}

func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = discardLogger()
	}
	return &Decoder{Logger: logger}
}

// anchors are the recovered preamble aliases and the line indexes holding them.
type anchors struct {
	keyword, space, equals string
	keywordAt, spaceAt     int
	equalsAt               int
	crlf                   bool
}

func (d *Decoder) Decode(doc string) (*DecodeResult, error) {
	lines := strings.Split(doc, "\n")
	a, err := findAnchors(lines)
	if err != nil {
		return nil, err
	}
	if a.crlf {
		for i := range lines {
			lines[i] = strings.TrimSuffix(lines[i], "\r")
		}
	}
	res := &DecodeResult{Keyword: a.keyword, Space: a.space, Equals: a.equals}

	table, defLines, issues := harvestDefinitions(lines, a)
	res.Definitions = len(table)
	res.Issues = append(res.Issues, issues...)
	d.Logger.Debug("definitions harvested", "tokens", len(table), "malformed", len(issues))

	skip := func(i int) bool {
		return i <= a.keywordAt || i == a.spaceAt || i == a.equalsAt || defLines[i] || isWatermark(lines[i])
	}
	text, verbatim, unresolved := rebuildBody(lines, skip, table)
	res.Verbatim = verbatim
	res.Issues = append(res.Issues, unresolved...)
	if a.crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	res.Text = text
	return res, nil
}

// findAnchors locates "set K=set", then "%K% S= ", then "%K%%S%E==".
func findAnchors(lines []string) (anchors, error) {
	a := anchors{keywordAt: -1, spaceAt: -1, equalsAt: -1}
	for i, l := range lines {
		if m := reKeywordAnchor.FindStringSubmatch(l); m != nil {
			a.keyword, a.keywordAt = m[1], i
			a.crlf = strings.HasSuffix(l, "\r")
			break
		}
	}
	if a.keywordAt < 0 {
		return a, &AnchorError{Anchor: AnchorKeyword}
	}
	k := regexp.QuoteMeta(a.keyword)
	reSpace := regexp.MustCompile(`^%` + k + `% ([A-Za-z]+)= ?\r?$`)
	for i := a.keywordAt + 1; i < len(lines); i++ {
		if m := reSpace.FindStringSubmatch(lines[i]); m != nil {
			a.space, a.spaceAt = m[1], i
			break
		}
	}
	if a.spaceAt < 0 {
		return a, &AnchorError{Anchor: AnchorSpace}
	}
	reEquals := regexp.MustCompile(`^%` + k + `%%` + regexp.QuoteMeta(a.space) + `%([A-Za-z]+)==\r?$`)
	for i := a.spaceAt + 1; i < len(lines); i++ {
		if m := reEquals.FindStringSubmatch(lines[i]); m != nil {
			a.equals, a.equalsAt = m[1], i
			break
		}
	}
	if a.equalsAt < 0 {
		return a, &AnchorError{Anchor: AnchorEquals}
	}
	return a, nil
}

// harvestDefinitions collects token -> value from every line of the shape
// %K%%S%name%E%value. Lines with that prefix are consumed even when they
// fail to parse; the failure is reported and the line contributes nothing.
func harvestDefinitions(lines []string, a anchors) (map[string]string, map[int]bool, []error) {
	prefix := "%" + a.keyword + "%%" + a.space + "%"
	table := map[string]string{}
	defLines := map[int]bool{}
	var issues []error
	for i := a.equalsAt + 1; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		defLines[i] = true
		name, value, reason := parseDefinition(line[len(prefix):], a.equals)
		if reason != "" {
			issues = append(issues, &DefinitionError{Line: i + 1, Text: line, Reason: reason})
			continue
		}
		table[name] = value
	}
	return table, defLines, issues
}

// parseDefinition splits "name%E%value". The value is one character for
// Alphabet entries and two for percent blobs; either way it is everything
// after the equals alias, which must follow the name directly.
func parseDefinition(rest, equals string) (name, value, reason string) {
	n := 0
	for n < len(rest) && isLetter(rune(rest[n])) {
		n++
	}
	if n == 0 {
		return "", "", "missing token name"
	}
	name = rest[:n]
	sep := "%" + equals + "%"
	after, ok := strings.CutPrefix(rest[n:], sep)
	if !ok {
		return "", "", "equals alias not found after token name"
	}
	if after == "" {
		return "", "", "empty value"
	}
	return name, after, ""
}

// rebuildBody replays the remaining lines. Splitting a line on the
// delimiter alternates outside and inside pieces: outside pieces are
// literal text, inside pieces are token references. A known token becomes
// its value; an unknown one is wrapped back in delimiters, which restores
// literal %...% text from lines that were never substituted.
func rebuildBody(lines []string, skip func(int) bool, table map[string]string) (string, int, []error) {
	var out []string
	var issues []error
	verbatim := 0
	for i, line := range lines {
		if skip(i) {
			continue
		}
		if !strings.ContainsRune(line, Delimiter) {
			out = append(out, line)
			continue
		}
		decoded, resolved, unknown := decodeLine(line, table)
		if resolved == 0 {
			verbatim++
		} else {
			for _, tok := range unknown {
				issues = append(issues, &UnresolvedError{Line: i + 1, Token: tok})
			}
		}
		out = append(out, decoded)
	}
	text := strings.Join(out, "\n")
	return strings.TrimSuffix(text, "\n"), verbatim, issues
}

func decodeLine(line string, table map[string]string) (string, int, []string) {
	pieces := strings.Split(line, string(Delimiter))
	var b strings.Builder
	resolved := 0
	var unknown []string
	for j, p := range pieces {
		v, known := table[p]
		switch {
		case j%2 == 0:
			b.WriteString(p)
		case known:
			b.WriteString(v)
			resolved++
		case j == len(pieces)-1:
			// unterminated reference
			b.WriteRune(Delimiter)
			b.WriteString(p)
		default:
			if looksLikeToken(p) {
				unknown = append(unknown, p)
			}
			b.WriteRune(Delimiter)
			b.WriteString(p)
			b.WriteRune(Delimiter)
		}
	}
	return b.String(), resolved, unknown
}

// looksLikeToken is the blob heuristic: non-empty, no whitespace and no
// PassThrough character.
func looksLikeToken(p string) bool {
	if strings.TrimSpace(p) == "" || strings.ContainsAny(p, " \t") {
		return false
	}
	return !containsPassThrough(p)
}

func isWatermark(line string) bool {
	for _, w := range []string{Watermark1, Watermark2} {
		if strings.Contains(line, strings.TrimPrefix(w, ":: ")) {
			return true
		}
	}
	for _, w := range legacyWatermarks {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// DecodeString decodes doc and drops the non-fatal issues.
func DecodeString(doc string) (string, error) {
	res, err := NewDecoder(nil).Decode(doc)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

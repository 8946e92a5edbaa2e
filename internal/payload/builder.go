package payload

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjy-dev/cov2ai/internal/lcov"
	"github.com/zjy-dev/cov2ai/internal/logger"
)

// DefaultContextLines is the number of source lines included before and
// after each target span in a snippet.
const DefaultContextLines = 40

// Snippet types.
const (
	SnippetLines    = "lines"
	SnippetFunction = "function"
)

// Range is an inclusive [start, end] pair of 1-based line numbers.
// It marshals as a two-element JSON array.
type Range [2]int

// BranchRef identifies one uncovered branch. The block index from the
// BRDA record is dropped: consumers only need line and branch index.
type BranchRef struct {
	Line   int `json:"line"`
	Branch int `json:"branch"`
}

// FunctionRef identifies one never-executed function. Line is nil when
// the report carried an FNDA record for the function but no FN record.
type FunctionRef struct {
	Name string `json:"name"`
	Line *int   `json:"line"`
}

// Snippet is a slice of source text around a coverage-relevant location.
type Snippet struct {
	Type  string `json:"type"`
	Range *Range `json:"range,omitempty"`
	Name  string `json:"name,omitempty"`
	Line  int    `json:"line,omitempty"`
	Code  string `json:"code"`
}

// Payload is the per-file output: everything a downstream consumer needs
// to know about untested code in one source file.
type Payload struct {
	File                string        `json:"file"`
	UncoveredRanges     []Range       `json:"uncovered_ranges"`
	UncoveredBranches   []BranchRef   `json:"uncovered_branches"`
	UnexecutedFunctions []FunctionRef `json:"unexecuted_functions"`
	Snippets            []Snippet     `json:"snippets"`
}

// Builder assembles Payloads from parsed coverage records, resolving
// record paths against a repository root to extract source snippets.
type Builder struct {
	repoRoot     string
	contextLines int
}

// NewBuilder creates a Builder. contextLines <= 0 falls back to
// DefaultContextLines.
func NewBuilder(repoRoot string, contextLines int) *Builder {
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	return &Builder{
		repoRoot:     repoRoot,
		contextLines: contextLines,
	}
}

// MergeRanges collapses a set of line numbers into maximal contiguous
// inclusive ranges, sorted by start line. The input is sorted first:
// callers typically collect lines from a map, which has no iteration
// order guarantee.
func MergeRanges(lines []int) []Range {
	ranges := make([]Range, 0)
	sorted := make([]int, len(lines))
	copy(sorted, lines)
	sort.Ints(sorted)

	for _, ln := range sorted {
		if n := len(ranges); n == 0 || ln > ranges[n-1][1]+1 {
			ranges = append(ranges, Range{ln, ln})
		} else {
			ranges[n-1][1] = ln
		}
	}
	return ranges
}

// Build produces the Payload for one coverage record.
func (b *Builder) Build(rec lcov.Record) Payload {
	uncoveredLines := make([]int, 0, len(rec.Lines))
	for ln, hits := range rec.Lines {
		if hits == 0 {
			uncoveredLines = append(uncoveredLines, ln)
		}
	}
	uncoveredRanges := MergeRanges(uncoveredLines)

	unexecuted := make([]FunctionRef, 0)
	for _, name := range rec.FunctionOrder {
		if rec.FunctionHits[name] != 0 {
			continue
		}
		ref := FunctionRef{Name: name}
		if ln, ok := rec.FunctionDefs[name]; ok {
			ref.Line = &ln
		}
		unexecuted = append(unexecuted, ref)
	}

	branches := make([]BranchRef, 0)
	for _, br := range rec.Branches {
		if br.Hits == 0 {
			branches = append(branches, BranchRef{Line: br.Line, Branch: br.Index})
		}
	}

	src := b.readSource(rec.File)

	snippets := make([]Snippet, 0)
	for i := range uncoveredRanges {
		r := uncoveredRanges[i]
		snippets = append(snippets, Snippet{
			Type:  SnippetLines,
			Range: &r,
			Code:  sliceAround(src, r[0], r[1], b.contextLines),
		})
	}
	for _, fn := range unexecuted {
		if fn.Line == nil {
			// No FN record to anchor on; the function is still listed
			// in unexecuted_functions above.
			continue
		}
		// LCOV has no function-end marker, so the anchor is the
		// definition line plus one; the context window does the rest.
		snippets = append(snippets, Snippet{
			Type: SnippetFunction,
			Name: fn.Name,
			Line: *fn.Line,
			Code: sliceAround(src, *fn.Line, *fn.Line+1, b.contextLines),
		})
	}

	return Payload{
		File:                rec.File,
		UncoveredRanges:     uncoveredRanges,
		UncoveredBranches:   branches,
		UnexecutedFunctions: unexecuted,
		Snippets:            snippets,
	}
}

// BuildAll builds one Payload per record, preserving record order.
func (b *Builder) BuildAll(records []lcov.Record) []Payload {
	payloads := make([]Payload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, b.Build(rec))
	}
	return payloads
}

// readSource reads the record's source file, split into lines with their
// terminators preserved. An unreadable file yields nil: coverage facts
// are still reported, only the snippet text is lost.
func (b *Builder) readSource(file string) []string {
	path := filepath.Join(b.repoRoot, file)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("cannot read source %s: %v", path, err)
		return nil
	}
	lines := strings.SplitAfter(string(data), "\n")
	// SplitAfter leaves a trailing empty element when the file ends in a
	// newline; it would inflate the line count.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// sliceAround returns the text of the window [start-context, end+context],
// clipped to the file, for an inclusive 1-based target span.
func sliceAround(src []string, start, end, context int) string {
	if len(src) == 0 {
		return ""
	}
	lo := start - 1 - context
	if lo < 0 {
		lo = 0
	}
	hi := end + context
	if hi > len(src) {
		hi = len(src)
	}
	if lo >= hi {
		return ""
	}
	return strings.Join(src[lo:hi], "")
}

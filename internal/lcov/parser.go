package lcov

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Branch is a single branch observation from a BRDA record.
// Hits of "-" in the report (branch unreachable due to short-circuiting)
// are normalized to 0.
type Branch struct {
	Line  int
	Block int
	Index int
	Hits  int
}

// Record holds the coverage facts for one SF: section of an lcov report.
type Record struct {
	// File is the path exactly as written after the SF: prefix.
	File string

	// Lines maps executable line numbers to hit counts.
	Lines map[int]int

	// FunctionDefs maps function names to their FN: definition line.
	// A function may appear in FunctionHits without a definition here.
	FunctionDefs map[string]int

	// FunctionHits maps function names to their FNDA: execution count.
	FunctionHits map[string]int

	// FunctionOrder lists function names in the order their first FNDA:
	// record appeared. Go map iteration order is unspecified, so this is
	// the only way to reproduce report order downstream.
	FunctionOrder []string

	// Branches holds BRDA observations in report order.
	Branches []Branch
}

func newRecord(file string) *Record {
	return &Record{
		File:         file,
		Lines:        make(map[int]int),
		FunctionDefs: make(map[string]int),
		FunctionHits: make(map[string]int),
	}
}

// FormatError reports a malformed field in a recognized lcov tag.
// It is fatal for the whole parse: range arithmetic downstream cannot
// proceed on corrupt counts.
type FormatError struct {
	LineNum int    // 1-based line number within the report
	Line    string // the offending report line, trimmed
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("lcov: line %d: %s: %q", e.LineNum, e.Reason, e.Line)
}

// Parse reads an lcov report and returns one Record per SF: section, in
// report order.
//
// A record is closed by end_of_record, by the next SF: line, or by end of
// input, so reports missing end_of_record markers still yield every
// section. Unrecognized tags are skipped; recognized tags seen outside an
// open record are skipped as well.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		cur     *Record
		lineNum int
	)

	flush := func() {
		if cur != nil {
			records = append(records, *cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "TN:"):
			// Test name, carries no data we need.

		case strings.HasPrefix(line, "SF:"):
			flush()
			cur = newRecord(strings.TrimPrefix(line, "SF:"))

		case line == "end_of_record":
			flush()

		case cur == nil:
			// Data tags are only meaningful inside an SF: section.

		case strings.HasPrefix(line, "DA:"):
			// DA:<line>,<hits>[,<checksum>]
			parts := strings.SplitN(strings.TrimPrefix(line, "DA:"), ",", 3)
			if len(parts) < 2 {
				return nil, &FormatError{lineNum, line, "DA record needs line and hit count"}
			}
			ln, err := parseCount(parts[0], lineNum, line)
			if err != nil {
				return nil, err
			}
			hits, err := parseCount(parts[1], lineNum, line)
			if err != nil {
				return nil, err
			}
			cur.Lines[ln] = hits

		case strings.HasPrefix(line, "FN:"):
			// FN:<line>,<name>
			parts := strings.SplitN(strings.TrimPrefix(line, "FN:"), ",", 2)
			if len(parts) < 2 {
				return nil, &FormatError{lineNum, line, "FN record needs line and name"}
			}
			ln, err := parseCount(parts[0], lineNum, line)
			if err != nil {
				return nil, err
			}
			cur.FunctionDefs[parts[1]] = ln

		case strings.HasPrefix(line, "FNDA:"):
			// FNDA:<hits>,<name>
			parts := strings.SplitN(strings.TrimPrefix(line, "FNDA:"), ",", 2)
			if len(parts) < 2 {
				return nil, &FormatError{lineNum, line, "FNDA record needs hit count and name"}
			}
			hits, err := parseCount(parts[0], lineNum, line)
			if err != nil {
				return nil, err
			}
			name := parts[1]
			if _, seen := cur.FunctionHits[name]; !seen {
				cur.FunctionOrder = append(cur.FunctionOrder, name)
			}
			cur.FunctionHits[name] = hits

		case strings.HasPrefix(line, "BRDA:"):
			// BRDA:<line>,<block>,<branch>,<hits>
			parts := strings.Split(strings.TrimPrefix(line, "BRDA:"), ",")
			if len(parts) != 4 {
				return nil, &FormatError{lineNum, line, "BRDA record needs four fields"}
			}
			ln, err := parseCount(parts[0], lineNum, line)
			if err != nil {
				return nil, err
			}
			block, err := parseCount(parts[1], lineNum, line)
			if err != nil {
				return nil, err
			}
			branch, err := parseCount(parts[2], lineNum, line)
			if err != nil {
				return nil, err
			}
			hits := 0
			if parts[3] != "-" && parts[3] != "0" {
				hits, err = parseCount(parts[3], lineNum, line)
				if err != nil {
					return nil, err
				}
			}
			cur.Branches = append(cur.Branches, Branch{Line: ln, Block: block, Index: branch, Hits: hits})

		default:
			// Unknown prefix: the format is extensible, skip it.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lcov report: %w", err)
	}

	flush()
	return records, nil
}

// ParseFile opens and parses an lcov report from disk.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lcov report: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func parseCount(field string, lineNum int, raw string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, &FormatError{lineNum, raw, fmt.Sprintf("malformed integer field %q", field)}
	}
	return n, nil
}

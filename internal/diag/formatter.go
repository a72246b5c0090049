package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

var (
	errorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	warningStyle = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	noteStyle    = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
)

func severityStyle(s Severity) *pterm.Style {
	switch s {
	case SeverityWarning:
		return warningStyle
	case SeverityNote:
		return noteStyle
	default:
		return errorStyle
	}
}

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string // Cache of source files by filename
}

// NewFormatter creates a new diagnostic formatter writing to stderr.
func NewFormatter() *Formatter {
	return &Formatter{
		out:         os.Stderr,
		sourceCache: make(map[string]string),
	}
}

// SetOutput redirects the formatter, mainly for tests.
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

// AddSource seeds the source cache so spans can be rendered without touching
// the filesystem (the CLI reads the input exactly once).
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format formats and prints a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	spans := f.collectSpans(d)
	if len(spans) == 0 {
		f.formatSimple(d)
		return
	}

	// Group spans by file
	spansByFile := make(map[string][]LabeledSpan)
	for _, span := range spans {
		filename := span.Span.Filename
		if filename == "" {
			filename = "<unknown>"
		}
		spansByFile[filename] = append(spansByFile[filename], span)
	}

	f.printHeader(d)

	for filename, fileSpans := range spansByFile {
		src, err := f.LoadSource(filename)
		if err != nil {
			f.formatSimple(d)
			return
		}
		f.printFileSpans(filename, src, fileSpans)
	}

	f.printHelp(d)
}

// collectSpans collects all spans from the diagnostic, prioritizing LabeledSpans.
func (f *Formatter) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.IsValid() {
		return []LabeledSpan{{Span: d.Span, Style: "primary"}}
	}
	return nil
}

// printHeader prints the error header (error[E-...]: message) with the
// severity tag styled when the terminal supports it.
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}

	style := severityStyle(d.Severity)
	if d.Code != "" {
		fmt.Fprintf(f.out, "%s: %s\n", style.Sprintf("%s[%s]", severity, d.Code), d.Message)
	} else {
		fmt.Fprintf(f.out, "%s: %s\n", style.Sprint(severity), d.Message)
	}
}

// printFileSpans prints source code with underlines for spans in a file.
func (f *Formatter) printFileSpans(filename string, src string, spans []LabeledSpan) {
	// Sort spans by line number
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	// Group spans by line
	spansByLine := make(map[int][]LabeledSpan)
	lines := strings.Split(src, "\n")
	maxLine := len(lines)

	for _, span := range spans {
		line := span.Span.Line
		if line > 0 && line <= maxLine {
			spansByLine[line] = append(spansByLine[line], span)
		}
	}

	lineNumbers := make([]int, 0, len(spansByLine))
	for line := range spansByLine {
		lineNumbers = append(lineNumbers, line)
	}
	sort.Ints(lineNumbers)

	if len(lineNumbers) == 0 {
		return
	}

	startLine := lineNumbers[0]
	endLine := lineNumbers[len(lineNumbers)-1]

	// Add context lines (2 before, 2 after)
	contextStart := max(1, startLine-2)
	contextEnd := min(maxLine, endLine+2)

	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))

	fmt.Fprintf(f.out, "  --> %s\n", filename)
	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineSpans := spansByLine[lineNum]
		lineContent := ""
		if lineNum <= len(lines) {
			lineContent = lines[lineNum-1]
		}

		lineNumStr := fmt.Sprintf("%*d", lineNumWidth, lineNum)
		fmt.Fprintf(f.out, " %s | %s\n", lineNumStr, lineContent)

		if len(lineSpans) > 0 {
			f.printUnderlines(lineNumWidth, lineContent, lineSpans)
		}
	}

	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))
}

// printUnderlines prints underlines (^) for spans on a line.
func (f *Formatter) printUnderlines(lineNumWidth int, lineContent string, spans []LabeledSpan) {
	underline := make([]byte, len(lineContent))
	for i := range underline {
		underline[i] = ' '
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Span.Column < spans[j].Span.Column
	})

	// Mark primary spans first (they get ^)
	for _, span := range spans {
		if span.Style == "primary" {
			start := max(0, span.Span.Column-1)
			end := min(len(underline), span.Span.Column-1+max(1, span.Span.End-span.Span.Start))
			for i := start; i < end && i < len(underline); i++ {
				underline[i] = '^'
			}
		}
	}

	// Mark secondary spans (they get ~)
	for _, span := range spans {
		if span.Style == "secondary" {
			start := max(0, span.Span.Column-1)
			end := min(len(underline), span.Span.Column-1+max(1, span.Span.End-span.Span.Start))
			for i := start; i < end && i < len(underline); i++ {
				if underline[i] == ' ' {
					underline[i] = '~'
				}
			}
		}
	}

	rightmost := -1
	for i := len(underline) - 1; i >= 0; i-- {
		if underline[i] != ' ' {
			rightmost = i
			break
		}
	}
	if rightmost == -1 {
		return
	}

	underlineStr := string(underline)
	fmt.Fprintf(f.out, "   %s | %s", strings.Repeat(" ", lineNumWidth), underlineStr)

	primaryLabel := ""
	secondaryLabels := []string{}
	for _, span := range spans {
		if span.Label != "" {
			if span.Style == "primary" {
				primaryLabel = span.Label
			} else {
				secondaryLabels = append(secondaryLabels, span.Label)
			}
		}
	}

	if primaryLabel != "" {
		fmt.Fprintf(f.out, " %s", primaryLabel)
	}

	fmt.Fprintf(f.out, "\n")

	for _, label := range secondaryLabels {
		fmt.Fprintf(f.out, "   %s |", strings.Repeat(" ", lineNumWidth))
		labelPos := len(lineContent) + 1
		if labelPos < rightmost+2 {
			labelPos = rightmost + 2
		}
		if labelPos > len(lineContent) {
			fmt.Fprintf(f.out, "%s", strings.Repeat(" ", labelPos-len(lineContent)))
		}
		fmt.Fprintf(f.out, " %s\n", label)
	}
}

// printHelp prints help text and suggestions.
func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "\n")
		fmt.Fprintf(f.out, "  = note: %s\n", note)
	}

	// Print help (preferred over suggestion)
	if d.Help != "" {
		fmt.Fprintf(f.out, "\n")
		fmt.Fprintf(f.out, "help: %s\n", d.Help)
	} else if d.Suggestion != "" {
		fmt.Fprintf(f.out, "\n")
		fmt.Fprintf(f.out, "help: %s\n", d.Suggestion)
	}
}

// formatSimple formats a diagnostic without source code (fallback).
func (f *Formatter) formatSimple(d Diagnostic) {
	f.printHeader(d)
	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  --> %s\n", d.Span.String())
	}
	f.printHelp(d)
}

// Helper functions
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

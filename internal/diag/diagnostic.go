package diag

import "fmt"

// Stage identifies which translator phase produced the diagnostic.
type Stage string

const (
	StageLexer    Stage = "lexer"
	StageParser   Stage = "parser"
	StageLowering Stage = "lowering"
	StageDriver   Stage = "driver"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// LabeledSpan represents a span with an optional label (like Rust's primary/secondary labels).
type LabeledSpan struct {
	Span  Span
	Label string // Optional label (e.g., "expected a type expression here")
	Style string // "primary" or "secondary" - primary spans are emphasized
}

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerUnterminatedString Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerIllegalRune        Code = "LEXER_ILLEGAL_RUNE"
	CodeLexerInconsistentDedent Code = "LEXER_INCONSISTENT_DEDENT"

	// Parser errors
	CodeParseError Code = "E-PARSE"

	// Lowering errors
	CodeUnrecognisedPattern Code = "E-PATTERN"
	CodeMissingContext      Code = "E-CONTEXT"
	CodeAnnotationMismatch  Code = "E-ANNOT"
	CodeReservedMisuse      Code = "E-RESERVED"
	CodeUnknownDecorator    Code = "E-DECORATOR"

	// Driver errors
	CodeIOFailure Code = "E-IO"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a translator diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage      Stage
	Severity   Severity
	Code       Code
	Message    string
	Span       Span   // Primary span
	Suggestion string // Optional suggestion for fixing the error
	// LabeledSpans allows multiple spans with labels (like Rust's error format)
	// The first span is treated as primary, others as secondary
	LabeledSpans []LabeledSpan
	Notes        []string // Additional notes to display
	Help         string   // Help text (alternative to Suggestion, can include code)
}

// WithSuggestion returns a new diagnostic with the given suggestion.
func (d Diagnostic) WithSuggestion(suggestion string) Diagnostic {
	d.Suggestion = suggestion
	return d
}

// WithLabeledSpan adds a labeled span to the diagnostic.
func (d Diagnostic) WithLabeledSpan(span Span, label string, style string) Diagnostic {
	if style == "" {
		style = "primary"
	}
	d.LabeledSpans = append(d.LabeledSpans, LabeledSpan{
		Span:  span,
		Label: label,
		Style: style,
	})
	return d
}

// WithPrimarySpan adds a primary labeled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "primary")
}

// WithSecondarySpan adds a secondary labeled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "secondary")
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

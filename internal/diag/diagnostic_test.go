package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arafura-lang/arafura/internal/diag"
	"github.com/arafura-lang/arafura/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedString,
		Message: "unterminated string literal",
		Span: lexer.Span{
			Line:   1,
			Column: 3,
			Start:  2,
			End:    6,
		},
	}

	diagnostic := err.ToDiagnostic()

	if diagnostic.Stage != diag.StageLexer {
		t.Fatalf("expected stage %q, got %q", diag.StageLexer, diagnostic.Stage)
	}
	if diagnostic.Code != diag.CodeLexerUnterminatedString {
		t.Fatalf("expected code %q, got %q", diag.CodeLexerUnterminatedString, diagnostic.Code)
	}
	if diagnostic.Message != err.Message {
		t.Fatalf("expected message %q, got %q", err.Message, diagnostic.Message)
	}
	if diagnostic.Severity != diag.SeverityError {
		t.Fatalf("expected severity %q, got %q", diag.SeverityError, diagnostic.Severity)
	}

	wantSpan := diag.Span{
		Line:   err.Span.Line,
		Column: err.Span.Column,
		Start:  err.Span.Start,
		End:    err.Span.End,
	}
	if diagnostic.Span != wantSpan {
		t.Fatalf("expected span %+v, got %+v", wantSpan, diagnostic.Span)
	}
}

func TestFormatterRendersSourceExcerpt(t *testing.T) {
	src := "x: int = 5\ny: unknown¶ = 1\nz: int = 7\n"

	f := diag.NewFormatter()
	var buf bytes.Buffer
	f.SetOutput(&buf)
	f.AddSource("input.py", src)

	f.Format(diag.Diagnostic{
		Stage:    diag.StageLowering,
		Severity: diag.SeverityError,
		Code:     diag.CodeUnrecognisedPattern,
		Message:  "unrecognised shape in type position",
		Span: diag.Span{
			Filename: "input.py",
			Line:     2,
			Column:   4,
			Start:    14,
			End:      21,
		},
	})

	out := buf.String()
	if !strings.Contains(out, "E-PATTERN") {
		t.Errorf("expected code in header, got:\n%s", out)
	}
	if !strings.Contains(out, "--> input.py") {
		t.Errorf("expected file pointer line, got:\n%s", out)
	}
	if !strings.Contains(out, "unknown") {
		t.Errorf("expected offending source line in excerpt, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected caret underline, got:\n%s", out)
	}
}

func TestFormatterFallsBackWithoutSpan(t *testing.T) {
	f := diag.NewFormatter()
	var buf bytes.Buffer
	f.SetOutput(&buf)

	f.Format(diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeIOFailure,
		Message:  "no such file: missing.py",
	})

	out := buf.String()
	if !strings.Contains(out, "no such file: missing.py") {
		t.Errorf("expected message in fallback output, got:\n%s", out)
	}
}

func TestDiagnosticBuilders(t *testing.T) {
	d := diag.Diagnostic{Message: "partial parameter annotations"}
	d = d.WithNote("either annotate every parameter or none").
		WithHelp("add an annotation to parameter 'b'")

	if len(d.Notes) != 1 {
		t.Fatalf("expected one note, got %d", len(d.Notes))
	}
	if d.Help == "" {
		t.Fatalf("expected help text to be set")
	}
}

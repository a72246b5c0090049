package cgen

import (
	"fmt"

	"github.com/arafura-lang/arafura/internal/diag"
	"github.com/arafura-lang/arafura/internal/lexer"
)

// Error is the single error type produced by the lowering walk. Code is one
// of the lowering diagnostic codes; Span points at the offending node.
type Error struct {
	Code    diag.Code
	Message string
	Span    lexer.Span
}

func (e *Error) Error() string {
	return e.Message
}

// Diagnostic converts the error into a renderable diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLowering,
		Severity: diag.SeverityError,
		Code:     e.Code,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

func errAt(code diag.Code, span lexer.Span, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}
}

func unrecognised(span lexer.Span, format string, args ...any) *Error {
	return errAt(diag.CodeUnrecognisedPattern, span, format, args...)
}

func reservedMisuse(span lexer.Span, format string, args ...any) *Error {
	return errAt(diag.CodeReservedMisuse, span, format, args...)
}

func annotationMismatch(span lexer.Span, format string, args ...any) *Error {
	return errAt(diag.CodeAnnotationMismatch, span, format, args...)
}

package diag_test

import (
	"testing"

	"github.com/mirlang/mirc/internal/diag"
	"github.com/mirlang/mirc/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedString,
		Message: "unterminated string literal",
		Span:    lexer.Span{Line: 1, Column: 3, Start: 2, End: 6},
	}

	d := err.ToDiagnostic()

	if d.Stage != diag.StageLexer {
		t.Fatalf("expected stage %q, got %q", diag.StageLexer, d.Stage)
	}
	if d.Code != diag.CodeLexerUnterminatedString {
		t.Fatalf("expected code %q, got %q", diag.CodeLexerUnterminatedString, d.Code)
	}
	if d.Severity != diag.SeverityError {
		t.Fatalf("expected severity %q, got %q", diag.SeverityError, d.Severity)
	}
	if d.Message != err.Message {
		t.Fatalf("expected message %q, got %q", err.Message, d.Message)
	}
}

func TestFormatIncludesCodeAndLocation(t *testing.T) {
	d := diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     diag.CodeLexerIllegalRune,
		Message:  "illegal rune '#'",
		Span:     diag.Span{Filename: "in.mir", Line: 4, Column: 7},
	}

	got := diag.Format(d)
	want := "error[LEXER_ILLEGAL_RUNE]: illegal rune '#' (in.mir:4:7)"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

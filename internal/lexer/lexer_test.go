package lexer

import "testing"

func TestNextToken_Basic(t *testing.T) {
	input := `let x: i32 = 10;`

	tests := []struct {
		expectedType  TokenType
		expectedValue string
	}{
		{LET, "let"},
		{IDENT, "x"},
		{COLON, ":"},
		{IDENT, "i32"},
		{ASSIGN, "="},
		{INT, "10"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Value != tt.expectedValue {
			t.Fatalf("tests[%d] - value wrong. expected=%q, got=%q", i, tt.expectedValue, tok.Value)
		}
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `&mut & && || == != <= >= << >> -> ::`
	_ = REF_MUT // synthetic token: the lexer never emits it for `&mut`

	expected := []TokenType{
		AMPERSAND, MUT, AMPERSAND, AND, OR, EQ, NOT_EQ, LE, GE, SHL, SHR, ARROW, DOUBLE_COLON, EOF,
	}
	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("step %d: expected %q, got %q (%q)", i, want, tok.Type, tok.Value)
		}
	}
}

func TestNextToken_CharAndString(t *testing.T) {
	l := New(`'a' "hi\n"`)

	tok := l.NextToken()
	if tok.Type != CHAR || tok.Value != "a" {
		t.Fatalf("expected char 'a', got %v %q", tok.Type, tok.Value)
	}

	tok = l.NextToken()
	if tok.Type != STRING || tok.Value != "hi\n" {
		t.Fatalf("expected string \"hi\\n\", got %v %q", tok.Type, tok.Value)
	}
}

func TestNextToken_UnterminatedCharReportsError(t *testing.T) {
	l := New(`'ab'`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for multi-char literal, got %v", tok.Type)
	}
	if len(l.Errors) != 1 || l.Errors[0].Kind != ErrUnterminatedChar {
		t.Fatalf("expected one ErrUnterminatedChar, got %+v", l.Errors)
	}
}

func TestNextToken_HexAndBinaryInts(t *testing.T) {
	l := New(`0x2a 0b101`)
	tok := l.NextToken()
	if tok.Type != INT || tok.Value != "0x2a" {
		t.Fatalf("expected hex int, got %v %q", tok.Type, tok.Value)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.Value != "0b101" {
		t.Fatalf("expected binary int, got %v %q", tok.Type, tok.Value)
	}
}

func TestTriviaEmitsSingleSpaceWhitespace(t *testing.T) {
	input := `let x = 10;`
	expected := []TokenType{LET, WHITESPACE, IDENT, WHITESPACE, ASSIGN, WHITESPACE, INT, SEMICOLON, EOF}

	l := NewWithTrivia(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("step %d - expected token %q, got %q", i, typ, tok.Type)
		}
	}
}

func TestUnterminatedBlockCommentReportsError(t *testing.T) {
	l := New(`/* unterminated`)
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
	}
	if len(l.Errors) != 1 || l.Errors[0].Kind != ErrUnterminatedBlockComment {
		t.Fatalf("expected one ErrUnterminatedBlockComment, got %+v", l.Errors)
	}
}

package diag

import "fmt"

// String renders a Span the way a compiler points at source: "file:line:col",
// or just "line:col" when no filename was attached.
func (s Span) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// Format renders a Diagnostic as a single-line, compiler-style message:
// "error[CODE]: message (file:line:col)". Grounded on the teacher's
// Formatter.printHeader (internal/diag/formatter.go), stripped of the
// source-snippet rendering this subsystem's Span has no source cache to
// back (§9 non-goals: no source spans carried through the lowering
// pipeline itself; this formatter only ever sees lexer/parser spans).
func Format(d Diagnostic) string {
	severity := string(d.Severity)
	if severity == "" {
		severity = string(SeverityError)
	}
	head := severity
	if d.Code != "" {
		head = fmt.Sprintf("%s[%s]", severity, d.Code)
	}
	if d.Span == (Span{}) {
		return fmt.Sprintf("%s: %s", head, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", head, d.Message, d.Span)
}

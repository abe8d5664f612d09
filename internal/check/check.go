// Package check runs a final structural validation pass over a hir.Program
// before it reaches the lowerer. Name resolution and type annotation
// resolution already happened inline during parsing (see internal/parser);
// what's left here is verifying the invariants the lowerer assumes and will
// otherwise panic on, the same division of labor the teacher draws between
// "the parser accepts the grammar" and "a later pass rejects nonsense the
// grammar alone can't exclude".
package check

import (
	"fmt"

	"github.com/mirlang/mirc/internal/hir"
)

// Error reports a single structural problem found in a hir.Program.
type Error struct {
	Detail string
}

func (e *Error) Error() string { return "check: " + e.Detail }

// Program walks every item in prog and returns every problem found, rather
// than stopping at the first (so a caller can report them all at once, the
// way the parser's own ParseError accumulator does).
func Program(prog *hir.Program) []error {
	c := &checker{}
	for _, item := range prog.Items {
		c.item(item)
	}
	return c.errors
}

type checker struct {
	errors []error
}

func (c *checker) fail(format string, args ...any) {
	c.errors = append(c.errors, &Error{Detail: fmt.Sprintf(format, args...)})
}

func (c *checker) item(it hir.Item) {
	switch v := it.(type) {
	case *hir.FunctionItem:
		if v.Body != nil {
			c.expr(v.Body)
		}
	case *hir.ImplItem:
		for _, m := range v.Methods {
			if m.Body != nil {
				c.expr(m.Body)
			}
		}
	case *hir.StructItem, *hir.EnumItem, *hir.ConstItem, *hir.TraitItem:
		// No body to walk; struct/enum shape validity lives in the type
		// interner, const folding already ran during parsing.
	}
}

func (c *checker) stmt(s hir.Stmt) {
	switch v := s.(type) {
	case *hir.LetStmt:
		if v.Init != nil {
			c.expr(v.Init)
		}
	case *hir.ExprStmt:
		c.expr(v.Expr)
	}
}

// expr recursively validates an expression tree, reporting every node whose
// type failed to resolve and every control-flow node used outside the
// context its semantics require.
func (c *checker) expr(e hir.Expr) {
	if e == nil {
		return
	}
	if e.Type() == nil {
		c.fail("%T has no resolved type", e)
	}

	switch v := e.(type) {
	case *hir.FieldAccess:
		c.expr(v.Base)
	case *hir.IndexExpr:
		c.expr(v.Base)
		c.expr(v.Index)
	case *hir.DerefExpr:
		c.expr(v.Operand)
	case *hir.RefExpr:
		if !v.Operand.IsPlace() {
			c.fail("cannot take a reference to a non-place expression")
		}
		c.expr(v.Operand)
	case *hir.UnaryExpr:
		c.expr(v.Operand)
	case *hir.BinaryExpr:
		c.expr(v.Left)
		c.expr(v.Right)
	case *hir.LogicalExpr:
		c.expr(v.Left)
		c.expr(v.Right)
	case *hir.CastExpr:
		c.expr(v.Operand)
	case *hir.AssignExpr:
		if !v.Discard && !v.Target.IsPlace() {
			c.fail("assignment target is not a place")
		}
		c.expr(v.Target)
		c.expr(v.Value)
	case *hir.CallExpr:
		if v.Target.Function == nil && v.Target.Method == nil {
			c.fail("call to an unresolved function")
		}
		for _, a := range v.Args {
			c.expr(a)
		}
	case *hir.MethodCallExpr:
		if v.Method == nil {
			c.fail("method call to an unresolved method")
		}
		c.expr(v.Receiver)
		for _, a := range v.Args {
			c.expr(a)
		}
	case *hir.StructLiteralExpr:
		for _, f := range v.Fields {
			c.expr(f.Value)
		}
	case *hir.ArrayLiteralExpr:
		for _, el := range v.Elements {
			c.expr(el)
		}
	case *hir.ArrayRepeatExpr:
		c.expr(v.Value)
	case *hir.IfExpr:
		c.expr(v.Cond)
		c.expr(v.Then)
		if v.Else != nil {
			c.expr(v.Else)
		}
	case *hir.BlockExpr:
		for _, s := range v.Stmts {
			c.stmt(s)
		}
		if v.Tail != nil {
			c.expr(v.Tail)
		}
	case *hir.LoopExpr:
		c.expr(v.Body)
	case *hir.WhileExpr:
		c.expr(v.Cond)
		c.expr(v.Body)
	case *hir.BreakExpr:
		if v.Loop == nil {
			c.fail("break outside of a loop")
		}
		if v.Value != nil {
			c.expr(v.Value)
		}
	case *hir.ContinueExpr:
		if v.Loop == nil {
			c.fail("continue outside of a loop")
		}
	case *hir.ReturnExpr:
		if v.Value != nil {
			c.expr(v.Value)
		}
	}
}

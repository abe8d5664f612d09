package mir

import (
	"fmt"
	"sort"
	"strings"
)

// PrettyPrint returns a human-readable text rendering of a whole module,
// grounded on the teacher's own internal/mir/pretty.go dispatch shape
// (per-node PrettyPrint methods plus a handful of central string helpers)
// but driven by this package's ID-based blocks/locals rather than the
// teacher's pointer/label-based ones.
func (m *MirModule) PrettyPrint() string {
	var b strings.Builder
	for i, fn := range m.Functions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fn.PrettyPrint())
	}
	for _, ext := range m.Externs {
		b.WriteString(fmt.Sprintf("\n\nextern fn %s%s\n", ext.Name, signatureTail(ext.Sig)))
	}
	return b.String()
}

// PrettyPrint returns a human-readable rendering of one function: its
// signature, its locals (marking aliased ones, §4.7), and its blocks in
// declaration order.
func (f *MirFunction) PrettyPrint() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("fn %s%s {\n", f.Name, signatureTail(f.Sig)))

	if len(f.Locals) > 0 {
		for _, local := range f.Locals {
			b.WriteString("  let ")
			b.WriteString(localDeclString(local))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, bb := range f.Blocks {
		b.WriteString(bb.PrettyPrint())
	}

	b.WriteString("}")
	return b.String()
}

func signatureTail(sig *Signature) string {
	params := make([]string, len(sig.ParamTypes))
	for i, t := range sig.ParamTypes {
		name := "_"
		if i < len(sig.ParamNames) {
			name = sig.ParamNames[i]
		}
		params[i] = fmt.Sprintf("%s: %s", name, t)
	}
	ret := "()"
	switch sig.Return.Kind {
	case RetVoid:
		ret = "unit"
	case RetNever:
		ret = "!"
	case RetDirect, RetIndirectSRet:
		ret = sig.Return.Type.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), ret)
}

func localDeclString(l LocalInfo) string {
	name := l.Name
	if name == "" {
		name = fmt.Sprintf("_%d", l.ID)
	}
	if l.IsAlias {
		return fmt.Sprintf("%s: %s = alias(abi_param %d)", name, l.Type, l.AliasTarget)
	}
	return fmt.Sprintf("%s: %s", name, l.Type)
}

// PrettyPrint renders one basic block: its phis, its statements, then its
// terminator.
func (bb *BasicBlock) PrettyPrint() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  bb%d:\n", bb.ID))

	for _, phi := range bb.Phis {
		b.WriteString("    ")
		b.WriteString(phi.PrettyPrint())
		b.WriteString("\n")
	}
	for _, s := range bb.Statements {
		b.WriteString("    ")
		b.WriteString(prettyPrintStmt(s))
		b.WriteString("\n")
	}
	if bb.Terminator != nil {
		b.WriteString("    ")
		b.WriteString(prettyPrintTerminator(bb.Terminator))
		b.WriteString("\n")
	}
	return b.String()
}

func (p PhiNode) PrettyPrint() string {
	preds := make([]BasicBlockId, 0, len(p.Inputs))
	for pred := range p.Inputs {
		preds = append(preds, pred)
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })

	inputs := make([]string, 0, len(preds))
	for _, pred := range preds {
		inputs = append(inputs, fmt.Sprintf("bb%d: %s", pred, operandString(p.Inputs[pred])))
	}
	return fmt.Sprintf("t%d: %s = phi [%s]", p.Result, p.Typ, strings.Join(inputs, ", "))
}

func prettyPrintStmt(s Statement) string {
	switch v := s.(type) {
	case DefineStatement:
		return fmt.Sprintf("t%d = %s", v.Result, rvalueString(v.RHS))
	case LoadStatement:
		return fmt.Sprintf("t%d = load %s", v.Result, placeString(v.From))
	case AssignStatement:
		return fmt.Sprintf("%s = %s", placeString(v.To), valueSourceString(v.Value))
	case InitStatement:
		return initStatementString(v)
	case CallStatement:
		return callStatementString(v)
	default:
		return fmt.Sprintf("<?stmt:%T>", s)
	}
}

func initStatementString(v InitStatement) string {
	switch {
	case v.Repeat != nil:
		return fmt.Sprintf("init %s = [%s; %d]", placeString(v.To), valueSourceString(v.Repeat.Value), v.Repeat.Count)
	case v.Elems != nil:
		elems := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = valueSourceString(e)
		}
		return fmt.Sprintf("init %s = [%s]", placeString(v.To), strings.Join(elems, ", "))
	default:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = fmt.Sprintf("#%d: %s", f.FieldIndex, valueSourceString(f.Value))
		}
		return fmt.Sprintf("init %s = { %s }", placeString(v.To), strings.Join(fields, ", "))
	}
}

func callStatementString(v CallStatement) string {
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = valueSourceString(a)
	}
	call := fmt.Sprintf("call f%d(%s)", v.Callee, strings.Join(args, ", "))
	switch {
	case v.Dest != nil:
		return fmt.Sprintf("t%d = %s", *v.Dest, call)
	case v.SretDest != nil:
		return fmt.Sprintf("%s = %s", placeString(*v.SretDest), call)
	default:
		return call
	}
}

func prettyPrintTerminator(t Terminator) string {
	switch v := t.(type) {
	case GotoTerminator:
		return fmt.Sprintf("goto bb%d", v.Target)
	case SwitchIntTerminator:
		cases := make([]string, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = fmt.Sprintf("%d => bb%d", c.Value, c.Target)
		}
		return fmt.Sprintf("switch %s [%s] default bb%d", operandString(v.Discriminant), strings.Join(cases, ", "), v.Default)
	case ReturnTerminator:
		if v.Value == nil {
			return "return"
		}
		return fmt.Sprintf("return %s", operandString(v.Value))
	case UnreachableTerminator:
		return "unreachable"
	default:
		return fmt.Sprintf("<?terminator:%T>", t)
	}
}

func rvalueString(r RValue) string {
	switch v := r.(type) {
	case ConstantRValue:
		return constantString(v.Const)
	case BinaryOpRValue:
		return fmt.Sprintf("%s %s %s", operandString(v.Left), binOpString(v.Op), operandString(v.Right))
	case UnaryOpRValue:
		return fmt.Sprintf("%s%s", unOpString(v.Op), operandString(v.Operand))
	case RefRValue:
		if v.Mutable {
			return fmt.Sprintf("&mut %s", placeString(v.Place))
		}
		return fmt.Sprintf("&%s", placeString(v.Place))
	case CastRValue:
		return fmt.Sprintf("%s as %s", operandString(v.Operand), v.Target)
	case ArrayRepeatRValue:
		return fmt.Sprintf("[%s; %d]", operandString(v.Value), v.Count)
	case FieldAccessRValue:
		return fmt.Sprintf("%s.#%d", valueSourceString(v.Base), v.FieldIndex)
	case IndexAccessRValue:
		return fmt.Sprintf("%s[%s]", valueSourceString(v.Base), operandString(v.Index))
	default:
		return fmt.Sprintf("<?rvalue:%T>", r)
	}
}

func binOpString(op BinOp) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

func unOpString(op UnOp) string {
	if op == OpNot {
		return "!"
	}
	return "-"
}

func operandString(op Operand) string {
	switch v := op.(type) {
	case TempOperand:
		return fmt.Sprintf("t%d", v.Temp)
	case Constant:
		return constantString(v)
	default:
		return fmt.Sprintf("<?operand:%T>", op)
	}
}

func constantString(c Constant) string {
	switch v := c.(type) {
	case BoolConst:
		return fmt.Sprintf("%t", v.Val)
	case IntConst:
		return fmt.Sprintf("%d", v.Val)
	case CharConst:
		return fmt.Sprintf("%q", v.Val)
	case StringConst:
		return fmt.Sprintf("%q", v.Val)
	case UnitConst:
		return "()"
	case EnumDiscriminant:
		return fmt.Sprintf("%s::%s", v.Typ, v.Variant)
	default:
		return fmt.Sprintf("<?const:%T>", c)
	}
}

func valueSourceString(vs ValueSource) string {
	switch v := vs.(type) {
	case Place:
		return placeString(v)
	case Operand:
		return operandString(v)
	default:
		return fmt.Sprintf("<?valuesource:%T>", vs)
	}
}

func placeString(p Place) string {
	var b strings.Builder
	switch base := p.Base.(type) {
	case LocalPlace:
		b.WriteString(fmt.Sprintf("_%d", base.Local))
	case GlobalPlace:
		b.WriteString(base.Name)
	case PointerPlace:
		b.WriteString(fmt.Sprintf("(*%s)", operandString(base.Pointer)))
	}
	for _, proj := range p.Projections {
		switch pr := proj.(type) {
		case FieldProjection:
			b.WriteString(fmt.Sprintf(".%s", pr.FieldName))
		case IndexProjection:
			b.WriteString(fmt.Sprintf("[%s]", operandString(pr.Index)))
		}
	}
	return b.String()
}

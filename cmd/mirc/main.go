// Command mirc drives the lexer, parser, checker, and MIR lowering/
// validation pipeline over a single source file, the way the teacher's own
// cmd/malphas/main.go drives its own pipeline — but thinner: this is a
// demonstration front end for the lowering subsystem, not a full compiler
// driver, so it stops at MIR (or, with -emit-llvm, at a real LLVM module
// text dump) and never shells out to llc/opt/clang.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/mirlang/mirc/internal/check"
	"github.com/mirlang/mirc/internal/codegen/llvmbridge"
	"github.com/mirlang/mirc/internal/diag"
	"github.com/mirlang/mirc/internal/mir"
	"github.com/mirlang/mirc/internal/parser"
	"github.com/mirlang/mirc/internal/types"
)

func main() {
	emitLLVM := flag.Bool("emit-llvm", false, "print LLVM IR instead of MIR text")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mirc [flags] <file>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *emitLLVM); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(filename string, emitLLVM bool) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return errors.WithMessage(err, "reading source")
	}

	in := types.NewInterner()
	p := parser.New(string(src), in)
	prog := p.ParseProgram()
	if lexErrs := p.LexErrors(); len(lexErrs) > 0 {
		for _, e := range lexErrs {
			d := e.ToDiagnostic()
			d.Span.Filename = filename
			fmt.Fprintln(os.Stderr, diag.Format(d))
		}
		return errors.New("lexing failed")
	}
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", filename, e.Span.Line, e.Span.Column, e.Message)
		}
		return errors.New("parse failed")
	}

	if errs := check.Program(prog); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return errors.New("check failed")
	}

	mod, err := mir.NewLowerer(in).Lower(prog)
	if err != nil {
		return errors.WithMessage(err, "lowering")
	}

	if err := mir.Validate(mod); err != nil {
		return errors.WithMessage(err, "validating")
	}

	if !emitLLVM {
		fmt.Println(mod.PrettyPrint())
		return nil
	}

	llvmMod, err := llvmbridge.Generate(in, mod)
	if err != nil {
		return errors.WithMessage(err, "generating LLVM IR")
	}
	fmt.Println(llvmMod.String())
	return nil
}

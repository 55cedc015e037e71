// Command lisp9c is a thin, non-interactive driver: it reads a file,
// runs Reader -> Expander -> Syntax-check -> Closure-convert ->
// Codegen -> VM.Eval over each top-level form in turn, and prints the
// result. There is no REPL, no banner/prompt/`**`-binding restart
// loop, and no image save/load — all explicitly out of scope (§1, §6
// "REPL").
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lisp9"
)

func main() {
	var (
		asm        = flag.Bool("asm", false, "print the bytecode listing for each top-level form instead of running it")
		color      = flag.Bool("color", false, "colorize -asm output")
		heapCells  = flag.Int("heap-cells", 0, "override heap.cells (0 keeps the default)")
		heapVcells = flag.Int("heap-vcells", 0, "override heap.vcells (0 keeps the default)")
		traceN     = flag.Int("ntrace", 0, "override vm.ntrace (0 keeps the default)")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		log.Fatal("usage: lisp9c [flags] file [args...]")
	}
	path, cmdArgs := args[0], args[1:]

	cfg := lisp9.NewConfig()
	if *heapCells > 0 {
		cfg.SetInt("heap.cells", *heapCells)
	}
	if *heapVcells > 0 {
		cfg.SetInt("heap.vcells", *heapVcells)
	}
	if *traceN > 0 {
		cfg.SetInt("vm.ntrace", *traceN)
	}

	it := lisp9.NewInterpreter(cfg)

	cmdline := lisp9.Cell(lisp9.NIL)
	for i := len(cmdArgs) - 1; i >= 0; i-- {
		cmdline = it.H.Cons(it.H.NewString(cmdArgs[i]), cmdline)
	}
	it.M.SetCmdline(cmdline)

	port, err := it.H.Ports.OpenInFile(path)
	if err != nil {
		log.Fatalf("lisp9c: %s: %s", path, err)
	}

	if *asm {
		runAsm(it, port, *color)
		return
	}

	reader := lisp9.NewReader(it.H, port, nil)
	for {
		form, err := reader.Read()
		if err != nil {
			log.Fatalf("lisp9c: %s", err)
		}
		if form == lisp9.EOF {
			break
		}
		result, err := it.EvalForm(form)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(it.Print(result))
	}
}

func runAsm(it *lisp9.Interpreter, port lisp9.Cell, color bool) {
	reader := lisp9.NewReader(it.H, port, nil)
	for {
		form, err := reader.Read()
		if err != nil {
			log.Fatalf("lisp9c: %s", err)
		}
		if form == lisp9.EOF {
			break
		}
		chunks, err := it.Compile(form)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, bc := range chunks {
			if color {
				fmt.Print(it.M.DisassembleColor(bc))
			} else {
				fmt.Print(it.M.Disassemble(bc))
			}
		}
	}
}

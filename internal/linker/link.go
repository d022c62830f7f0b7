package linker

import (
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// Evaluator runs a linked program against the dispatch table captured at
// link time. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	kind  ir.Kind
	prog  ir.Program
	exec  []ir.Instruction // prog with bindings renumbered densely
	table map[ir.Kind]registry.Entry
	slots int
}

// Link parses program text and links it against reg. own names the kind
// the program implements; it is left out of the dispatch table so a chip
// cannot call itself.
func Link(reg *registry.Registry, text string, own ir.Kind) (*Evaluator, error) {
	prog, err := Parse(text, own)
	if err != nil {
		return nil, err
	}
	return LinkProgram(reg, prog, own)
}

// LinkProgram links a program in struct form. It applies the same
// structural checks as Link: exactly one return, as the last instruction;
// every binding assigned once before it is read; every call target present
// in the dispatch table.
func LinkProgram(reg *registry.Registry, prog ir.Program, own ir.Kind) (*Evaluator, error) {
	table := reg.Snapshot(own)

	n := len(prog.Instructions)
	if n == 0 || prog.Instructions[n-1].Op != ir.OpReturn {
		return nil, unsafe(own, n, "", "program must end with a return")
	}

	// slot maps a binding number to its dense position in the order of
	// assignment, so memory per Eval is bounded by the program length.
	slot := make(map[int]int)
	exec := make([]ir.Instruction, 0, n)
	for i, inst := range prog.Instructions {
		text := ir.Program{Instructions: []ir.Instruction{inst}}.String()

		args := make([]ir.Ref, len(inst.Args))
		for k, ref := range inst.Args {
			if !ref.Input {
				dense, ok := slot[ref.Binding]
				if !ok {
					return nil, unsafe(own, i, text, "reads a binding that is not yet assigned")
				}
				ref.Binding = dense
			}
			args[k] = ref
		}

		switch inst.Op {
		case ir.OpReturn:
			if i != n-1 {
				return nil, unsafe(own, i, text, "return must be the last instruction")
			}
			exec = append(exec, ir.Instruction{Op: inst.Op, Args: args})
			continue
		case ir.OpAlias:
			if len(inst.Args) != 1 {
				return nil, unsafe(own, i, text, "alias takes exactly one reference")
			}
		case ir.OpCall:
			if !inst.Kind.Valid() {
				return nil, unsafe(own, i, text, "invalid call target")
			}
			if _, ok := table[inst.Kind]; !ok {
				err := ir.NewUnknownKindError(inst.Kind)
				err.Index = i
				return nil, err
			}
		default:
			return nil, unsafe(own, i, text, "unknown opcode")
		}

		if _, dup := slot[inst.Dest]; inst.Dest < 0 || dup {
			return nil, unsafe(own, i, text, "binding assigned twice")
		}
		slot[inst.Dest] = len(slot)
		exec = append(exec, ir.Instruction{Op: inst.Op, Dest: slot[inst.Dest], Kind: inst.Kind, Args: args})
	}

	return &Evaluator{kind: own, prog: prog, exec: exec, table: table, slots: len(slot)}, nil
}

// Program returns the linked program.
func (ev *Evaluator) Program() ir.Program {
	return ev.prog
}

// Code renders the linked program in its default text form.
func (ev *Evaluator) Code() string {
	return ev.prog.String()
}

// Func adapts ev for storage in a registry entry.
func (ev *Evaluator) Func() registry.EvalFunc {
	return ev.Eval
}

// Eval executes the program for one input vector.
func (ev *Evaluator) Eval(in []bool) ([]bool, error) {
	bindings := make([][]bool, ev.slots)

	for i, inst := range ev.exec {
		args, err := ev.resolve(in, bindings, inst.Args, i)
		if err != nil {
			return nil, err
		}

		switch inst.Op {
		case ir.OpReturn:
			return args, nil
		case ir.OpAlias:
			bindings[inst.Dest] = args
		case ir.OpCall:
			out, err := ev.table[inst.Kind].Call(args)
			if err != nil {
				return nil, err
			}
			bindings[inst.Dest] = out
		}
	}
	return nil, nil // unreachable: LinkProgram guarantees a trailing return
}

// resolve flattens refs into one value vector.
func (ev *Evaluator) resolve(in []bool, bindings [][]bool, refs []ir.Ref, at int) ([]bool, error) {
	vals := make([]bool, 0, len(refs))
	for k, ref := range refs {
		src := in
		if !ref.Input {
			src = bindings[ref.Binding]
		}
		if !ref.Indexed {
			vals = append(vals, src...)
			continue
		}
		if ref.Index >= len(src) {
			ref = ev.prog.Instructions[at].Args[k] // as written
			if ref.Input {
				return nil, ir.IndexErrorf(ir.ErrCodeInputArity, ev.kind, at,
					"%s past %d input values", ref, len(in))
			}
			return nil, ir.IndexErrorf(ir.ErrCodeBindingOutOfRange, ev.kind, at,
				"%s past %d values", ref, len(src))
		}
		vals = append(vals, src[ref.Index])
	}
	return vals, nil
}

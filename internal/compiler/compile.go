package compiler

import (
	"slices"

	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// binding is what a compiled sub-chip's output pins resolve to.
type binding struct {
	input  bool // input boundary: pins map onto $in[offset+pin]
	offset int
	dest   int // $N for emitted calls
}

func (b binding) ref(pin int) ir.Ref {
	if b.input {
		return ir.InputRef(b.offset + pin)
	}
	return ir.BindingRef(b.dest, pin)
}

// Compile lowers def into a program of primitive calls.
//
// Input boundaries bind to $in slots in sub-chip order. Every other sub-chip
// is visited in Sort order: output boundaries alias their inputs, everything
// else becomes one `$N = kind(args)` call. The program returns the outputs
// of every output boundary in ascending sub-chip order.
func Compile(def *ir.ChipDefinition) (ir.Program, error) {
	return compile(def, nil)
}

// CompileText compiles def and renders the program text.
func CompileText(def *ir.ChipDefinition, opts ir.FormatOptions) (string, error) {
	prog, err := Compile(def)
	if err != nil {
		return "", err
	}
	return prog.Format(opts), nil
}

// CompileKind compiles the registered compound kind, checking sub-chip
// inputs against the registry's declared arities.
func CompileKind(reg *registry.Registry, kind ir.Kind) (ir.Program, error) {
	e, err := reg.Lookup(kind)
	if err != nil {
		return ir.Program{}, err
	}
	if e.Primitive || e.Definition == nil {
		return ir.Program{}, ir.Errorf(ir.ErrCodeCannotCompilePrimitive, kind,
			"cannot compile primitive chip %s", kind)
	}
	return compile(e.Definition, RegistryArity(reg))
}

// RegistryArity returns an ArityFunc backed by reg's declared input counts.
func RegistryArity(reg *registry.Registry) ArityFunc {
	return func(kind ir.Kind) int {
		e, err := reg.Lookup(kind)
		if err != nil {
			return 0
		}
		return e.Inputs
	}
}

func compile(def *ir.ChipDefinition, arity ArityFunc) (ir.Program, error) {
	if err := CheckDefinition(def); err != nil {
		return ir.Program{}, err
	}
	if err := CheckInputs(def, arity); err != nil {
		return ir.Program{}, err
	}
	order, err := Sort(def)
	if err != nil {
		return ir.Program{}, err
	}

	bindings := make([]*binding, len(def.Chips))
	cursor := 0
	for i, c := range def.Chips {
		if b := c.Boundary(); b.Direction == ir.DirIn {
			bindings[i] = &binding{input: true, offset: cursor}
			cursor += b.Width
		}
	}

	// Wire sources per sub-chip, keyed by destination pin.
	sources := make([]map[int]ir.PinRef, len(def.Chips))
	for _, w := range def.Wires {
		c := w.To.Chip()
		if sources[c] == nil {
			sources[c] = make(map[int]ir.PinRef)
		}
		sources[c][w.To.Pin()] = w.From
	}

	var (
		prog    ir.Program
		outputs = make(map[int][]ir.Ref)
		next    = 0
	)
	for _, i := range order {
		c := def.Chips[i]
		if c.Kind.IsInput() {
			continue
		}

		pins := make([]int, 0, len(sources[i]))
		for pin := range sources[i] {
			pins = append(pins, pin)
		}
		slices.Sort(pins)

		args := make([]ir.Ref, 0, len(pins))
		for _, pin := range pins {
			from := sources[i][pin]
			src := bindings[from.Chip()]
			if src == nil {
				return ir.Program{}, ir.IndexErrorf(ir.ErrCodeMissingSubChipInput, ir.Kind(def.ID), i,
					"sub-chip %d reads from unbound sub-chip %d", i, from.Chip())
			}
			args = append(args, src.ref(from.Pin()))
		}

		if c.Kind.IsOutput() {
			outputs[i] = args
			continue
		}

		prog.Instructions = append(prog.Instructions, ir.Instruction{
			Op:   ir.OpCall,
			Dest: next,
			Kind: c.Kind,
			Args: args,
		})
		bindings[i] = &binding{dest: next}
		next++
	}

	ret := ir.Instruction{Op: ir.OpReturn, Args: []ir.Ref{}}
	for i, c := range def.Chips {
		if c.Kind.IsOutput() {
			ret.Args = append(ret.Args, outputs[i]...)
		}
	}
	prog.Instructions = append(prog.Instructions, ret)
	return prog, nil
}

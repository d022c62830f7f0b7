package engine

import (
	"slices"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// Interpreter evaluates chips by walking their definitions.
type Interpreter struct {
	reg   *registry.Registry
	arity compiler.ArityFunc
}

// NewInterpreter creates an interpreter over reg.
func NewInterpreter(reg *registry.Registry) *Interpreter {
	return &Interpreter{reg: reg, arity: compiler.RegistryArity(reg)}
}

// Evaluate computes kind's outputs for inputs. Nested compound kinds use
// their compiled evaluator when one is linked.
//
// Inputs shorter than the kind's input width fail with INPUT_ARITY; extra
// values are ignored.
func (in *Interpreter) Evaluate(kind ir.Kind, inputs []bool) ([]bool, error) {
	return in.evaluateTop(kind, inputs, false)
}

// EvaluateDynamic is Evaluate without compiled evaluators: every compound
// level is expanded.
func (in *Interpreter) EvaluateDynamic(kind ir.Kind, inputs []bool) ([]bool, error) {
	return in.evaluateTop(kind, inputs, true)
}

func (in *Interpreter) evaluateTop(kind ir.Kind, inputs []bool, dynamic bool) ([]bool, error) {
	if kind.IsOutput() {
		return slices.Clone(inputs), nil
	}
	e, err := in.reg.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if e.Inputs > 0 {
		if len(inputs) < e.Inputs {
			return nil, ir.Errorf(ir.ErrCodeInputArity, kind,
				"expects %d inputs, got %d", e.Inputs, len(inputs))
		}
		inputs = inputs[:e.Inputs]
	}
	return in.evaluate(e, inputs, dynamic)
}

func (in *Interpreter) evaluateKind(kind ir.Kind, inputs []bool, dynamic bool) ([]bool, error) {
	if kind.IsOutput() {
		return slices.Clone(inputs), nil
	}
	e, err := in.reg.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return in.evaluate(e, inputs, dynamic)
}

func (in *Interpreter) evaluate(e registry.Entry, inputs []bool, dynamic bool) ([]bool, error) {
	if e.Primitive || (e.Compiled() && !dynamic) {
		return e.Call(inputs)
	}
	if e.Definition == nil {
		return nil, ir.Errorf(ir.ErrCodeNotCompound, e.Kind, "chip has no definition to expand")
	}
	return in.expand(e.Kind, e.Definition, inputs, dynamic)
}

// frame holds the per-call state of one definition's expansion.
type frame struct {
	def       *ir.ChipDefinition
	kind      ir.Kind
	buffers   [][]bool // input values per sub-chip
	set       [][]bool // which buffer slots have been fed
	evaluated []bool
	outputs   map[int][]bool
}

func (f *frame) complete(i int) bool {
	return !slices.Contains(f.set[i], false)
}

// expand evaluates def by layered propagation. Layers are processed in
// ascending sub-chip order; a sub-chip whose inputs are not all fed yet
// stays buffered until a later layer feeds it.
func (in *Interpreter) expand(kind ir.Kind, def *ir.ChipDefinition, inputs []bool, dynamic bool) ([]bool, error) {
	if err := compiler.CheckDefinition(def); err != nil {
		return nil, err
	}
	if err := compiler.CheckInputs(def, in.arity); err != nil {
		return nil, err
	}
	if width := def.InputWidth(); len(inputs) < width {
		return nil, ir.Errorf(ir.ErrCodeInputArity, kind, "expects %d inputs, got %d", width, len(inputs))
	}

	n := len(def.Chips)
	widths := compiler.InputWidths(def, in.arity)
	f := &frame{
		def:       def,
		kind:      kind,
		buffers:   make([][]bool, n),
		set:       make([][]bool, n),
		evaluated: make([]bool, n),
		outputs:   make(map[int][]bool),
	}

	outgoing := make([][]ir.Wire, n)
	for _, w := range def.Wires {
		outgoing[w.From.Chip()] = append(outgoing[w.From.Chip()], w)
	}

	var frontier []int
	cursor := 0
	for i, c := range def.Chips {
		if b := c.Boundary(); b.Direction == ir.DirIn {
			f.buffers[i] = inputs[cursor : cursor+b.Width]
			cursor += b.Width
			frontier = append(frontier, i)
			continue
		}
		f.buffers[i] = make([]bool, widths[i])
		f.set[i] = make([]bool, widths[i])
		if widths[i] == 0 {
			// Sources with no inputs start in the first layer too.
			frontier = append(frontier, i)
		}
	}

	for len(frontier) > 0 {
		var next []int
		for _, i := range frontier {
			// A lower-index feeder in this layer may already have
			// completed and evaluated i; it is still queued in next.
			if !f.complete(i) || f.evaluated[i] {
				continue
			}
			out, err := in.step(f, i, dynamic)
			if err != nil {
				return nil, err
			}
			if out == nil {
				continue
			}
			for _, w := range outgoing[i] {
				src, to := w.From.Pin(), w.To.Chip()
				if src >= len(out) {
					return nil, ir.IndexErrorf(ir.ErrCodeBindingOutOfRange, kind, i,
						"%s produced %d outputs, wire reads pin %d", def.Chips[i].Kind, len(out), src)
				}
				f.buffers[to][w.To.Pin()] = out[src]
				f.set[to][w.To.Pin()] = true
				if pos, found := slices.BinarySearch(next, to); !found {
					next = slices.Insert(next, pos, to)
				}
			}
		}
		frontier = next
	}

	var result []bool
	for i, c := range def.Chips {
		if c.Kind.IsInput() {
			continue
		}
		if !f.evaluated[i] {
			return nil, ir.IndexErrorf(ir.ErrCodeMissingSubChipInput, kind, i,
				"sub-chip %d (%s) never received all of its inputs", i, c.Kind)
		}
		if c.Kind.IsOutput() {
			result = append(result, f.outputs[i]...)
		}
	}
	if result == nil {
		result = []bool{}
	}
	return result, nil
}

// step evaluates sub-chip i of f. Output boundaries record their values and
// return nil.
func (in *Interpreter) step(f *frame, i int, dynamic bool) ([]bool, error) {
	c := f.def.Chips[i]
	if f.evaluated[i] {
		return nil, ir.IndexErrorf(ir.ErrCodeDoubleEvaluation, f.kind, i,
			"sub-chip %d (%s) evaluated twice", i, c.Kind)
	}
	f.evaluated[i] = true

	switch {
	case c.Kind.IsInput():
		return f.buffers[i], nil
	case c.Kind.IsOutput():
		f.outputs[i] = slices.Clone(f.buffers[i])
		return nil, nil
	}
	return in.evaluateKind(c.Kind, f.buffers[i], dynamic)
}

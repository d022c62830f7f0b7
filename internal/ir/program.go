package ir

import (
	"strconv"
	"strings"
)

// Ref is a binding reference: $in, $in[k], $N or $N[k].
type Ref struct {
	Input   bool // $in rather than $N
	Binding int  // N, ignored for $in
	Index   int  // subscript, valid when Indexed
	Indexed bool
}

// InputRef returns $in[k].
func InputRef(k int) Ref {
	return Ref{Input: true, Index: k, Indexed: true}
}

// BindingRef returns $n[k].
func BindingRef(n, k int) Ref {
	return Ref{Binding: n, Index: k, Indexed: true}
}

// String renders r in program text form.
func (r Ref) String() string {
	var b strings.Builder
	r.writeTo(&b)
	return b.String()
}

func (r Ref) writeTo(b *strings.Builder) {
	b.WriteByte('$')
	if r.Input {
		b.WriteString("in")
	} else {
		b.WriteString(strconv.Itoa(r.Binding))
	}
	if r.Indexed {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(r.Index))
		b.WriteByte(']')
	}
}

// Op is the instruction opcode.
type Op int

const (
	// OpCall assigns Dest the outputs of Kind applied to Args.
	OpCall Op = iota
	// OpAlias assigns Dest the values of Args[0].
	OpAlias
	// OpReturn returns Args, flattened.
	OpReturn
)

// Instruction is one step of a compiled program.
type Instruction struct {
	Op   Op
	Dest int
	Kind Kind
	Args []Ref
}

// Program is a compiled chip: a sequence of calls/aliases ending in a return.
type Program struct {
	Instructions []Instruction
}

// FormatOptions controls the text rendering of a Program.
type FormatOptions struct {
	// Minify joins instructions with ';' and drops optional spaces.
	Minify bool
}

// Format renders p as program text.
//
//	$0 = and($in[0], $in[1])
//	return [$0[0]]
func (p Program) Format(opts FormatOptions) string {
	end, sep, assign := "\n", ", ", " = "
	if opts.Minify {
		end, sep, assign = ";", ",", "="
	}

	var b strings.Builder
	for i, inst := range p.Instructions {
		if i > 0 {
			b.WriteString(end)
		}
		switch inst.Op {
		case OpReturn:
			b.WriteString("return [")
			writeRefs(&b, inst.Args, sep)
			b.WriteByte(']')
		case OpAlias:
			Ref{Binding: inst.Dest}.writeTo(&b)
			b.WriteString(assign)
			writeRefs(&b, inst.Args, sep)
		default:
			Ref{Binding: inst.Dest}.writeTo(&b)
			b.WriteString(assign)
			b.WriteString(string(inst.Kind))
			b.WriteByte('(')
			writeRefs(&b, inst.Args, sep)
			b.WriteByte(')')
		}
	}
	return b.String()
}

// String renders p in the default (multi-line) form.
func (p Program) String() string {
	return p.Format(FormatOptions{})
}

// Calls returns the distinct kinds called by p, in first-use order.
func (p Program) Calls() []Kind {
	seen := make(map[Kind]bool)
	var kinds []Kind
	for _, inst := range p.Instructions {
		if inst.Op != OpCall || seen[inst.Kind] {
			continue
		}
		seen[inst.Kind] = true
		kinds = append(kinds, inst.Kind)
	}
	return kinds
}

func writeRefs(b *strings.Builder, refs []Ref, sep string) {
	for i, r := range refs {
		if i > 0 {
			b.WriteString(sep)
		}
		r.writeTo(b)
	}
}

package linker

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/chipsim/internal/ir"
)

const (
	refExpr   = `\$(?:\d+|in)(?:\[\d+\])?`
	refsExpr  = `(?:` + refExpr + `(?:\s*,\s*` + refExpr + `)*)?`
	identExpr = `[A-Za-z_][A-Za-z0-9_]*`
)

var (
	returnPattern = regexp.MustCompile(`^\s*return\s*\[\s*(` + refsExpr + `)\s*\]\s*$`)
	callPattern   = regexp.MustCompile(`^\s*\$(\d+)\s*=\s*(` + identExpr + `)\s*\(\s*(` + refsExpr + `)\s*\)\s*$`)
	aliasPattern  = regexp.MustCompile(`^\s*\$(\d+)\s*=\s*(` + refExpr + `)\s*$`)
	refPattern    = regexp.MustCompile(`\$(\d+|in)(?:\[(\d+)\])?`)

	errGrammar = errors.New("does not match the instruction grammar")
)

// Parse splits program text on newlines and semicolons and parses each
// instruction against the grammar. Empty instructions are rejected, not
// skipped. Only numbered bindings can be assigned; `$in` is read-only. The
// result still has to pass the structural checks in LinkProgram.
func Parse(text string, own ir.Kind) (ir.Program, error) {
	var prog ir.Program
	lines := strings.Split(strings.ReplaceAll(text, ";", "\n"), "\n")
	for i, line := range lines {
		inst, err := parseInstruction(line)
		if err != nil {
			return ir.Program{}, unsafe(own, i, line, err.Error())
		}
		prog.Instructions = append(prog.Instructions, inst)
	}
	return prog, nil
}

func parseInstruction(line string) (ir.Instruction, error) {
	if m := returnPattern.FindStringSubmatch(line); m != nil {
		args, err := parseRefs(m[1])
		if err != nil {
			return ir.Instruction{}, err
		}
		return ir.Instruction{Op: ir.OpReturn, Args: args}, nil
	}

	if m := callPattern.FindStringSubmatch(line); m != nil {
		dest, err := parseIndex(m[1])
		if err != nil {
			return ir.Instruction{}, err
		}
		args, err := parseRefs(m[3])
		if err != nil {
			return ir.Instruction{}, err
		}
		return ir.Instruction{Op: ir.OpCall, Dest: dest, Kind: ir.Kind(m[2]), Args: args}, nil
	}

	if m := aliasPattern.FindStringSubmatch(line); m != nil {
		dest, err := parseIndex(m[1])
		if err != nil {
			return ir.Instruction{}, err
		}
		args, err := parseRefs(m[2])
		if err != nil {
			return ir.Instruction{}, err
		}
		return ir.Instruction{Op: ir.OpAlias, Dest: dest, Args: args}, nil
	}

	return ir.Instruction{}, errGrammar
}

// parseRefs extracts the references from text already matched by refsExpr.
func parseRefs(text string) ([]ir.Ref, error) {
	matches := refPattern.FindAllStringSubmatch(text, -1)
	refs := make([]ir.Ref, 0, len(matches))
	for _, m := range matches {
		var r ir.Ref
		if m[1] == "in" {
			r.Input = true
		} else {
			n, err := parseIndex(m[1])
			if err != nil {
				return nil, err
			}
			r.Binding = n
		}
		if m[2] != "" {
			k, err := parseIndex(m[2])
			if err != nil {
				return nil, err
			}
			r.Index, r.Indexed = k, true
		}
		refs = append(refs, r)
	}
	return refs, nil
}

// maxIndex bounds binding numbers and subscripts.
const maxIndex = 1 << 20

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxIndex {
		return 0, fmt.Errorf("index %s out of range", s)
	}
	return n, nil
}

func unsafe(own ir.Kind, i int, text, reason string) *ir.ChipError {
	err := ir.IndexErrorf(ir.ErrCodeUnsafeInstruction, own, i,
		"refusing to link, instruction %d is unsafe or invalid: `%s` (%s)", i, text, reason)
	err.Details = map[string]string{"instruction": text}
	return err
}

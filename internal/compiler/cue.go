package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/chipsim/internal/ir"
)

// CompileChipCUE parses a CUE value into a ChipDefinition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the chip struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`chip: my_and: { chips: [...], wires: [...] }`)
//	def, err := CompileChipCUE(v.LookupPath(cue.ParsePath("chip.my_and")))
//
// The id defaults to the struct label and the name to the id.
func CompileChipCUE(v cue.Value) (*ir.ChipDefinition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &ir.ChipDefinition{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.ID = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if def.ID, err = optionalString(v, "id", def.ID); err != nil {
		return nil, err
	}
	if def.ID == "" {
		return nil, &CompileError{Field: "id", Message: "chip id is required", Pos: v.Pos()}
	}
	if def.Name, err = optionalString(v, "name", def.ID); err != nil {
		return nil, err
	}
	if def.Color, err = optionalString(v, "color", ""); err != nil {
		return nil, err
	}

	chipsVal := v.LookupPath(cue.ParsePath("chips"))
	if !chipsVal.Exists() {
		return nil, &CompileError{Field: "chips", Message: "chips list is required", Pos: v.Pos()}
	}
	chips, err := chipsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; chips.Next(); i++ {
		sub, err := parseSubChip(chips.Value(), i)
		if err != nil {
			return nil, err
		}
		def.Chips = append(def.Chips, sub)
	}

	if wiresVal := v.LookupPath(cue.ParsePath("wires")); wiresVal.Exists() {
		wires, err := wiresVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; wires.Next(); i++ {
			w, err := parseWire(wires.Value(), i)
			if err != nil {
				return nil, err
			}
			def.Wires = append(def.Wires, w)
		}
	}

	return def, nil
}

func parseSubChip(v cue.Value, i int) (ir.SubChip, error) {
	field := fmt.Sprintf("chips[%d]", i)

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return ir.SubChip{}, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: v.Pos()}
	}
	kind, err := kindVal.String()
	if err != nil {
		return ir.SubChip{}, formatCUEError(err)
	}

	sub := ir.SubChip{Kind: ir.Kind(kind)}
	for name, dst := range map[string]*float64{"x": &sub.X, "y": &sub.Y} {
		if fv := v.LookupPath(cue.ParsePath(name)); fv.Exists() {
			if *dst, err = fv.Float64(); err != nil {
				return ir.SubChip{}, formatCUEError(err)
			}
		}
	}
	if sub.Label, err = optionalString(v, "label", ""); err != nil {
		return ir.SubChip{}, err
	}
	if pc := v.LookupPath(cue.ParsePath("pinCount")); pc.Exists() {
		n, err := pc.Int64()
		if err != nil {
			return ir.SubChip{}, formatCUEError(err)
		}
		sub.PinCount = int(n)
	}
	return sub, nil
}

func parseWire(v cue.Value, i int) (ir.Wire, error) {
	field := fmt.Sprintf("wires[%d]", i)

	var w ir.Wire
	var err error
	if w.From, err = parsePinRef(v, field, "from"); err != nil {
		return ir.Wire{}, err
	}
	if w.To, err = parsePinRef(v, field, "to"); err != nil {
		return ir.Wire{}, err
	}
	if av := v.LookupPath(cue.ParsePath("anchors")); av.Exists() {
		if err := av.Decode(&w.Anchors); err != nil {
			return ir.Wire{}, formatCUEError(err)
		}
	}
	return w, nil
}

func parsePinRef(v cue.Value, field, name string) (ir.PinRef, error) {
	pv := v.LookupPath(cue.ParsePath(name))
	if !pv.Exists() {
		return ir.PinRef{}, &CompileError{
			Field:   field + "." + name,
			Message: name + " is required",
			Pos:     v.Pos(),
		}
	}
	var pair []int
	if err := pv.Decode(&pair); err != nil {
		return ir.PinRef{}, formatCUEError(err)
	}
	if len(pair) != 2 {
		return ir.PinRef{}, &CompileError{
			Field:   field + "." + name,
			Message: fmt.Sprintf("expected [chip, pin], got %d values", len(pair)),
			Pos:     pv.Pos(),
		}
	}
	return ir.PinRef{pair[0], pair[1]}, nil
}

func optionalString(v cue.Value, name, fallback string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !sv.Exists() {
		return fallback, nil
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents an error during CUE compilation.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts CUE errors to CompileError with position info.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

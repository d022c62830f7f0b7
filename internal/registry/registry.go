package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/chipsim/internal/ir"
)

// EvalFunc computes a chip's output values from its input values.
type EvalFunc func(in []bool) ([]bool, error)

// Entry is the registry record for one chip kind.
//
// A primitive entry has Eval and no Definition. A compound entry has a
// Definition, and Eval only once a compiled evaluator has been linked for it.
type Entry struct {
	Kind       ir.Kind
	Primitive  bool
	Eval       EvalFunc
	Definition *ir.ChipDefinition

	// Code is the program text Eval was linked from (compound entries only).
	Code string

	// Inputs and Outputs declare the entry's arity; 0 means unchecked.
	// Compound entries derive them from their boundary sub-chips.
	Inputs  int
	Outputs int

	Display string
	Color   string
}

// Validate checks that e is internally consistent.
func (e Entry) Validate() error {
	switch {
	case e.Primitive && e.Definition != nil:
		return ir.Errorf(ir.ErrCodeInvalidEntry, e.Kind, "primitive entry must not carry a definition")
	case e.Primitive && e.Eval == nil:
		return ir.Errorf(ir.ErrCodeInvalidEntry, e.Kind, "primitive entry requires an eval function")
	case !e.Primitive && e.Definition == nil:
		return ir.Errorf(ir.ErrCodeInvalidEntry, e.Kind, "compound entry requires a definition")
	case e.Inputs < 0 || e.Outputs < 0:
		return ir.Errorf(ir.ErrCodeInvalidEntry, e.Kind, "arity must not be negative")
	}
	return nil
}

// Call runs e's evaluator, enforcing the declared input arity.
func (e Entry) Call(in []bool) ([]bool, error) {
	if e.Eval == nil {
		return nil, ir.Errorf(ir.ErrCodeNotCompound, e.Kind, "entry has no evaluator")
	}
	if e.Inputs > 0 && len(in) != e.Inputs {
		return nil, ir.Errorf(ir.ErrCodeMissingSubChipInput, e.Kind,
			"expects %d inputs, got %d", e.Inputs, len(in))
	}
	out, err := e.Eval(in)
	if err != nil {
		return nil, err
	}
	if e.Outputs > 0 && len(out) != e.Outputs {
		return nil, ir.Errorf(ir.ErrCodeInvalidEntry, e.Kind,
			"produced %d outputs, declared %d", len(out), e.Outputs)
	}
	return out, nil
}

// Compiled reports whether a compound entry has a linked evaluator.
func (e Entry) Compiled() bool {
	return !e.Primitive && e.Eval != nil
}

// Registry maps chip kinds to entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[ir.Kind]Entry
	version uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[ir.Kind]Entry)}
}

// Register inserts or replaces the entry for kind.
//
// Replacing a compound definition drops any compiled evaluator unless e
// carries one. Compound kinds whose references would form a cycle with the
// kinds already registered fail with RECURSIVE_COMPOSITION.
func (r *Registry) Register(kind ir.Kind, e Entry) error {
	e.Kind = kind
	if kind == "" {
		return ir.Errorf(ir.ErrCodeInvalidEntry, kind, "kind must not be empty")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if e.Definition != nil {
		if e.Inputs == 0 {
			e.Inputs = e.Definition.InputWidth()
		}
		if e.Outputs == 0 {
			e.Outputs = e.Definition.OutputWidth()
		}
		if e.Eval == nil {
			e.Code = ""
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !e.Primitive {
		if cycle := findRecursion(r.entries, e); cycle != nil {
			return &ir.ChipError{
				Code:    ir.ErrCodeRecursiveComposition,
				Kind:    kind,
				Index:   -1,
				Message: fmt.Sprintf("chip contains itself through %v", cycle),
				Details: map[string]string{"cycle": fmt.Sprint(cycle)},
			}
		}
	}

	r.entries[kind] = e
	r.version++
	return nil
}

// Lookup returns the entry for kind.
func (r *Registry) Lookup(kind ir.Kind) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[kind]
	if !ok {
		return Entry{}, ir.NewUnknownKindError(kind)
	}
	return e, nil
}

// SetCompiled caches a linked evaluator and its program text on a compound
// entry.
func (r *Registry) SetCompiled(kind ir.Kind, fn EvalFunc, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[kind]
	if !ok {
		return ir.NewUnknownKindError(kind)
	}
	if e.Primitive {
		return ir.Errorf(ir.ErrCodeNotCompound, kind, "cannot attach a compiled evaluator to a primitive")
	}
	e.Eval = fn
	e.Code = code
	r.entries[kind] = e
	r.version++
	return nil
}

// ClearCompiled drops a compound entry's compiled evaluator so it is
// interpreted again. It is a no-op for primitives and unknown kinds.
func (r *Registry) ClearCompiled(kind ir.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[kind]
	if !ok || e.Primitive || e.Eval == nil {
		return
	}
	e.Eval = nil
	e.Code = ""
	r.entries[kind] = e
	r.version++
}

// Snapshot returns every entry with a direct evaluator, except exclude.
// The returned map is owned by the caller.
func (r *Registry) Snapshot(exclude ir.Kind) map[ir.Kind]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := make(map[ir.Kind]Entry, len(r.entries))
	for k, e := range r.entries {
		if k == exclude || e.Eval == nil {
			continue
		}
		table[k] = e
	}
	return table
}

// Kinds returns all registered kinds in ascending order.
func (r *Registry) Kinds() []ir.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]ir.Kind, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Dependents returns the compound kinds that reference kind directly or
// transitively, ordered so every kind appears after the kinds it uses.
func (r *Registry) Dependents(kind ir.Kind) []ir.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[ir.Kind][]ir.Kind)
	for k, e := range r.entries {
		if e.Definition == nil {
			continue
		}
		for _, ref := range e.Definition.References() {
			users[ref] = append(users[ref], k)
		}
	}

	affected := map[ir.Kind]bool{}
	queue := []ir.Kind{kind}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, u := range users[k] {
			if !affected[u] && u != kind {
				affected[u] = true
				queue = append(queue, u)
			}
		}
	}

	return orderByReferences(r.entries, affected)
}

// DependencyOrder returns kinds reordered so every compound kind follows the
// kinds in the list that it references.
func (r *Registry) DependencyOrder(kinds []ir.Kind) []ir.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[ir.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return orderByReferences(r.entries, set)
}

// Version increases on every mutation. Callers use it to detect that a
// snapshot may be stale.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// orderByReferences sorts set so that each kind follows every kind in set it
// references. Ties resolve in ascending kind order.
func orderByReferences(entries map[ir.Kind]Entry, set map[ir.Kind]bool) []ir.Kind {
	kinds := make([]ir.Kind, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	var (
		order   []ir.Kind
		visited = make(map[ir.Kind]bool)
		visit   func(ir.Kind)
	)
	visit = func(k ir.Kind) {
		if visited[k] {
			return
		}
		visited[k] = true
		if e := entries[k]; e.Definition != nil {
			for _, ref := range e.Definition.References() {
				if set[ref] {
					visit(ref)
				}
			}
		}
		order = append(order, k)
	}
	for _, k := range kinds {
		visit(k)
	}
	return order
}
